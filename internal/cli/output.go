package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// resultView is the YAML shape of a ConversionResult. Field names match the
// JSON encoding.
type resultView struct {
	RequestID   string           `yaml:"request_id,omitempty"`
	Domain      string           `yaml:"domain"`
	Source      string           `yaml:"source"`
	Target      string           `yaml:"target"`
	Amount      string           `yaml:"amount"`
	Value       *float64         `yaml:"value,omitempty"`
	Formatted   string           `yaml:"formatted,omitempty"`
	Error       *resultErrorView `yaml:"error,omitempty"`
	ProcessedAt string           `yaml:"processed_at"`
}

type resultErrorView struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

func newResultView(r domain.ConversionResult) resultView {
	v := resultView{
		RequestID:   r.RequestID,
		Domain:      r.Domain,
		Source:      r.Source,
		Target:      r.Target,
		Amount:      r.Amount,
		Value:       r.Value,
		Formatted:   r.Formatted,
		ProcessedAt: r.ProcessedAt.Format(time.RFC3339),
	}
	if r.Error != nil {
		v.Error = &resultErrorView{Kind: r.Error.Kind, Message: r.Error.Message}
	}
	return v
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected text|json|yaml)", format)
	}
}

func printResult(w io.Writer, r domain.ConversionResult, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newResultView(r)); err != nil {
			return err
		}
		return enc.Close()
	case formatText, "":
		printText(w, r)
		return nil
	default:
		return checkFormat(format)
	}
}

func printText(w io.Writer, r domain.ConversionResult) {
	if !r.OK() {
		fmt.Fprintf(w, "error: %s (%s)\n", r.Error.Message, r.Error.Kind)
		return
	}
	fmt.Fprintf(w, "%s %s = %s %s\n", r.Amount, r.Source, r.Formatted, r.Target)
}
