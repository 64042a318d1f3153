// Command verify runs self-checks against the unit catalog and the conversion
// functions: catalog integrity, identity conversions, round trips, amount
// validation, and a set of reference scenarios with known answers.
//
// Usage:
//
//	go run ./cmd/verify
//	go run ./cmd/verify -scenarios testdata/scenarios.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// tolerance is the relative error allowed for float comparisons.
const tolerance = 1e-9

// scenario is a conversion with a known expected outcome. Exactly one of
// Want or WantKind is meaningful.
type scenario struct {
	Domain   string  `json:"domain"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Amount   string  `json:"amount"`
	Want     float64 `json:"want"`
	WantKind string  `json:"want_kind,omitempty"`
}

var referenceScenarios = []scenario{
	{Domain: "Temperature", Source: "Celsius", Target: "Fahrenheit", Amount: "100", Want: 212},
	{Domain: "Temperature", Source: "Fahrenheit", Target: "Celsius", Amount: "32.5", Want: 0.2777777777777778},
	{Domain: "Temperature", Source: "Kelvin", Target: "Celsius", Amount: "273.15", Want: 0},
	{Domain: "Temperature", Source: "Celsius", Target: "Kelvin", Amount: "-40", Want: 233.15},
	{Domain: "Length", Source: "Meters", Target: "Feet", Amount: "1", Want: 3.280839895013123},
	{Domain: "Length", Source: "Feet", Target: "Inches", Amount: "1", Want: 12},
	{Domain: "Length", Source: "Inches", Target: "Meters", Amount: "10", Want: 0.254},
	{Domain: "Mass", Source: "Kilograms", Target: "Pounds", Amount: "1", Want: 2.2046244201837775},
	{Domain: "Mass", Source: "Pounds", Target: "Ounces", Amount: "1", Want: 16},
	{Domain: "Mass", Source: "Ounces", Target: "Kilograms", Amount: "2", Want: 0.056699},
	{Domain: "Mass", Source: "Pounds", Target: "Ounces", Amount: "0", WantKind: domain.KindInvalidInput},
	{Domain: "Length", Source: "Meters", Target: "Parsecs", Amount: "1", WantKind: domain.KindUnknownUnit},
	{Domain: "Volume", Source: "Liters", Target: "Cups", Amount: "1", WantKind: domain.KindUnsupportedDomain},
}

type amountCase struct {
	raw     string
	ok      bool
	message string
}

var amountCases = []amountCase{
	{"12.5", true, ""},
	{"-3", true, ""},
	{".5", true, ""},
	{"0", false, domain.MsgZeroAmount},
	{"-0.00", false, domain.MsgZeroAmount},
	{"", false, domain.MsgInvalidAmount},
	{"abc", false, domain.MsgInvalidAmount},
	{"1e3", false, domain.MsgInvalidAmount},
	{"NaN", false, domain.MsgInvalidAmount},
}

var sampleValues = []float64{-40, -1.5, 0.001, 1, 37.5, 1000}

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	scenariosPath := flag.String("scenarios", "", "optional JSON file of extra reference scenarios")
	flag.Parse()

	if code := run(os.Stdout, *scenariosPath); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, scenariosPath string) int {
	// Fixed clock keeps result timestamps reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== Unit Conversion Verification ===")
	fmt.Fprintln(w)

	scenarios := referenceScenarios
	if scenariosPath != "" {
		extra, err := loadJSON[scenario](scenariosPath)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load scenarios: %v\n", err)
			return 1
		}
		scenarios = append(append([]scenario(nil), referenceScenarios...), extra...)
	}

	phases := []*phase{
		verifyCatalog(),
		verifyIdentity(),
		verifyRoundTrip(),
		verifyAmountValidation(),
		verifyScenarios(scenarios),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scenarios: %d, amount cases: %d\n", len(scenarios), len(amountCases))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nVerification FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}

// ── Phases ──

func verifyCatalog() *phase {
	p := &phase{name: "Phase 1: Catalog Integrity"}
	seen := map[string]bool{}
	for _, d := range domain.Domains() {
		base, err := d.BaseUnit()
		if err != nil {
			p.errorf("%s: base unit: %v", d, err)
			continue
		}
		units := domain.Units(d)
		if len(units) == 0 || units[0] != base {
			p.errorf("%s: base unit %s is not listed first", d, base)
		}
		for _, u := range units {
			if u.Domain() != d {
				p.errorf("%s: unit %s reports domain %s", d, u, u.Domain())
			}
			if seen[u.Name()] {
				p.errorf("unit name %s appears in more than one domain", u)
			}
			seen[u.Name()] = true
			if got, err := domain.Lookup(d, u.Name()); err != nil || got != u {
				p.errorf("%s: lookup %q = %v, %v", d, u.Name(), got, err)
			}
		}
		if parsed, err := domain.ParseDomain(d.String()); err != nil || parsed != d {
			p.errorf("parse domain %q = %v, %v", d.String(), parsed, err)
		}
	}
	return p
}

func verifyIdentity() *phase {
	p := &phase{name: "Phase 2: Identity Conversions"}
	forEachUnit(func(u domain.Unit) {
		for _, v := range sampleValues {
			got, err := domain.ConvertValue(v, u, u)
			if err != nil {
				p.errorf("%s -> %s (%g): %v", u, u, v, err)
				continue
			}
			if got != v {
				p.errorf("%s -> %s (%g) = %g", u, u, v, got)
			}
		}
	})
	return p
}

func verifyRoundTrip() *phase {
	p := &phase{name: "Phase 3: Round Trips"}
	for _, d := range domain.Domains() {
		units := domain.Units(d)
		for _, from := range units {
			for _, to := range units {
				for _, v := range sampleValues {
					there, err := domain.ConvertValue(v, from, to)
					if err != nil {
						p.errorf("%s -> %s: %v", from, to, err)
						continue
					}
					back, err := domain.ConvertValue(there, to, from)
					if err != nil {
						p.errorf("%s -> %s: %v", to, from, err)
						continue
					}
					if !floatEq(v, back) {
						p.errorf("%s -> %s -> %s (%g) = %g", from, to, from, v, back)
					}
				}
			}
		}
	}
	return p
}

func verifyAmountValidation() *phase {
	p := &phase{name: "Phase 4: Amount Validation"}
	for _, c := range amountCases {
		ok, msg := domain.ValidateAmount(c.raw)
		if ok != c.ok || msg != c.message {
			p.errorf("amount %q = (%t, %q), want (%t, %q)", c.raw, ok, msg, c.ok, c.message)
		}
	}
	return p
}

func verifyScenarios(scenarios []scenario) *phase {
	p := &phase{name: "Phase 5: Reference Scenarios"}
	for i, s := range scenarios {
		result := domain.Execute(domain.ConversionRequest{
			ID:     fmt.Sprintf("scenario-%d", i+1),
			Domain: s.Domain,
			Source: s.Source,
			Target: s.Target,
			Amount: s.Amount,
		})
		label := fmt.Sprintf("%s %s %s -> %s", s.Domain, s.Amount, s.Source, s.Target)

		if s.WantKind != "" {
			if result.OK() {
				p.errorf("%s: expected %s, got %s", label, s.WantKind, result.Formatted)
			} else if result.Error.Kind != s.WantKind {
				p.errorf("%s: expected %s, got %s", label, s.WantKind, result.Error.Kind)
			}
			continue
		}
		if !result.OK() {
			p.errorf("%s: %s", label, result.Error.Message)
			continue
		}
		if !floatEq(s.Want, *result.Value) {
			p.errorf("%s = %g, want %g", label, *result.Value, s.Want)
		}
	}
	return p
}

func forEachUnit(fn func(domain.Unit)) {
	for _, d := range domain.Domains() {
		for _, u := range domain.Units(d) {
			fn(u)
		}
	}
}

func floatEq(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= tolerance {
		return true
	}
	return diff <= tolerance*math.Max(math.Abs(a), math.Abs(b))
}
