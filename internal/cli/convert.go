package cli

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	var swap bool
	var format string

	c := &cobra.Command{
		Use:   "convert <domain> <from> <to> <amount>",
		Short: "Convert an amount from one unit to another",
		Example: "  unitconv convert temperature celsius fahrenheit 100\n" +
			"  unitconv convert length feet meters 3 --swap -o json",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			req := domain.ConversionRequest{
				ID:     uuid.NewString(),
				Domain: args[0],
				Source: args[1],
				Target: args[2],
				Amount: args[3],
			}
			if swap {
				req = req.Swapped()
			}

			result := domain.Execute(req)
			slog.Debug("conversion executed",
				"request_id", result.RequestID,
				"domain", result.Domain,
				"outcome", result.Outcome(),
			)

			if format != formatText || result.OK() {
				if err := printResult(cmd.OutOrStdout(), result, format); err != nil {
					return err
				}
			}
			if !result.OK() {
				return fmt.Errorf("%s: %s", result.Error.Kind, result.Error.Message)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&swap, "swap", false, "Exchange the source and target units")
	c.Flags().StringVarP(&format, "output", "o", formatText, "Output format: text|json|yaml")
	return c
}
