package cli

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <amount>",
		Short: "Check whether an amount is accepted for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, msg := domain.ValidateAmount(args[0])
			if !ok {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
