// Package cli implements the unitconv command-line tool.
package cli

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/unit-conversion-service/internal/observability"
	"github.com/spf13/cobra"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:          "unitconv",
		Short:        "Convert temperature, length and mass amounts between units",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(observability.NewTextLogger(cmd.ErrOrStderr(), logLevel))
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	cmd.AddCommand(domainsCmd())
	cmd.AddCommand(unitsCmd())
	cmd.AddCommand(validateCmd())
	cmd.AddCommand(convertCmd())
	return cmd
}
