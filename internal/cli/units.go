package cli

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/unit-conversion-service/internal/domain"
	"github.com/spf13/cobra"
)

func domainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List measurement domains and their units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, d := range domain.Domains() {
				base, err := d.BaseUnit()
				if err != nil {
					return err
				}
				units, err := domain.ListUnits(d)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-12s base: %-10s units: %s\n", d, base, strings.Join(units, ", "))
			}
			return nil
		},
	}
}

func unitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "units <domain>",
		Short: "List the units of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDomain(args[0])
			if err != nil {
				return err
			}
			units, err := domain.ListUnits(d)
			if err != nil {
				return err
			}
			for _, u := range units {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
}
