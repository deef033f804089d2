package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vincentarsontaneli/data-processor-app/internal/core"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List semantic types and their allowed conversions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tLABEL\tCONVERSIONS")
		for _, t := range core.Types() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Label, strings.Join(t.Conversions, ", "))
		}
		return tw.Flush()
	},
}
