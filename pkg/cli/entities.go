package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/mapping"
)

func NewEntitiesCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entity types in the order they are migrated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tENTITY\tTABLE\tSCOPE")
			for i, m := range mapping.DefaultRegistry().All() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, m.Entity(), m.Table(), m.Scope())
			}
			return tw.Flush()
		},
	}
}
