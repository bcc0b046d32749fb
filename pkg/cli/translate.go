package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/identity"
)

func NewTranslateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <source-id>...",
		Short: "Print the target identifier each source id migrates to",
		Long: `Print the target identifier each source id migrates to, one per line as
"<source-id>\t<identifier>". Useful for locating the target row of a record
reported in a migration summary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := identity.NewTranslator()
			for _, arg := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, ids.Translate(arg)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
