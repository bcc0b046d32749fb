// Package cli implements the migrator's command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/config"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Version    string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:   "kula-migrate",
		Short: "Migrate a point-of-sale tenant from the document store to the relational store",
		Long: `kula-migrate reads every collection of a point-of-sale tenant from the
document store and upserts it into the relational store.

Identifiers are derived deterministically from source ids, so a run can be
repeated against the same snapshot at any time; already-migrated records are
overwritten with identical values.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "config file (YAML); environment variables override it")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewEntitiesCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))

	return cmd
}
