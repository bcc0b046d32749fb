package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/config"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/logging"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/mapping"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/migration"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source/jsonfile"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source/surreal"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/target"

	// Target drivers register themselves.
	_ "github.com/kamaludinabdul/kula-pos-sub001/pkg/target/postgres"
	_ "github.com/kamaludinabdul/kula-pos-sub001/pkg/target/sqltarget"
)

type migrateOptions struct {
	DryRun bool
	Strict bool
}

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate [entity...]",
		Short: "Migrate all entity types, or only the named ones",
		Long: `Migrate every registered entity type in dependency order, or only the
named subset (singular or plural names, in any order; they still run in
dependency order).

Skipped and errored records are logged with their source id and listed in the
summary. The exit code is 0 when the run completes, 1 when --strict is set and
any record errored, and 2 when the run could not start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "map every document but write nothing")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 if any record errored")

	return cmd
}

func runMigrate(cmd *cobra.Command, rootOpts *RootOptions, opts *migrateOptions, entities []string) error {
	registry := mapping.DefaultRegistry()
	if _, err := registry.Select(entities); err != nil {
		return WrapExitError(ExitCommandError, "invalid entity selection", err)
	}

	cfg, err := config.Load(rootOpts.ConfigPath, rootOpts.Version)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Run.DryRun = opts.DryRun
	}
	if cmd.Flags().Changed("strict") {
		cfg.Run.Strict = opts.Strict
	}

	level := cfg.Log.Level
	if rootOpts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("Starting migration",
		zap.String("version", cfg.Version),
		zap.String("source", cfg.Source.Driver),
		zap.String("target", cfg.Target.Driver),
		zap.Bool("dry_run", cfg.Run.DryRun),
		zap.Strings("entities", entities))

	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open source", err)
	}
	defer src.Close()

	tgt, err := target.Open(ctx, cfg.Target.Driver, target.Options{
		URL:            cfg.Target.URL,
		Role:           cfg.Target.Role,
		IdentityTable:  cfg.Target.IdentityTable,
		MaxConnections: cfg.Target.MaxConnections,
	}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target", errors.New(logging.SanitizeError(err)))
	}
	defer tgt.Close()

	report, err := migration.New(src, tgt, tgt, registry, logger).Run(ctx, migration.Options{
		Entities: entities,
		DryRun:   cfg.Run.DryRun,
	})
	if report != nil {
		if werr := report.WriteSummary(cmd.OutOrStdout()); werr != nil {
			logger.Warn("Failed to write summary", zap.Error(werr))
		}
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "migration aborted", err)
	}

	if cfg.Run.Strict && report.Failed() {
		total := report.Totals()
		return WrapExitError(ExitFailure, fmt.Sprintf("%d record(s) errored", total.Errored), nil)
	}
	return nil
}

func openSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Store, error) {
	switch cfg.Source.Driver {
	case "jsonfile":
		return jsonfile.New(cfg.Source.Path, logger)
	case "surrealdb":
		return surreal.Open(ctx, surreal.Options{
			URL:       cfg.Source.URL,
			Namespace: cfg.Source.Namespace,
			Database:  cfg.Source.Database,
			Username:  cfg.Source.Username,
			Password:  cfg.Source.Password,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: source %q", apperrors.ErrUnsupportedDriver, cfg.Source.Driver)
	}
}
