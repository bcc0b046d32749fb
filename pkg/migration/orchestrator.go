// Package migration drives a full run: it builds the reference index, then
// migrates each entity type in dependency order, one document at a time.
package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/logging"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/mapping"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/target"
)

// Options selects what a run does.
type Options struct {
	// Entities restricts the run; empty means every registered entity.
	Entities []string
	// DryRun maps every document but writes nothing.
	DryRun bool
}

type Orchestrator struct {
	source   source.Store
	refs     refindex.Reader
	writer   target.Writer
	registry *mapping.Registry
	logger   *zap.Logger
}

func New(src source.Store, refs refindex.Reader, writer target.Writer, registry *mapping.Registry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		source:   src,
		refs:     refs,
		writer:   writer,
		registry: registry,
		logger:   logger.Named("migration"),
	}
}

// Run migrates the selected entity types. An error is returned only for
// failures that stop the run: an unknown entity name, a reference index
// that cannot be built, or cancellation. Record-level failures are tallied
// in the report and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	mappers, err := o.registry.Select(opts.Entities)
	if err != nil {
		return nil, err
	}

	idx, err := refindex.Build(ctx, o.refs, o.logger)
	if err != nil {
		return nil, err
	}
	mc := mapping.NewMigrationContext(idx)

	writer := o.writer
	if opts.DryRun {
		writer = target.Discard{}
	}

	report := &Report{DryRun: opts.DryRun}
	for _, m := range mappers {
		if err := o.migrateEntity(ctx, m, mc, writer, report); err != nil {
			return report, err
		}
	}

	total := report.Totals()
	o.logger.Info("Migration finished",
		zap.Int("attempted", total.Attempted),
		zap.Int("succeeded", total.Succeeded),
		zap.Int("skipped", total.Skipped),
		zap.Int("errored", total.Errored),
		zap.Int("identifiers", mc.IDs.Len()))

	return report, nil
}

func (o *Orchestrator) migrateEntity(ctx context.Context, m mapping.Mapper, mc *mapping.MigrationContext, writer target.Writer, report *Report) error {
	start := time.Now()
	tally := report.tally(m.Entity())
	logger := o.logger.With(zap.String("entity", m.Entity()))
	mc.Logger = logger

	docs, err := o.source.Fetch(ctx, m.Entity())
	if errors.Is(err, apperrors.ErrNotFound) {
		logger.Info("Source collection not present, nothing to migrate")
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tally.FetchError = logging.TruncateString(logging.SanitizeError(err), logging.MaxReasonLength)
		logger.Error("Failed to fetch source collection", zap.String("error", tally.FetchError))
		return nil
	}

	logger.Info("Migrating", zap.String("table", m.Table()), zap.Int("documents", len(docs)))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted while migrating %s: %w", m.Entity(), err)
		}
		tally.Attempted++

		out := m.Map(doc, mc)
		if out.Skipped() {
			tally.Skipped++
			report.addIssue(m.Entity(), doc.ID, IssueSkipped, out.Reason)
			logger.Warn("Skipped record", zap.String("source_id", doc.ID), zap.String("reason", out.Reason))
			continue
		}

		err := writer.Upsert(ctx, out.Row)
		switch {
		case err == nil:
			tally.Succeeded++
			m.AfterWrite(out.Row, doc, mc)
		case errors.Is(err, apperrors.ErrForeignKeyViolation):
			tally.Skipped++
			reason := logging.TruncateString(logging.SanitizeError(err), logging.MaxReasonLength)
			report.addIssue(m.Entity(), doc.ID, IssueSkipped, reason)
			logger.Warn("Skipped record, referenced row missing in target",
				zap.String("source_id", doc.ID),
				zap.String("reason", reason))
		default:
			tally.Errored++
			reason := logging.TruncateString(logging.SanitizeError(err), logging.MaxReasonLength)
			report.addIssue(m.Entity(), doc.ID, IssueErrored, reason)
			logger.Error("Failed to write record",
				zap.String("source_id", doc.ID),
				zap.String("error", reason))
		}
	}

	logger.Info("Migrated",
		zap.Int("attempted", tally.Attempted),
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("skipped", tally.Skipped),
		zap.Int("errored", tally.Errored),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
