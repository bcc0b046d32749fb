// Package surreal reads source collections from a live SurrealDB instance.
package surreal

import (
	"context"
	"fmt"
	"strings"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/jsonutil"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/retry"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

const selectTable = "SELECT * FROM type::table($tb)"

type Options struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

type Store struct {
	db     *surrealdb.DB
	logger *zap.Logger
}

var _ source.Store = (*Store)(nil)

// Open connects, signs in and selects the namespace and database.
// Connection establishment is retried; queries are not.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	logger = logger.Named("surreal")

	cfg := retry.DefaultConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("Source connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	db, err := retry.DoIfRetryable(ctx, cfg, func() (*surrealdb.DB, error) {
		return surrealdb.FromEndpointURLString(ctx, opts.URL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source: %w", err)
	}

	if opts.Username != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: opts.Username,
			Password: opts.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to sign in to source: %w", err)
		}
	}

	if err := db.Use(ctx, opts.Namespace, opts.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to select source namespace: %w", err)
	}

	logger.Info("Connected to source",
		zap.String("namespace", opts.Namespace),
		zap.String("database", opts.Database))

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Fetch(ctx context.Context, collection string) ([]source.Document, error) {
	results, err := surrealdb.Query[[]map[string]any](ctx, s.db, selectTable, map[string]any{
		"tb": collection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", collection, err)
	}

	var rows []map[string]any
	if results != nil {
		for _, r := range *results {
			rows = append(rows, r.Result...)
		}
	}

	docs, err := toDocuments(collection, rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Loaded collection",
		zap.String("collection", collection),
		zap.Int("documents", len(docs)))
	return docs, nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// toDocuments lifts the record key out of each row. The id field is removed
// from Fields so record ids never leak into mapped columns.
func toDocuments(table string, rows []map[string]any) ([]source.Document, error) {
	docs := make([]source.Document, 0, len(rows))
	for i, row := range rows {
		id, ok := recordKey(table, row["id"])
		if !ok {
			return nil, fmt.Errorf("%s row %d has no usable id", table, i)
		}
		fields := make(map[string]any, len(row))
		for k, v := range row {
			if k != "id" {
				fields[k] = v
			}
		}
		docs = append(docs, source.Document{ID: id, Fields: fields})
	}
	return docs, nil
}

func recordKey(table string, v any) (string, bool) {
	switch id := v.(type) {
	case models.RecordID:
		return keyString(id.ID)
	case *models.RecordID:
		if id == nil {
			return "", false
		}
		return keyString(id.ID)
	case string:
		key := strings.TrimPrefix(id, table+":")
		key = strings.TrimPrefix(strings.TrimSuffix(key, "⟩"), "⟨")
		return key, key != ""
	default:
		return keyString(v)
	}
}

func keyString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, s != ""
	}
	if s, ok := jsonutil.FlexibleStringValue(v); ok {
		return s, s != ""
	}
	if v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}
