// Package target defines the relational store rows are written to.
package target

import (
	"context"
	"fmt"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
)

// Writer upserts rows keyed by their primary key. A write rejected because a
// referenced row does not exist returns an error wrapping
// apperrors.ErrForeignKeyViolation.
type Writer interface {
	Upsert(ctx context.Context, row models.Row) error
}

// Target is a connected relational store.
type Target interface {
	Writer
	refindex.Reader
	Close() error
}

// Options configures a target connection.
type Options struct {
	URL string
	// Role is assumed on every connection where the dialect supports it.
	Role string
	// IdentityTable holds (id, email) rows for every user identity.
	IdentityTable  string
	MaxConnections int32
}

// ForeignKeyError marks err as a foreign key violation.
func ForeignKeyError(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrForeignKeyViolation, err)
}

// Discard accepts every row without writing it. Used for dry runs.
type Discard struct{}

var _ Writer = Discard{}

func (Discard) Upsert(context.Context, models.Row) error { return nil }
