package mapping

import (
	"fmt"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
)

// Outcome is the result of mapping one document: a row to write, or a skip
// with its reason.
type Outcome struct {
	Row    models.Row
	Reason string
}

func Emit(row models.Row) Outcome {
	return Outcome{Row: row}
}

func Skip(format string, args ...any) Outcome {
	return Outcome{Reason: fmt.Sprintf(format, args...)}
}

func (o Outcome) Skipped() bool {
	return o.Row == nil
}

// ScopePolicy says what a mapper does with a document whose store cannot be
// resolved.
type ScopePolicy int

const (
	// ScopeNone: the entity is itself a store.
	ScopeNone ScopePolicy = iota
	// ScopeStrict: skip the document.
	ScopeStrict
	// ScopeRehome: attribute the document to the fallback store.
	ScopeRehome
)

func (p ScopePolicy) String() string {
	switch p {
	case ScopeNone:
		return "none"
	case ScopeStrict:
		return "strict"
	case ScopeRehome:
		return "rehome"
	default:
		return fmt.Sprintf("ScopePolicy(%d)", int(p))
	}
}
