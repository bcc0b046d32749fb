// Package mapping turns source documents into target rows.
//
// Each entity type has one Mapper. Mappers are pure with respect to their
// inputs: they read the document and the MigrationContext and return either a
// row or an explicit skip. The only mutation happens in AfterWrite hooks,
// which append to the reference index once a row has been written.
package mapping

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/identity"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/timestamp"
)

// Field names a document may use for its owning store.
var storeFields = []string{"storeId", "store_id"}

// MigrationContext is the per-run state shared by every mapper: the
// identifier cache and the reference index. It is created once per run and
// passed explicitly; there is no package-level instance.
//
// Logger receives decisions an operator may need to review, such as records
// moved to the fallback store. It defaults to a no-op logger.
type MigrationContext struct {
	IDs    *identity.Translator
	Index  *refindex.Index
	Logger *zap.Logger
}

func NewMigrationContext(idx *refindex.Index) *MigrationContext {
	if idx == nil {
		idx = refindex.New()
	}
	return &MigrationContext{
		IDs:    identity.NewTranslator(),
		Index:  idx,
		Logger: zap.NewNop(),
	}
}

// ID translates a source id; the empty id means "no reference".
func (c *MigrationContext) ID(sourceID string) *string {
	id := c.IDs.Translate(sourceID)
	if id == "" {
		return nil
	}
	return &id
}

// RefID translates the first present reference field of doc.
func (c *MigrationContext) RefID(doc source.Document, names ...string) *string {
	return c.ID(doc.String("", names...))
}

// ResolveStore resolves the document's owning store under policy.
// The returned reason is set when ok is false.
func (c *MigrationContext) ResolveStore(doc source.Document, policy ScopePolicy) (storeID string, ok bool, reason string) {
	declared := doc.String("", storeFields...)
	if id := c.IDs.Translate(declared); id != "" && c.Index.IsValidStore(id) {
		return id, true, ""
	}

	if declared == "" {
		reason = "no store reference"
	} else {
		reason = "store " + declared + " not found in target"
	}

	if policy == ScopeRehome {
		if fallback, found := c.Index.FallbackStore(); found {
			c.Logger.Warn("Rehomed record to fallback store",
				zap.String("source_id", doc.ID),
				zap.String("declared_store", declared),
				zap.String("fallback_store", fallback))
			return fallback, true, ""
		}
		reason += " and no fallback store"
	}
	return "", false, reason
}

// Actor resolves the identity behind a user reference. Email fields are tried
// first against the target identities, then source user id fields against
// users migrated earlier in the run.
func (c *MigrationContext) Actor(doc source.Document, emailFields, uidFields []string) *string {
	if email := strings.TrimSpace(doc.String("", emailFields...)); email != "" {
		if id, ok := c.Index.IdentityByEmail(email); ok {
			return &id
		}
	}
	if uid := doc.String("", uidFields...); uid != "" {
		if id, ok := c.Index.IdentityBySourceUID(uid); ok {
			return &id
		}
	}
	return nil
}

func ts(doc source.Document, names ...string) *string {
	return timestamp.Ptr(doc.Raw(names...))
}

func createdAt(doc source.Document) *string {
	return ts(doc, "createdAt", "created_at", "date", "timestamp")
}
