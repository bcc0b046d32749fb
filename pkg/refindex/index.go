// Package refindex resolves relationships the source only records by natural
// key: actor email, category name within a store, and store validity.
//
// The index is seeded from the target store before any entity is migrated and
// is only ever appended to afterwards, as stores, categories and profiles are
// written during the run.
package refindex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
)

type Identity struct {
	ID    string
	Email string
}

type CategoryRef struct {
	ID      string
	StoreID string
	Name    string
}

// StoreRef is a target store with its creation time as ISO-8601 text, empty
// when the store has none.
type StoreRef struct {
	ID        string
	CreatedAt string
}

// Reader queries the target store for the state the index is seeded from.
type Reader interface {
	Identities(ctx context.Context) ([]Identity, error)
	Categories(ctx context.Context) ([]CategoryRef, error)
	Stores(ctx context.Context) ([]StoreRef, error)
}

// Creation time layouts accepted for fallback ordering, covering what the
// timestamp normalizer emits and what the target dialects render.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

type storeEntry struct {
	createdAt time.Time
	dated     bool
}

type categoryKey struct {
	storeID string
	name    string
}

type Index struct {
	caser cases.Caser

	identityByEmail map[string]string
	identityByUID   map[string]string
	categoryByName  map[categoryKey]string
	categoryIDs     map[string]struct{}
	stores          map[string]storeEntry
	fallbackStore   string
}

// Stats summarizes the index contents.
type Stats struct {
	Identities    int
	SourceUIDs    int
	Categories    int
	Stores        int
	FallbackStore string
}

func New() *Index {
	return &Index{
		caser:           cases.Fold(),
		identityByEmail: make(map[string]string),
		identityByUID:   make(map[string]string),
		categoryByName:  make(map[categoryKey]string),
		categoryIDs:     make(map[string]struct{}),
		stores:          make(map[string]storeEntry),
	}
}

// Build seeds an index from the target. Any read failure is fatal to the run
// and is reported wrapping apperrors.ErrReferenceIndex.
func Build(ctx context.Context, r Reader, logger *zap.Logger) (*Index, error) {
	idx := New()

	identities, err := r.Identities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read identities: %w", apperrors.ErrReferenceIndex, err)
	}
	for _, ident := range identities {
		idx.AddIdentity(ident.Email, ident.ID)
	}

	stores, err := r.Stores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read stores: %w", apperrors.ErrReferenceIndex, err)
	}
	for _, st := range stores {
		idx.AddStore(st.ID, st.CreatedAt)
	}

	categories, err := r.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read categories: %w", apperrors.ErrReferenceIndex, err)
	}
	for _, c := range categories {
		idx.AddCategory(c.StoreID, c.Name, c.ID)
	}

	stats := idx.Stats()
	logger.Info("Reference index built",
		zap.Int("identities", stats.Identities),
		zap.Int("categories", stats.Categories),
		zap.Int("stores", stats.Stores),
		zap.String("fallback_store", stats.FallbackStore))

	return idx, nil
}

func (x *Index) fold(s string) string {
	return x.caser.String(strings.TrimSpace(s))
}

// AddIdentity registers an identity. The first id seen for an email wins.
func (x *Index) AddIdentity(email, id string) {
	key := x.fold(email)
	if key == "" || id == "" {
		return
	}
	if _, exists := x.identityByEmail[key]; !exists {
		x.identityByEmail[key] = id
	}
}

func (x *Index) IdentityByEmail(email string) (string, bool) {
	id, ok := x.identityByEmail[x.fold(email)]
	return id, ok
}

// AddSourceUID records which identity a source user id was migrated to.
func (x *Index) AddSourceUID(uid, id string) {
	if uid == "" || id == "" {
		return
	}
	if _, exists := x.identityByUID[uid]; !exists {
		x.identityByUID[uid] = id
	}
}

func (x *Index) IdentityBySourceUID(uid string) (string, bool) {
	id, ok := x.identityByUID[uid]
	return id, ok
}

// AddCategory registers a category under its store and case-folded name.
func (x *Index) AddCategory(storeID, name, id string) {
	if id == "" {
		return
	}
	x.categoryIDs[id] = struct{}{}

	key := categoryKey{storeID: storeID, name: x.fold(name)}
	if key.name == "" {
		return
	}
	if _, exists := x.categoryByName[key]; !exists {
		x.categoryByName[key] = id
	}
}

func (x *Index) CategoryByName(storeID, name string) (string, bool) {
	id, ok := x.categoryByName[categoryKey{storeID: storeID, name: x.fold(name)}]
	return id, ok
}

func (x *Index) HasCategory(id string) bool {
	_, ok := x.categoryIDs[id]
	return ok
}

// AddStore marks a store id valid, recording its creation time. Adding an id
// again replaces the recorded time.
//
// The fallback store is the oldest store known to the index: earliest
// creation time, undated stores last, ties broken by id. The order does not
// depend on the order stores are added, so a store migrated in this run and
// the same store read back from the target on the next run rank the same.
func (x *Index) AddStore(id, createdAt string) {
	if id == "" {
		return
	}
	_, replaced := x.stores[id]
	entry := storeEntry{}
	entry.createdAt, entry.dated = parseCreatedAt(createdAt)
	x.stores[id] = entry

	if replaced && id == x.fallbackStore {
		x.fallbackStore = ""
		for other := range x.stores {
			x.considerFallback(other)
		}
		return
	}
	x.considerFallback(id)
}

func (x *Index) considerFallback(id string) {
	if x.fallbackStore == "" || x.storeBefore(id, x.fallbackStore) {
		x.fallbackStore = id
	}
}

func (x *Index) storeBefore(a, b string) bool {
	ea, eb := x.stores[a], x.stores[b]
	switch {
	case ea.dated && !eb.dated:
		return true
	case !ea.dated && eb.dated:
		return false
	case ea.dated && !ea.createdAt.Equal(eb.createdAt):
		return ea.createdAt.Before(eb.createdAt)
	}
	return a < b
}

func parseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Targets keep millisecond precision.
			return t.UTC().Truncate(time.Millisecond), true
		}
	}
	return time.Time{}, false
}

func (x *Index) IsValidStore(id string) bool {
	_, ok := x.stores[id]
	return ok
}

func (x *Index) FallbackStore() (string, bool) {
	return x.fallbackStore, x.fallbackStore != ""
}

func (x *Index) Stats() Stats {
	return Stats{
		Identities:    len(x.identityByEmail),
		SourceUIDs:    len(x.identityByUID),
		Categories:    len(x.categoryIDs),
		Stores:        len(x.stores),
		FallbackStore: x.fallbackStore,
	}
}
