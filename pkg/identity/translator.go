// Package identity derives canonical target identifiers from source-native ids.
//
// Source documents are keyed by arbitrary strings; target rows are keyed by
// UUIDs. Derive maps one to the other deterministically, so a parent and the
// children that reference it agree on the parent's key even when they are
// migrated in different passes or different processes, and re-running a
// migration rewrites the same keys instead of duplicating rows.
package identity

import (
	"crypto/md5"
	"regexp"

	"github.com/google/uuid"
)

var canonicalPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsCanonical reports whether id already has the 8-4-4-4-12 hex UUID shape.
func IsCanonical(id string) bool {
	return canonicalPattern.MatchString(id)
}

// Derive returns the canonical identifier for sourceID.
//
// Empty input yields "" (no parent / not applicable). Input that is already
// canonical is returned unchanged, which makes Derive idempotent on its own
// output. Anything else is the MD5 digest of its UTF-8 bytes laid out in UUID
// dash grouping. No version bits are set: existing target rows were keyed
// with the raw digest and must keep resolving.
func Derive(sourceID string) string {
	if sourceID == "" {
		return ""
	}
	if IsCanonical(sourceID) {
		return sourceID
	}
	return uuid.UUID(md5.Sum([]byte(sourceID))).String()
}

// Translator memoizes Derive for the duration of one run.
// The cache is append-only and never a source of truth. A Translator is
// owned by a single run and is not safe for concurrent use.
type Translator struct {
	cache map[string]string
}

// NewTranslator creates an empty Translator.
func NewTranslator() *Translator {
	return &Translator{cache: make(map[string]string)}
}

// Translate returns Derive(sourceID), consulting the cache first.
func (t *Translator) Translate(sourceID string) string {
	if sourceID == "" {
		return ""
	}
	if id, ok := t.cache[sourceID]; ok {
		return id
	}
	id := Derive(sourceID)
	t.cache[sourceID] = id
	return id
}

// Len returns the number of distinct source ids translated so far.
func (t *Translator) Len() int {
	return len(t.cache)
}
