package identity

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_EmptyIsNull(t *testing.T) {
	assert.Equal(t, "", Derive(""))
	assert.Equal(t, "", NewTranslator().Translate(""))
}

func TestDerive_CanonicalPassesThrough(t *testing.T) {
	tests := []string{
		"3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"3F2504E0-4F89-11D3-9A0C-0305E82C3301",
		"00000000-0000-0000-0000-000000000000",
	}
	for _, id := range tests {
		assert.Equal(t, id, Derive(id), "canonical id must be returned unchanged")
	}
}

func TestDerive_NearCanonicalIsHashed(t *testing.T) {
	tests := []string{
		"3f2504e04f8911d39a0c0305e82c3301",        // no dashes
		"{3f2504e0-4f89-11d3-9a0c-0305e82c3301}",  // braces
		" 3f2504e0-4f89-11d3-9a0c-0305e82c3301",   // leading space
		"3f2504e0-4f89-11d3-9a0c-0305e82c330z",    // non-hex
		"urn:uuid:3f2504e0-4f89-11d3-9a0c-0305e82", // urn prefix
	}
	for _, id := range tests {
		got := Derive(id)
		assert.NotEqual(t, id, got)
		assert.True(t, IsCanonical(got), "derived id %q must be canonical", got)
	}
}

func TestDerive_KnownValues(t *testing.T) {
	// md5("p1") = ec6ef230f1828039ee794566b9c58adc
	assert.Equal(t, "ec6ef230-f182-8039-ee79-4566b9c58adc", Derive("p1"))
	// md5("s1") = 8ddf878039b70767c4a5bcf4f0c4f65e
	assert.Equal(t, "8ddf8780-39b7-0767-c4a5-bcf4f0c4f65e", Derive("s1"))
}

func TestDerive_IdempotentOnOwnOutput(t *testing.T) {
	for _, id := range []string{"p1", "AbC123xyz", "trx/2024/01/0001", "ünïcødé"} {
		once := Derive(id)
		assert.Equal(t, once, Derive(once))
	}
}

func TestTranslator_StableRepeatedTranslation(t *testing.T) {
	const sourceID = "Xk2pQ9vLmN4rT7wZ1aB3"
	tr := NewTranslator()

	first := tr.Translate(sourceID)
	second := tr.Translate(sourceID)

	require.Equal(t, first, second)
	assert.Equal(t, Derive(sourceID), first, "cache must agree with the pure function")
	assert.Equal(t, first, NewTranslator().Translate(sourceID), "a fresh translator must derive the same id")
	assert.Equal(t, 1, tr.Len())
}

func TestTranslator_WhitespaceVariantsDiffer(t *testing.T) {
	// A parent referenced with stray whitespace is a different source id.
	tr := NewTranslator()
	assert.NotEqual(t, tr.Translate("store-1"), tr.Translate("store-1 "))
}

const productionAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func TestDerive_PracticalInjectivity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 100k collision sweep in short mode")
	}

	rng := rand.New(rand.NewSource(20240101))
	const n = 100_000

	inputs := make(map[string]struct{}, n)
	for len(inputs) < n {
		b := make([]byte, 20)
		for i := range b {
			b[i] = productionAlphabet[rng.Intn(len(productionAlphabet))]
		}
		inputs[string(b)] = struct{}{}
	}
	// Short sequential ids share long prefixes, the worst case for weak hashes.
	for i := 0; i < 1000; i++ {
		inputs[fmt.Sprintf("TRX-%06d", i)] = struct{}{}
	}

	seen := make(map[string]string, len(inputs))
	for in := range inputs {
		out := Derive(in)
		if prev, dup := seen[out]; dup {
			t.Fatalf("collision: %q and %q both derive %s", prev, in, out)
		}
		seen[out] = in
	}
	assert.Len(t, seen, len(inputs))
}
