package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(fields map[string]any) Document {
	return Document{ID: "d1", Fields: fields}
}

func TestDocument_FallbackChain(t *testing.T) {
	t.Run("canonical name wins", func(t *testing.T) {
		d := doc(map[string]any{"sellPrice": 8000.0, "price": 5000.0})
		assert.Equal(t, 8000.0, d.Float(0, "sellPrice", "price"))
	})

	t.Run("alias used when canonical absent", func(t *testing.T) {
		d := doc(map[string]any{"price": 5000.0})
		assert.Equal(t, 5000.0, d.Float(0, "sellPrice", "price"))
	})

	t.Run("nil canonical falls through to alias", func(t *testing.T) {
		d := doc(map[string]any{"sellPrice": nil, "price": 5000.0})
		assert.Equal(t, 5000.0, d.Float(0, "sellPrice", "price"))
	})

	t.Run("default when nothing present", func(t *testing.T) {
		d := doc(map[string]any{})
		assert.Equal(t, 0.0, d.Float(0, "sellPrice", "price"))
	})

	t.Run("uncoercible present value takes default not alias", func(t *testing.T) {
		d := doc(map[string]any{"sellPrice": "n/a", "price": 5000.0})
		assert.Equal(t, 0.0, d.Float(0, "sellPrice", "price"))
	})

	t.Run("non-finite value takes default", func(t *testing.T) {
		d := doc(map[string]any{"sellPrice": "NaN", "price": 5000.0})
		assert.Equal(t, 0.0, d.Float(0, "sellPrice", "price"))
		assert.Nil(t, d.OptFloat("sellPrice"))
	})

	t.Run("zero is a present value", func(t *testing.T) {
		d := doc(map[string]any{"sellPrice": 0.0, "price": 5000.0})
		assert.Equal(t, 0.0, d.Float(-1, "sellPrice", "price"))
	})

	t.Run("empty string is a present value", func(t *testing.T) {
		d := doc(map[string]any{"name": "", "title": "Cola"})
		assert.Equal(t, "", d.String("x", "name", "title"))
	})
}

func TestDocument_DottedPath(t *testing.T) {
	d := doc(map[string]any{
		"customer": map[string]any{"id": "c1", "name": "Ani"},
		"flat.key": "literal",
	})

	assert.Equal(t, "c1", d.String("", "customer.id"))
	assert.Equal(t, "literal", d.String("", "flat.key"))
	assert.Equal(t, "fallback", d.String("fallback", "customer.missing"))
	assert.Equal(t, "fallback", d.String("fallback", "customer.name.first"))
}

func TestDocument_OptString(t *testing.T) {
	d := doc(map[string]any{"phone": "", "email": "a@b.c", "code": 42.0})

	assert.Nil(t, d.OptString("phone"))
	assert.Nil(t, d.OptString("missing"))
	require.NotNil(t, d.OptString("email"))
	assert.Equal(t, "a@b.c", *d.OptString("email"))
	assert.Equal(t, "42", *d.OptString("code"))
}

func TestDocument_Coercions(t *testing.T) {
	d := doc(map[string]any{
		"stock":  json.Number("12"),
		"qty":    "3",
		"active": "yes",
		"ratio":  "0.5",
		"tags":   []any{"a"},
	})

	assert.Equal(t, int64(12), d.Int(0, "stock"))
	assert.Equal(t, int64(3), d.Int(0, "qty"))
	assert.True(t, d.Bool(false, "active"))
	assert.Equal(t, 0.5, d.Float(0, "ratio"))
	assert.Nil(t, d.OptFloat("tags"))
	assert.Equal(t, []any{"a"}, d.Raw("tags"))
	assert.Nil(t, d.Raw("nope"))
}
