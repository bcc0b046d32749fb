package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

func TestDefaultRegistry_DependencyOrder(t *testing.T) {
	want := []string{
		"stores", "users", "categories", "suppliers", "customers", "products",
		"promotions", "shifts", "transactions", "purchase_orders", "expenses",
		"stock_movements", "shift_movements", "point_history", "audit_logs",
	}
	assert.Equal(t, want, DefaultRegistry().Names())
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input string
		want  string
	}{
		{input: "products", want: "products"},
		{input: "product", want: "products"},
		{input: "Product", want: "products"},
		{input: "profiles", want: "users"},
		{input: "user", want: "users"},
		{input: "purchase-order", want: "purchase_orders"},
		{input: "point_history", want: "point_history"},
		{input: "point_histories", want: "point_history"},
		{input: "category", want: "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := r.Lookup(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Entity())
		})
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("invoices")
	require.ErrorIs(t, err, apperrors.ErrUnknownEntity)
	assert.Contains(t, err.Error(), "stores")
}

func TestRegistry_SelectKeepsDependencyOrder(t *testing.T) {
	selected, err := DefaultRegistry().Select([]string{"transaction", "stores", "product", "products"})
	require.NoError(t, err)

	var names []string
	for _, m := range selected {
		names = append(names, m.Entity())
	}
	assert.Equal(t, []string{"stores", "products", "transactions"}, names)

	all, err := DefaultRegistry().Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	m := &entityMapper{entity: "stores", table: "stores", mapFn: func(source.Document, *MigrationContext) Outcome {
		return Skip("x")
	}}
	_, err := NewRegistry(m, &entityMapper{entity: "store", table: "stores"})
	assert.Error(t, err)

	r, err := NewRegistry(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"stores"}, r.Names())
}

func TestScopePolicies(t *testing.T) {
	policies := map[string]ScopePolicy{}
	for _, m := range DefaultRegistry().All() {
		policies[m.Entity()] = m.Scope()
	}

	assert.Equal(t, ScopeNone, policies["stores"])
	assert.Equal(t, ScopeRehome, policies["users"])
	assert.Equal(t, ScopeRehome, policies["audit_logs"])
	assert.Equal(t, ScopeStrict, policies["categories"])
	assert.Equal(t, ScopeStrict, policies["products"])
	assert.Equal(t, "rehome", ScopeRehome.String())
}
