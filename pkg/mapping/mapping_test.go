package mapping

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/identity"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

// newTestContext returns a context where source store "s1" exists in the
// target and kasir@toko.id is a known identity.
func newTestContext(t *testing.T) *MigrationContext {
	t.Helper()
	idx := refindex.New()
	idx.AddStore(identity.Derive("s1"), "2024-01-01T00:00:00.000Z")
	idx.AddIdentity("kasir@toko.id", "11111111-1111-1111-1111-111111111111")
	return NewMigrationContext(idx)
}

func mapOne(t *testing.T, entity string, mc *MigrationContext, doc source.Document) Outcome {
	t.Helper()
	m, err := DefaultRegistry().Lookup(entity)
	require.NoError(t, err)
	return m.Map(doc, mc)
}

func TestProducts_RelationshipResolution(t *testing.T) {
	mc := newTestContext(t)
	doc := source.Document{ID: "p1", Fields: map[string]any{
		"storeId":   "s1",
		"name":      "Cola",
		"sellPrice": 8000.0,
	}}

	out := mapOne(t, "products", mc, doc)
	require.False(t, out.Skipped(), out.Reason)

	p := out.Row.(*models.Product)
	assert.Equal(t, identity.Derive("p1"), p.ID)
	assert.Equal(t, identity.Derive("s1"), p.StoreID)
	assert.Equal(t, "Cola", p.Name)
	assert.Equal(t, 8000.0, p.SellPrice)
	assert.Equal(t, 0.0, p.BuyPrice)
	assert.Equal(t, 0.0, p.MinStock)
	assert.Equal(t, "pcs", p.Unit)
	assert.True(t, p.IsActive)
	assert.Nil(t, p.CategoryID)
	assert.Nil(t, p.Barcode)
	assert.Nil(t, p.CreatedAt)

	names, values, err := models.Columns(p)
	require.NoError(t, err)
	i := slices.Index(names, "sell_price")
	require.GreaterOrEqual(t, i, 0, "columns: %v", names)
	assert.Equal(t, 8000.0, values[i])
	assert.Contains(t, names, "buy_price")
	assert.NotContains(t, names, "price")
}

func TestProducts_FallbackChain(t *testing.T) {
	mc := newTestContext(t)

	legacy := mapOne(t, "products", mc, source.Document{ID: "p2", Fields: map[string]any{
		"storeId": "s1", "price": 5000.0, "costPrice": "3500", "min_stock": 2.0,
	}})
	require.False(t, legacy.Skipped())
	p := legacy.Row.(*models.Product)
	assert.Equal(t, 5000.0, p.SellPrice)
	assert.Equal(t, 3500.0, p.BuyPrice)
	assert.Equal(t, 2.0, p.MinStock)

	bare := mapOne(t, "products", mc, source.Document{ID: "p3", Fields: map[string]any{"storeId": "s1"}})
	require.False(t, bare.Skipped())
	p = bare.Row.(*models.Product)
	assert.Equal(t, 0.0, p.SellPrice)
	assert.Equal(t, 0.0, p.BuyPrice)
}

func TestProducts_CategoryResolution(t *testing.T) {
	mc := newTestContext(t)
	storeID := identity.Derive("s1")
	mc.Index.AddCategory(storeID, "Minuman", identity.Derive("cat-drinks"))

	tests := []struct {
		name   string
		fields map[string]any
		want   *string
	}{
		{
			name:   "by name within store",
			fields: map[string]any{"storeId": "s1", "category": "minuman"},
			want:   strPtr(identity.Derive("cat-drinks")),
		},
		{
			name:   "by explicit id",
			fields: map[string]any{"storeId": "s1", "categoryId": "cat-drinks"},
			want:   strPtr(identity.Derive("cat-drinks")),
		},
		{
			name:   "legacy id in name field",
			fields: map[string]any{"storeId": "s1", "category": "cat-drinks"},
			want:   strPtr(identity.Derive("cat-drinks")),
		},
		{
			name:   "unknown category leaves product uncategorized",
			fields: map[string]any{"storeId": "s1", "category": "Snacks", "categoryId": "cat-x"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mapOne(t, "products", mc, source.Document{ID: "p", Fields: tt.fields})
			require.False(t, out.Skipped())
			assert.Equal(t, tt.want, out.Row.(*models.Product).CategoryID)
		})
	}
}

func TestCategories_StrictOrphanIsSkipped(t *testing.T) {
	mc := NewMigrationContext(refindex.New())
	mc.Index.AddStore(identity.Derive("other"), "")

	out := mapOne(t, "categories", mc, source.Document{ID: "cat1", Fields: map[string]any{
		"name": "Drinks", "storeId": "s1",
	}})

	assert.True(t, out.Skipped())
	assert.Contains(t, out.Reason, "s1")
}

func TestUsers_RehomesOrphanScope(t *testing.T) {
	mc := newTestContext(t)

	out := mapOne(t, "users", mc, source.Document{ID: "uid-9", Fields: map[string]any{
		"email":   "Kasir@Toko.id",
		"storeId": "gone",
		"role":    "Cashier",
	}})
	require.False(t, out.Skipped(), out.Reason)

	p := out.Row.(*models.Profile)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", p.ID)
	require.NotNil(t, p.StoreID)
	assert.Equal(t, identity.Derive("s1"), *p.StoreID)
	assert.Equal(t, "cashier", p.Role)
	assert.Equal(t, "Kasir@Toko.id", p.Name)
}

func TestRehome_LogsFallbackDecision(t *testing.T) {
	mc := newTestContext(t)
	core, logs := observer.New(zap.WarnLevel)
	mc.Logger = zap.New(core)

	out := mapOne(t, "audit_logs", mc, source.Document{ID: "a1", Fields: map[string]any{
		"storeId": "gone", "action": "login",
	}})
	require.False(t, out.Skipped(), out.Reason)

	entries := logs.FilterMessage("Rehomed record to fallback store").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a1", fields["source_id"])
	assert.Equal(t, "gone", fields["declared_store"])
	assert.Equal(t, identity.Derive("s1"), fields["fallback_store"])

	resolved := mapOne(t, "audit_logs", mc, source.Document{ID: "a2", Fields: map[string]any{"storeId": "s1"}})
	require.False(t, resolved.Skipped())
	assert.Equal(t, 1, logs.Len(), "resolved stores are not reported")
}

func TestUsers_SkipsWithoutIdentity(t *testing.T) {
	mc := newTestContext(t)

	out := mapOne(t, "users", mc, source.Document{ID: "u1", Fields: map[string]any{"name": "No Email"}})
	assert.True(t, out.Skipped())
	assert.Equal(t, "no email", out.Reason)

	out = mapOne(t, "users", mc, source.Document{ID: "u2", Fields: map[string]any{"email": "stranger@x.id"}})
	assert.True(t, out.Skipped())
	assert.Contains(t, out.Reason, "stranger@x.id")
}

func TestUsers_AfterWriteRegistersSourceUID(t *testing.T) {
	mc := newTestContext(t)
	m, err := DefaultRegistry().Lookup("users")
	require.NoError(t, err)

	doc := source.Document{ID: "uid-9", Fields: map[string]any{"email": "kasir@toko.id", "storeId": "s1"}}
	out := m.Map(doc, mc)
	require.False(t, out.Skipped())
	m.AfterWrite(out.Row, doc, mc)

	shift := mapOne(t, "shifts", mc, source.Document{ID: "sh1", Fields: map[string]any{
		"storeId": "s1", "cashierId": "uid-9",
	}})
	require.False(t, shift.Skipped())
	cashier := shift.Row.(*models.Shift).CashierID
	require.NotNil(t, cashier)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", *cashier)
}

func TestStores_AfterWriteMakesStoreValid(t *testing.T) {
	mc := NewMigrationContext(nil)
	m, err := DefaultRegistry().Lookup("store")
	require.NoError(t, err)

	doc := source.Document{ID: "s7", Fields: map[string]any{"name": "Toko Tujuh"}}
	out := m.Map(doc, mc)
	require.False(t, out.Skipped())
	assert.False(t, mc.Index.IsValidStore(identity.Derive("s7")))

	m.AfterWrite(out.Row, doc, mc)
	assert.True(t, mc.Index.IsValidStore(identity.Derive("s7")))
	fallback, ok := mc.Index.FallbackStore()
	assert.True(t, ok)
	assert.Equal(t, identity.Derive("s7"), fallback)
}

func TestStores_FallbackIsOldestRegardlessOfOrder(t *testing.T) {
	m, err := DefaultRegistry().Lookup("stores")
	require.NoError(t, err)

	docs := []source.Document{
		{ID: "s2", Fields: map[string]any{"name": "Baru", "createdAt": "2025-03-01T00:00:00.000Z"}},
		{ID: "s3", Fields: map[string]any{"name": "Tanpa Tanggal"}},
		{ID: "s1", Fields: map[string]any{"name": "Lama", "createdAt": 1609459200000.0}},
	}

	for _, order := range [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}} {
		mc := NewMigrationContext(nil)
		for _, i := range order {
			out := m.Map(docs[i], mc)
			require.False(t, out.Skipped())
			m.AfterWrite(out.Row, docs[i], mc)
		}
		fallback, ok := mc.Index.FallbackStore()
		require.True(t, ok)
		assert.Equal(t, identity.Derive("s1"), fallback, "order %v", order)
	}
}

func TestTransactions_KeepSourceID(t *testing.T) {
	mc := newTestContext(t)

	out := mapOne(t, "transactions", mc, source.Document{ID: "TRX-0001", Fields: map[string]any{
		"storeId":      "s1",
		"customerId":   "c1",
		"cashierEmail": "kasir@toko.id",
		"total":        25000.0,
		"items":        []any{map[string]any{"productId": "p1", "qty": 2.0}},
		"createdAt":    1704067200000.0,
	}})
	require.False(t, out.Skipped())

	trx := out.Row.(*models.Transaction)
	assert.Equal(t, "TRX-0001", trx.ID)
	assert.Equal(t, strPtr(identity.Derive("c1")), trx.CustomerID)
	assert.Nil(t, trx.ShiftID)
	assert.Equal(t, strPtr("11111111-1111-1111-1111-111111111111"), trx.CashierID)
	assert.Equal(t, 25000.0, trx.Subtotal)
	assert.Equal(t, 25000.0, trx.AmountPaid)
	assert.Equal(t, "cash", trx.PaymentMethod)
	assert.Equal(t, strPtr("2024-01-01T00:00:00.000Z"), trx.CreatedAt)
	assert.JSONEq(t, `[{"productId":"p1","qty":2}]`, string(trx.Items))
}

func TestDetails_RequiredParents(t *testing.T) {
	mc := newTestContext(t)

	out := mapOne(t, "shift_movements", mc, source.Document{ID: "m1", Fields: map[string]any{"storeId": "s1"}})
	assert.True(t, out.Skipped())
	assert.Equal(t, "no shift reference", out.Reason)

	out = mapOne(t, "point_history", mc, source.Document{ID: "ph1", Fields: map[string]any{"storeId": "s1"}})
	assert.True(t, out.Skipped())

	out = mapOne(t, "point_history", mc, source.Document{ID: "ph2", Fields: map[string]any{
		"storeId": "s1", "customerId": "c1", "transactionId": "TRX-0001", "points": 25.0,
	}})
	require.False(t, out.Skipped())
	ph := out.Row.(*models.PointHistory)
	assert.Equal(t, identity.Derive("c1"), ph.CustomerID)
	assert.Equal(t, strPtr("TRX-0001"), ph.TransactionID)
	assert.Equal(t, int64(25), ph.Points)
}

func TestStockMovements_ReferenceIsRawTransactionID(t *testing.T) {
	mc := newTestContext(t)

	out := mapOne(t, "stock_movements", mc, source.Document{ID: "sm1", Fields: map[string]any{
		"storeId": "s1", "productId": "p1", "transactionId": "TRX-0001", "qty": -2.0, "type": "SALE",
	}})
	require.False(t, out.Skipped())

	sm := out.Row.(*models.StockMovement)
	assert.Equal(t, strPtr("TRX-0001"), sm.ReferenceID)
	assert.Equal(t, strPtr(identity.Derive("p1")), sm.ProductID)
	assert.Equal(t, -2.0, sm.Quantity)
	assert.Equal(t, "sale", sm.Type)
}

func TestAuditLogs_RehomeWithoutFallbackSkips(t *testing.T) {
	mc := NewMigrationContext(nil)

	out := mapOne(t, "audit_logs", mc, source.Document{ID: "a1", Fields: map[string]any{"action": "login"}})
	assert.True(t, out.Skipped())
	assert.Contains(t, out.Reason, "no fallback store")
}

func TestForeignKeysUseSameSourceRepresentation(t *testing.T) {
	mc := newTestContext(t)

	customer := mapOne(t, "customers", mc, source.Document{ID: "c1", Fields: map[string]any{"storeId": "s1"}})
	trx := mapOne(t, "transactions", mc, source.Document{ID: "t1", Fields: map[string]any{"storeId": "s1", "customerId": "c1"}})
	require.False(t, customer.Skipped())
	require.False(t, trx.Skipped())

	assert.Equal(t, customer.Row.PrimaryKey(), *trx.Row.(*models.Transaction).CustomerID)
}

func strPtr(s string) *string { return &s }
