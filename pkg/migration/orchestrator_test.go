package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/identity"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/mapping"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/refindex"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/target"
)

type fakeStore struct {
	collections map[string][]source.Document
	errs        map[string]error
	fetched     []string
}

func (f *fakeStore) Fetch(_ context.Context, collection string) ([]source.Document, error) {
	f.fetched = append(f.fetched, collection)
	if err, ok := f.errs[collection]; ok {
		return nil, err
	}
	docs, ok := f.collections[collection]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return docs, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeRefs struct {
	identities []refindex.Identity
	stores     []refindex.StoreRef
	err        error
}

func (f *fakeRefs) Identities(context.Context) ([]refindex.Identity, error) {
	return f.identities, f.err
}

func (f *fakeRefs) Categories(context.Context) ([]refindex.CategoryRef, error) {
	return nil, f.err
}

func (f *fakeRefs) Stores(context.Context) ([]refindex.StoreRef, error) {
	return f.stores, f.err
}

type recordingWriter struct {
	rows    []models.Row
	failFor map[string]error
}

func (w *recordingWriter) Upsert(_ context.Context, row models.Row) error {
	if err, ok := w.failFor[row.PrimaryKey()]; ok {
		return err
	}
	w.rows = append(w.rows, row)
	return nil
}

var _ target.Writer = (*recordingWriter)(nil)

func doc(id string, fields map[string]any) source.Document {
	return source.Document{ID: id, Fields: fields}
}

func scenario() (*fakeStore, *recordingWriter) {
	store := &fakeStore{
		collections: map[string][]source.Document{
			"stores": {doc("s1", map[string]any{"name": "Toko Satu"})},
			"categories": {
				doc("cat1", map[string]any{"storeId": "s1", "name": "Minuman"}),
				doc("cat2", map[string]any{"storeId": "gone", "name": "Drinks"}),
			},
			"products": {
				doc("p1", map[string]any{"storeId": "s1", "name": "Cola", "category": "Minuman", "sellPrice": 8000.0}),
				doc("p2", map[string]any{"storeId": "s1", "name": "Teh"}),
			},
			"transactions": {doc("TRX-1", map[string]any{"storeId": "s1", "total": 8000.0})},
		},
		errs: map[string]error{
			"customers": errors.New("deadline exceeded reading customers"),
		},
	}
	writer := &recordingWriter{failFor: map[string]error{
		identity.Derive("p2"): target.ForeignKeyError(errors.New(
			`insert or update on table "products" violates foreign key constraint "products_store_id_fkey"`)),
		"TRX-1": errors.New(`column "change_amount" of relation "transactions" does not exist`),
	}}
	return store, writer
}

var scenarioEntities = []string{"transactions", "products", "customers", "categories", "users", "stores"}

func TestRun_ClassifiesOutcomes(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.NewNop())

	report, err := o.Run(context.Background(), Options{Entities: scenarioEntities})
	require.NoError(t, err)

	assert.Equal(t, []string{"stores", "users", "categories", "customers", "products", "transactions"}, store.fetched)

	byEntity := map[string]*Tally{}
	for _, tally := range report.Tallies {
		byEntity[tally.Entity] = tally
	}
	assert.Equal(t, Tally{Entity: "categories", Attempted: 2, Succeeded: 1, Skipped: 1}, *byEntity["categories"])
	assert.Equal(t, Tally{Entity: "products", Attempted: 2, Succeeded: 1, Skipped: 1}, *byEntity["products"])
	assert.Equal(t, Tally{Entity: "transactions", Attempted: 1, Errored: 1}, *byEntity["transactions"])
	assert.Equal(t, "deadline exceeded reading customers", byEntity["customers"].FetchError)
	assert.Equal(t, Tally{Entity: "users"}, *byEntity["users"])
	assert.True(t, report.Failed())

	// The category written in this run resolves for products.
	require.Len(t, writer.rows, 3)
	product := writer.rows[2].(*models.Product)
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, identity.Derive("cat1"), *product.CategoryID)
}

func TestRun_LogsProblemRecordsWithSourceID(t *testing.T) {
	store, writer := scenario()
	core, logs := observer.New(zapcore.WarnLevel)
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.New(core))

	_, err := o.Run(context.Background(), Options{Entities: scenarioEntities})
	require.NoError(t, err)

	skipped := logs.FilterMessage("Skipped record").AllUntimed()
	require.Len(t, skipped, 1)
	assert.Equal(t, "cat2", skipped[0].ContextMap()["source_id"])
	assert.Equal(t, "categories", skipped[0].ContextMap()["entity"])

	fk := logs.FilterMessage("Skipped record, referenced row missing in target").AllUntimed()
	require.Len(t, fk, 1)
	assert.Equal(t, "p2", fk[0].ContextMap()["source_id"])

	failed := logs.FilterMessage("Failed to write record").AllUntimed()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	assert.Equal(t, "TRX-1", failed[0].ContextMap()["source_id"])

	assert.Equal(t, 1, logs.FilterMessage("Failed to fetch source collection").Len())
}

func TestRun_Summary(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.NewNop())

	report, err := o.Run(context.Background(), Options{Entities: scenarioEntities})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary", buf.Bytes())
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.NewNop())

	report, err := o.Run(context.Background(), Options{Entities: []string{"stores", "categories", "products"}, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, writer.rows)
	assert.True(t, report.DryRun)

	totals := report.Totals()
	assert.Equal(t, 5, totals.Attempted)
	assert.Equal(t, 4, totals.Succeeded, "dry run counts every mapped row")
	assert.Equal(t, 1, totals.Skipped)
	assert.False(t, report.Failed())
}

func TestRun_ReferenceIndexFailureIsFatal(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{err: errors.New("connection refused")}, writer, mapping.DefaultRegistry(), zap.NewNop())

	report, err := o.Run(context.Background(), Options{})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, apperrors.ErrReferenceIndex)
	assert.Empty(t, store.fetched, "no entity is touched")
	assert.Empty(t, writer.rows)
}

func TestRun_UnknownEntity(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.NewNop())

	_, err := o.Run(context.Background(), Options{Entities: []string{"invoices"}})
	assert.ErrorIs(t, err, apperrors.ErrUnknownEntity)
	assert.Empty(t, store.fetched)
}

func TestRun_Cancelled(t *testing.T) {
	store, writer := scenario()
	o := New(store, &fakeRefs{}, writer, mapping.DefaultRegistry(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := o.Run(ctx, Options{Entities: []string{"stores"}})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, writer.rows)
}

func TestRun_RehomesToExistingStore(t *testing.T) {
	store := &fakeStore{collections: map[string][]source.Document{
		"users": {doc("uid-1", map[string]any{"email": "kasir@toko.id", "storeId": "unknown"})},
	}}
	refs := &fakeRefs{
		identities: []refindex.Identity{{ID: "11111111-1111-1111-1111-111111111111", Email: "kasir@toko.id"}},
		stores:     []refindex.StoreRef{{ID: identity.Derive("s1")}},
	}
	writer := &recordingWriter{}
	o := New(store, refs, writer, mapping.DefaultRegistry(), zap.NewNop())

	report, err := o.Run(context.Background(), Options{Entities: []string{"users"}})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Totals().Succeeded)
	require.Len(t, writer.rows, 1)
	profile := writer.rows[0].(*models.Profile)
	assert.Equal(t, identity.Derive("s1"), *profile.StoreID)
}
