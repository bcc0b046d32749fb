package mapping

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/models"
	"github.com/kamaludinabdul/kula-pos-sub001/pkg/source"
)

// Mapper converts documents of one source collection into rows of one table.
type Mapper interface {
	// Entity is the source collection name.
	Entity() string
	// Table is the target table name.
	Table() string
	Scope() ScopePolicy
	Map(doc source.Document, mc *MigrationContext) Outcome
	// AfterWrite runs once the row produced for doc has been written.
	AfterWrite(row models.Row, doc source.Document, mc *MigrationContext)
}

type entityMapper struct {
	entity     string
	table      string
	scope      ScopePolicy
	mapFn      func(doc source.Document, mc *MigrationContext) Outcome
	afterWrite func(row models.Row, doc source.Document, mc *MigrationContext)
}

var _ Mapper = (*entityMapper)(nil)

func (m *entityMapper) Entity() string     { return m.entity }
func (m *entityMapper) Table() string      { return m.table }
func (m *entityMapper) Scope() ScopePolicy { return m.scope }

func (m *entityMapper) Map(doc source.Document, mc *MigrationContext) Outcome {
	return m.mapFn(doc, mc)
}

func (m *entityMapper) AfterWrite(row models.Row, doc source.Document, mc *MigrationContext) {
	if m.afterWrite != nil {
		m.afterWrite(row, doc, mc)
	}
}

// Registry holds mappers in dependency order: stores and other independent
// entities first, then entities referencing them, then transactional
// entities, then detail records.
type Registry struct {
	mappers []Mapper
}

func NewRegistry(mappers ...Mapper) (*Registry, error) {
	seen := make(map[string]bool, len(mappers))
	for _, m := range mappers {
		key := normalizeName(m.Entity())
		if seen[key] {
			return nil, fmt.Errorf("duplicate mapper for entity %q", m.Entity())
		}
		seen[key] = true
	}
	return &Registry{mappers: mappers}, nil
}

// DefaultRegistry returns every point-of-sale entity in dependency order.
func DefaultRegistry() *Registry {
	return &Registry{mappers: []Mapper{
		storesMapper(),
		usersMapper(),
		categoriesMapper(),
		suppliersMapper(),
		customersMapper(),
		productsMapper(),
		promotionsMapper(),
		shiftsMapper(),
		transactionsMapper(),
		purchaseOrdersMapper(),
		expensesMapper(),
		stockMovementsMapper(),
		shiftMovementsMapper(),
		pointHistoryMapper(),
		auditLogsMapper(),
	}}
}

func (r *Registry) All() []Mapper {
	out := make([]Mapper, len(r.mappers))
	copy(out, r.mappers)
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.mappers))
	for i, m := range r.mappers {
		names[i] = m.Entity()
	}
	return names
}

// Lookup finds a mapper by entity or table name, singular or plural.
func (r *Registry) Lookup(name string) (Mapper, error) {
	key := normalizeName(name)
	for _, m := range r.mappers {
		if key == normalizeName(m.Entity()) || key == normalizeName(m.Table()) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (valid: %s)", apperrors.ErrUnknownEntity, name, strings.Join(r.Names(), ", "))
}

// Select returns the named mappers in dependency order regardless of the
// order given. No names selects every mapper.
func (r *Registry) Select(names []string) ([]Mapper, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	wanted := make(map[Mapper]bool, len(names))
	for _, name := range names {
		m, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		wanted[m] = true
	}

	var out []Mapper
	for _, m := range r.mappers {
		if wanted[m] {
			out = append(out, m)
		}
	}
	return out, nil
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "_")
	return inflection.Singular(name)
}
