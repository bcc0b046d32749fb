package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Row is a fully-typed record bound for one target table.
// Every target table is keyed by a single "id" column.
type Row interface {
	TableName() string
	PrimaryKey() string
}

// JSON holds a pre-encoded JSON document destined for a json/jsonb column.
type JSON []byte

// NewJSON encodes v. Values that cannot be encoded become SQL NULL.
func NewJSON(v any) JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return JSON(b)
}

// Value implements driver.Valuer. The text form is accepted by jsonb,
// TEXT and NVARCHAR columns alike.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

type columnSpec struct {
	names []string
	index []int
}

var columnCache sync.Map // reflect.Type -> *columnSpec

// Columns returns the row's column names and values in struct field order.
// Columns come from `db` struct tags; untagged fields and `db:"-"` are ignored.
func Columns(r Row) ([]string, []any, error) {
	v := reflect.ValueOf(r)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("nil %T", r)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("row %T is not a struct", r)
	}

	spec := specFor(v.Type())
	values := make([]any, len(spec.index))
	for i, idx := range spec.index {
		values[i] = v.Field(idx).Interface()
	}
	return spec.names, values, nil
}

func specFor(t reflect.Type) *columnSpec {
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnSpec)
	}

	spec := &columnSpec{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		spec.names = append(spec.names, tag)
		spec.index = append(spec.index, i)
	}

	actual, _ := columnCache.LoadOrStore(t, spec)
	return actual.(*columnSpec)
}
