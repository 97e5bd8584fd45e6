// Package rowstore is a small generic tabular-storage client: rows are reached
// by table name, narrowed with filters and mutated with partial payloads.
package rowstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoRows is returned by Update and Delete when no row matched the id.
	ErrNoRows = errors.New("rowstore: no matching row")
	// ErrUnsupportedFilter is returned for a filter operator the backend cannot express.
	ErrUnsupportedFilter = errors.New("rowstore: unsupported filter")
)

// Row is one record keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type Op string

const (
	OpEq    Op = "eq"
	OpIn    Op = "in"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpILike Op = "ilike"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func Lt(column string, value any) Filter { return Filter{Column: column, Op: OpLt, Value: value} }
func ILike(column, pattern string) Filter { return Filter{Column: column, Op: OpILike, Value: pattern} }
func In[T any](column string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: OpIn, Value: vs}
}

type Order struct {
	Column string
	Desc   bool
}

// Query narrows a Select. Empty Columns means every column.
type Query struct {
	Columns []string
	Filters []Filter
	OrderBy []Order
	Limit   int
}

// Table is the set of primitives the services rely on for a single table.
type Table interface {
	Select(ctx context.Context, q Query) ([]Row, error)
	// Insert stores the row and returns it with server-assigned id,
	// created_at and updated_at.
	Insert(ctx context.Context, row Row) (Row, error)
	Update(ctx context.Context, id uuid.UUID, patch Row) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Client hands out tables by name. Implementations are safe for concurrent use.
type Client interface {
	From(table string) Table
}
