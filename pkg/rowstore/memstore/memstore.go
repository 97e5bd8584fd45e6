// Package memstore is an in-process rowstore.Client. It backs STORE_DRIVER=memory
// and the test suites, and can be told to fail specific calls.
package memstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
)

type Method string

const (
	MethodSelect Method = "select"
	MethodInsert Method = "insert"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
)

type callKey struct {
	table  string
	method Method
}

type Store struct {
	mu     sync.RWMutex
	tables map[string][]rowstore.Row
	faults map[callKey]error
	calls  map[callKey]int
	now    func() time.Time
}

type Option func(*Store)

// WithClock overrides the source of created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		tables: make(map[string][]rowstore.Row),
		faults: make(map[callKey]error),
		calls:  make(map[callKey]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) From(table string) rowstore.Table {
	return &tableHandle{store: s, name: table}
}

// Fail makes every subsequent call of method on table return err until Heal is called.
func (s *Store) Fail(table string, method Method, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[callKey{table, method}] = err
}

func (s *Store) Heal(table string, method Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, callKey{table, method})
}

// Calls reports how many times method was invoked on table, failed calls included.
func (s *Store) Calls(table string, method Method) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[callKey{table, method}]
}

// Len reports the number of rows currently stored in table.
func (s *Store) Len(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}

// enter records the call and returns the injected fault, if any. Caller holds mu.
func (s *Store) enter(table string, method Method) error {
	k := callKey{table, method}
	s.calls[k]++
	return s.faults[k]
}

type tableHandle struct {
	store *Store
	name  string
}

func (t *tableHandle) Select(ctx context.Context, q rowstore.Query) ([]rowstore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(t.name, MethodSelect); err != nil {
		return nil, err
	}

	var out []rowstore.Row
	for _, row := range s.tables[t.name] {
		ok, err := matches(row, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	for i, row := range out {
		out[i] = project(row, q.Columns)
	}
	return out, nil
}

func (t *tableHandle) Insert(ctx context.Context, row rowstore.Row) (rowstore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(t.name, MethodInsert); err != nil {
		return nil, err
	}

	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.New()
	}
	now := s.now().UTC()
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = now
	}
	if _, ok := stored["updated_at"]; !ok {
		stored["updated_at"] = now
	}
	s.tables[t.name] = append(s.tables[t.name], stored)
	return stored.Clone(), nil
}

func (t *tableHandle) Update(ctx context.Context, id uuid.UUID, patch rowstore.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(t.name, MethodUpdate); err != nil {
		return err
	}

	i := s.indexOf(t.name, id)
	if i < 0 {
		return rowstore.ErrNoRows
	}
	updated := s.tables[t.name][i].Clone()
	for k, v := range patch {
		updated[k] = v
	}
	s.tables[t.name][i] = updated
	return nil
}

func (t *tableHandle) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(t.name, MethodDelete); err != nil {
		return err
	}

	i := s.indexOf(t.name, id)
	if i < 0 {
		return rowstore.ErrNoRows
	}
	rows := s.tables[t.name]
	s.tables[t.name] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

func (s *Store) indexOf(table string, id uuid.UUID) int {
	want := id.String()
	for i, row := range s.tables[table] {
		if rowstore.Normalize(row["id"]) == want {
			return i
		}
	}
	return -1
}

func project(row rowstore.Row, columns []string) rowstore.Row {
	if len(columns) == 0 {
		return row.Clone()
	}
	out := make(rowstore.Row, len(columns))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out[c] = v
		}
	}
	return out
}

func matches(row rowstore.Row, filters []rowstore.Filter) (bool, error) {
	for _, f := range filters {
		v := row[f.Column]
		switch f.Op {
		case rowstore.OpEq:
			if compare(v, f.Value) != 0 || v == nil {
				return false, nil
			}
		case rowstore.OpIn:
			vs, _ := f.Value.([]any)
			found := false
			for _, candidate := range vs {
				if v != nil && compare(v, candidate) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case rowstore.OpGte:
			if v == nil || compare(v, f.Value) < 0 {
				return false, nil
			}
		case rowstore.OpLt:
			if v == nil || compare(v, f.Value) >= 0 {
				return false, nil
			}
		case rowstore.OpILike:
			str, ok := rowstore.AsString(v)
			pattern, _ := f.Value.(string)
			if !ok || !likeRegexp(pattern).MatchString(str) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: %q", rowstore.ErrUnsupportedFilter, f.Op)
		}
	}
	return true, nil
}

func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// compare orders two column values; nil sorts last.
func compare(a, b any) int {
	a, b = rowstore.Normalize(a), rowstore.Normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if ta, ok := a.(time.Time); ok {
		tb, err := rowstore.AsTime(b)
		if err != nil {
			return -1
		}
		return ta.Compare(tb)
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
