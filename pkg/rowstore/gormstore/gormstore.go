// Package gormstore implements rowstore.Client on top of a gorm connection.
package gormstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db      *gorm.DB
	metrics *metrics.Collector

	// timestamps caches, per table, which of created_at/updated_at exist.
	timestamps sync.Map
}

// New wraps db. The collector is optional.
func New(db *gorm.DB, m *metrics.Collector) *Store {
	return &Store{db: db, metrics: m}
}

func (s *Store) From(name string) rowstore.Table {
	return &table{store: s, name: name}
}

type table struct {
	store *Store
	name  string
}

func (t *table) observe(op string, start time.Time) {
	if t.store.metrics == nil {
		return
	}
	t.store.metrics.DBQueryDuration.WithLabelValues(op, t.name).Observe(time.Since(start).Seconds())
}

func (t *table) Select(ctx context.Context, q rowstore.Query) ([]rowstore.Row, error) {
	defer t.observe("select", time.Now())

	tx := t.store.db.WithContext(ctx).Table(t.name)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, f := range q.Filters {
		expr, err := filterExpr(f)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr)
	}
	for _, o := range q.OrderBy {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var raw []map[string]any
	if err := tx.Find(&raw).Error; err != nil {
		return nil, fmt.Errorf("select from %s: %w", t.name, err)
	}

	rows := make([]rowstore.Row, len(raw))
	for i, r := range raw {
		rows[i] = rowstore.Row(r)
	}
	return rows, nil
}

func (t *table) Insert(ctx context.Context, row rowstore.Row) (rowstore.Row, error) {
	defer t.observe("insert", time.Now())

	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		stored["id"] = uuid.New()
	}
	now := time.Now().UTC()
	for _, col := range t.timestampColumns(ctx) {
		if _, ok := stored[col]; !ok {
			stored[col] = now
		}
	}

	if err := t.store.db.WithContext(ctx).Table(t.name).Create(map[string]any(stored)).Error; err != nil {
		return nil, fmt.Errorf("insert into %s: %w", t.name, err)
	}
	return stored, nil
}

func (t *table) Update(ctx context.Context, id uuid.UUID, patch rowstore.Row) error {
	defer t.observe("update", time.Now())

	res := t.store.db.WithContext(ctx).
		Table(t.name).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
		Updates(map[string]any(patch))
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", t.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return rowstore.ErrNoRows
	}
	return nil
}

func (t *table) Delete(ctx context.Context, id uuid.UUID) error {
	defer t.observe("delete", time.Now())

	res := t.store.db.WithContext(ctx).Exec("DELETE FROM ? WHERE id = ?", clause.Table{Name: t.name}, id)
	if res.Error != nil {
		return fmt.Errorf("delete from %s: %w", t.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return rowstore.ErrNoRows
	}
	return nil
}

// timestampColumns reports which of created_at/updated_at the table has, so
// that tables such as audit_logs can be written through the same path.
func (t *table) timestampColumns(ctx context.Context) []string {
	if v, ok := t.store.timestamps.Load(t.name); ok {
		return v.([]string)
	}
	m := t.store.db.WithContext(ctx).Migrator()
	var cols []string
	for _, col := range []string{"created_at", "updated_at"} {
		if m.HasColumn(t.name, col) {
			cols = append(cols, col)
		}
	}
	t.store.timestamps.Store(t.name, cols)
	return cols
}

func filterExpr(f rowstore.Filter) (clause.Expression, error) {
	col := clause.Column{Name: f.Column}
	switch f.Op {
	case rowstore.OpEq:
		return clause.Eq{Column: col, Value: f.Value}, nil
	case rowstore.OpIn:
		vs, _ := f.Value.([]any)
		return clause.IN{Column: col, Values: vs}, nil
	case rowstore.OpGte:
		return clause.Gte{Column: col, Value: f.Value}, nil
	case rowstore.OpLt:
		return clause.Lt{Column: col, Value: f.Value}, nil
	case rowstore.OpILike:
		return clause.Expr{SQL: "? ILIKE ?", Vars: []any{col, f.Value}}, nil
	}
	return nil, fmt.Errorf("%w: %q", rowstore.ErrUnsupportedFilter, f.Op)
}
