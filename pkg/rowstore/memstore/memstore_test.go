package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	rows := []rowstore.Row{
		{"nom": "Martin", "prenom": "Claire", "numero_secu": "2850175123456", "age": 41},
		{"nom": "Dupont", "prenom": "Jean", "numero_secu": "1790375987654", "age": 46},
		{"nom": "bernard", "prenom": "Luc", "numero_secu": nil, "age": 9},
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		stored, err := s.From("patients").Insert(ctx, r)
		require.NoError(t, err)
		id, err := rowstore.AsUUID(stored["id"])
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestInsertAssignsIdentityAndTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return at }))

	row, err := s.From("appointments").Insert(context.Background(), rowstore.Row{"motif": "Détartrage"})
	require.NoError(t, err)

	assert.NotNil(t, row["id"])
	assert.Equal(t, at, row["created_at"])
	assert.Equal(t, at, row["updated_at"])
	assert.Equal(t, 1, s.Len("appointments"))
}

func TestSelectFiltersAndOrder(t *testing.T) {
	s := New()
	ids := seed(t, s)
	ctx := context.Background()
	table := s.From("patients")

	t.Run("eq", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.Eq("id", ids[1])}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Dupont", rows[0]["nom"])
	})

	t.Run("in", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.In("id", []uuid.UUID{ids[0], ids[2]})}})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("ilike is case insensitive", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.ILike("nom", "%MAR%")}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Martin", rows[0]["nom"])
	})

	t.Run("ilike skips null columns", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.ILike("numero_secu", "%")}})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("range", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.Gte("age", 10), rowstore.Lt("age", 46)}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Martin", rows[0]["nom"])
	})

	t.Run("order and projection", func(t *testing.T) {
		rows, err := table.Select(ctx, rowstore.Query{
			Columns: []string{"nom"},
			OrderBy: []rowstore.Order{{Column: "age", Desc: true}},
			Limit:   2,
		})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, rowstore.Row{"nom": "Dupont"}, rows[0])
		assert.Equal(t, rowstore.Row{"nom": "Martin"}, rows[1])
	})
}

func TestSelectOrdersTimes(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := s.From("appointments").Insert(ctx, rowstore.Row{"date_heure": base.Add(offset)})
		require.NoError(t, err)
	}

	rows, err := s.From("appointments").Select(ctx, rowstore.Query{
		Filters: []rowstore.Filter{rowstore.Gte("date_heure", base.Add(30*time.Minute))},
		OrderBy: []rowstore.Order{{Column: "date_heure"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, base.Add(time.Hour), rows[0]["date_heure"])
	assert.Equal(t, base.Add(2*time.Hour), rows[1]["date_heure"])
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ids := seed(t, s)
	ctx := context.Background()
	table := s.From("patients")

	require.NoError(t, table.Update(ctx, ids[0], rowstore.Row{"prenom": "Claire-Anne"}))
	rows, err := table.Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.Eq("id", ids[0])}})
	require.NoError(t, err)
	assert.Equal(t, "Claire-Anne", rows[0]["prenom"])
	assert.Equal(t, "Martin", rows[0]["nom"])

	require.NoError(t, table.Delete(ctx, ids[0]))
	assert.Equal(t, 2, s.Len("patients"))

	assert.ErrorIs(t, table.Update(ctx, ids[0], rowstore.Row{"nom": "x"}), rowstore.ErrNoRows)
	assert.ErrorIs(t, table.Delete(ctx, ids[0]), rowstore.ErrNoRows)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	s := New()
	ids := seed(t, s)
	ctx := context.Background()

	rows, err := s.From("patients").Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.Eq("id", ids[0])}})
	require.NoError(t, err)
	rows[0]["nom"] = "mutated"

	again, err := s.From("patients").Select(ctx, rowstore.Query{Filters: []rowstore.Filter{rowstore.Eq("id", ids[0])}})
	require.NoError(t, err)
	assert.Equal(t, "Martin", again[0]["nom"])
}

func TestFailInjection(t *testing.T) {
	s := New()
	ids := seed(t, s)
	ctx := context.Background()
	boom := errors.New("connection reset")

	s.Fail("patients", MethodUpdate, boom)
	err := s.From("patients").Update(ctx, ids[0], rowstore.Row{"nom": "x"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s.Calls("patients", MethodUpdate))

	s.Heal("patients", MethodUpdate)
	require.NoError(t, s.From("patients").Update(ctx, ids[0], rowstore.Row{"nom": "x"}))
	assert.Equal(t, 2, s.Calls("patients", MethodUpdate))
	assert.Zero(t, s.Calls("patients", MethodDelete))
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.From("patients").Select(ctx, rowstore.Query{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, s.Calls("patients", MethodSelect))
}
