// Package repository maps domain entities onto rowstore tables. Values coming
// back from a driver are coerced here so the services only see typed fields.
package repository

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
)

func stringCol(r rowstore.Row, col string) string {
	s, _ := rowstore.AsString(r[col])
	return s
}

func optionalCol(r rowstore.Row, col string) *string {
	if s, ok := rowstore.AsString(r[col]); ok {
		return &s
	}
	return nil
}

func uuidCol(r rowstore.Row, col string) (uuid.UUID, error) {
	id, err := rowstore.AsUUID(r[col])
	if err != nil {
		return uuid.Nil, fmt.Errorf("column %s: %w", col, err)
	}
	return id, nil
}

func timeCol(r rowstore.Row, col string) (time.Time, error) {
	t, err := rowstore.AsTime(r[col])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

// optionalTimeCol tolerates a missing or null column.
func optionalTimeCol(r rowstore.Row, col string) time.Time {
	t, _ := rowstore.AsTime(r[col])
	return t
}

// nullable turns a nil *string into an untyped nil so drivers write NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
