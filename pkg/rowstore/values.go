package rowstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Drivers hand values back in different shapes (pgx returns uuid columns as
// strings or [16]byte, text as string or []byte). These helpers coerce them.

func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

func AsUUID(v any) (uuid.UUID, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case string:
		return uuid.Parse(t)
	case []byte:
		if len(t) == 16 {
			return uuid.FromBytes(t)
		}
		return uuid.ParseBytes(t)
	case nil:
		return uuid.Nil, fmt.Errorf("null uuid")
	}
	return uuid.Nil, fmt.Errorf("unexpected uuid value of type %T", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func AsTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("null time")
		}
		return *t, nil
	case string:
		return ParseTime(t)
	case []byte:
		return ParseTime(string(t))
	case nil:
		return time.Time{}, fmt.Errorf("null time")
	}
	return time.Time{}, fmt.Errorf("unexpected time value of type %T", v)
}

func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

// Normalize maps a value onto a comparable form: uuids and byte slices become
// strings and pointers are dereferenced.
func Normalize(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		return string(t)
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}
