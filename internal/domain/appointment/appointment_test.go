package appointment

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30 minutes", 30 * time.Minute},
		{"45 minutes", 45 * time.Minute},
		{"1 minute", time.Minute},
		{"1 hour", time.Hour},
		{"2 Hours", 2 * time.Hour},
		{"90minutes", 90 * time.Minute},
		{"about 15 MINUTES", 15 * time.Minute},
		{"", 30 * time.Minute},
		{"one hour", 30 * time.Minute},
		{"45", 30 * time.Minute},
		{"99999999999999999999 minutes", 30 * time.Minute},
		{"3000000 hours", 30 * time.Minute},
		{"200000000 minutes", 30 * time.Minute},
		{"2562047 hours", 2562047 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 minute", FormatDuration(1))
	assert.Equal(t, "45 minutes", FormatDuration(45))
	assert.Equal(t, "1 hour", FormatDuration(60))
	assert.Equal(t, "90 minutes", FormatDuration(90))
	assert.Equal(t, "2 hours", FormatDuration(120))

	for _, n := range []int{1, 15, 30, 60, 75, 180} {
		assert.Equal(t, time.Duration(n)*time.Minute, ParseDuration(FormatDuration(n)), "round trip %d", n)
	}
}

func TestValidateDuration(t *testing.T) {
	for _, ok := range []string{"30 minutes", "1 hour", "2 hours", "15 Minutes"} {
		assert.NoError(t, ValidateDuration(ok), ok)
	}
	for _, bad := range []string{"", "0 minutes", "30", "30min", "half an hour", "-5 minutes", "30 minutes later", "3000000 hours", "200000000 minutes"} {
		assert.ErrorIs(t, ValidateDuration(bad), ErrInvalidDuration, bad)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"planifié":  StatusPlanned,
		"PLANNED":   StatusPlanned,
		" confirmé": StatusConfirmed,
		"Annulé":    StatusCancelled,
		"cancelled": StatusCancelled,
		"terminé":   StatusCompleted,
		"completed": StatusCompleted,
	}
	for in, want := range tests {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("no_show")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#4F46E5", StatusPlanned.Color())
	assert.Equal(t, "#059669", StatusConfirmed.Color())
	assert.Equal(t, "#DC2626", StatusCancelled.Color())
	assert.Equal(t, "#6B7280", StatusCompleted.Color())
	assert.Equal(t, "#4F46E5", Status("reporté").Color())
}

func TestVisibleWindow(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	today := time.Date(2026, 3, 27, 16, 45, 0, 0, paris)
	day := time.Date(2026, 3, 27, 0, 0, 0, 0, paris)

	tests := []struct {
		kind ViewKind
		end  time.Time
	}{
		{ViewDay, day.AddDate(0, 0, 1)},
		{ViewThreeDay, day.AddDate(0, 0, 3)},
		{ViewWeek, day.AddDate(0, 0, 7)},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w, err := VisibleWindow(tt.kind, today)
			require.NoError(t, err)
			assert.True(t, w.Start.Equal(day))
			assert.True(t, w.End.Equal(tt.end))
			assert.True(t, w.Contains(day))
			assert.False(t, w.Contains(tt.end))
			assert.True(t, w.Contains(tt.end.Add(-time.Nanosecond)))
		})
	}

	_, err = VisibleWindow("month", today)
	assert.ErrorIs(t, err, ErrInvalidView)
}

func TestParseViewKind(t *testing.T) {
	k, err := ParseViewKind("3-Day")
	require.NoError(t, err)
	assert.Equal(t, ViewThreeDay, k)

	_, err = ParseViewKind("fortnight")
	assert.ErrorIs(t, err, ErrInvalidView)
}

func TestParseStart(t *testing.T) {
	got, err := ParseStart("2026-03-02T09:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), got)

	got, err = ParseStart("2026-03-02T09:30:00+01:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)))

	_, err = ParseStart("tomorrow morning", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidStart)
}

func TestNewEvent(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := &Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		StartsAt:  start,
		Duration:  "45 minutes",
		Reason:    "Détartrage",
		Status:    StatusConfirmed,
	}

	ev := NewEvent(a, "Martin Claire")
	assert.Equal(t, "Martin Claire - Détartrage", ev.Title)
	assert.Equal(t, start.Add(45*time.Minute), ev.End)
	assert.Equal(t, "#059669", ev.BackgroundColor)
	assert.Equal(t, ev.BackgroundColor, ev.BorderColor)
	assert.Equal(t, "#ffffff", ev.TextColor)
	assert.Equal(t, a.PatientID, ev.Props.PatientID)
	assert.Equal(t, StatusConfirmed, ev.Props.Status)

	orphan := NewEvent(a, "")
	assert.Equal(t, "Détartrage", orphan.Title)
	assert.Empty(t, orphan.Props.PatientName)
}

func TestEventEndFallsBackOnBadDuration(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := &Appointment{StartsAt: start, Duration: "a while"}
	assert.Equal(t, start.Add(30*time.Minute), a.EndsAt())
}

func TestLongDurationNeverEndsBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	a := &Appointment{StartsAt: start, Duration: "3000000 hours"}
	assert.True(t, a.EndsAt().After(start))
	assert.Equal(t, start.Add(30*time.Minute), a.EndsAt())
}

func TestEventMovedAndResized(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ev := NewEvent(&Appointment{StartsAt: start, Duration: "1 hour", Status: StatusPlanned}, "")

	moved := ev.Moved(start.Add(2 * time.Hour))
	assert.Equal(t, start.Add(2*time.Hour), moved.Start)
	assert.Equal(t, start.Add(3*time.Hour), moved.End)
	assert.Equal(t, start, ev.Start, "original copy untouched")

	resized := ev.Resized(start, "90 minutes")
	assert.Equal(t, start.Add(90*time.Minute), resized.End)

	cancelled := ev.WithStatus(StatusCancelled)
	assert.Equal(t, "#DC2626", cancelled.BorderColor)
	assert.Equal(t, StatusPlanned, ev.Props.Status)
}
