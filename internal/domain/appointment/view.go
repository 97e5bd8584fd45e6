package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ViewKind string

const (
	ViewDay      ViewKind = "day"
	ViewThreeDay ViewKind = "3-day"
	ViewWeek     ViewKind = "week"
)

func ParseViewKind(raw string) (ViewKind, error) {
	k := ViewKind(strings.ToLower(strings.TrimSpace(raw)))
	if k.Days() == 0 {
		return "", ErrInvalidView
	}
	return k, nil
}

// Days is the window length of k, zero for an unknown kind.
func (k ViewKind) Days() int {
	switch k {
	case ViewDay:
		return 1
	case ViewThreeDay:
		return 3
	case ViewWeek:
		return 7
	}
	return 0
}

// Window is the half-open range [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// VisibleWindow anchors the window at the start of today's calendar day, in today's location.
func VisibleWindow(kind ViewKind, today time.Time) (Window, error) {
	days := kind.Days()
	if days == 0 {
		return Window{}, ErrInvalidView
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return Window{Start: start, End: start.AddDate(0, 0, days)}, nil
}

const eventTextColor = "#ffffff"

// Event is the view-ready form of an appointment consumed by the calendar.
type Event struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	BackgroundColor string     `json:"backgroundColor"`
	BorderColor     string     `json:"borderColor"`
	TextColor       string     `json:"textColor"`
	Props           EventProps `json:"extendedProps"`
}

type EventProps struct {
	PatientID   uuid.UUID `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Motif       string    `json:"motif"`
	Status      Status    `json:"status"`
}

// NewEvent renders a. patientName is "<nom> <prenom>", empty when the patient is gone.
func NewEvent(a *Appointment, patientName string) Event {
	title := a.Reason
	if patientName != "" {
		title = patientName + " - " + a.Reason
	}
	ev := Event{
		ID:        a.ID,
		Title:     title,
		Start:     a.StartsAt,
		End:       a.EndsAt(),
		TextColor: eventTextColor,
		Props: EventProps{
			PatientID:   a.PatientID,
			PatientName: patientName,
			Motif:       a.Reason,
		},
	}
	return ev.WithStatus(a.Status)
}

// WithStatus returns a copy of e recoloured for s.
func (e Event) WithStatus(s Status) Event {
	e.Props.Status = s
	e.BackgroundColor = s.Color()
	e.BorderColor = s.Color()
	return e
}

// Moved returns a copy of e starting at start, keeping its length.
func (e Event) Moved(start time.Time) Event {
	length := e.End.Sub(e.Start)
	e.Start = start
	e.End = start.Add(length)
	return e
}

// Resized returns a copy of e spanning start plus the parsed duration.
func (e Event) Resized(start time.Time, duration string) Event {
	e.Start = start
	e.End = start.Add(ParseDuration(duration))
	return e
}
