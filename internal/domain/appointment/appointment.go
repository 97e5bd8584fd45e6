package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status values are persisted in their French wire form, as the calendar
// front-end and existing rows expect them.
type Status string

const (
	StatusPlanned   Status = "planifié"
	StatusConfirmed Status = "confirmé"
	StatusCancelled Status = "annulé"
	StatusCompleted Status = "terminé"
)

var statusAliases = map[string]Status{
	"planifié":  StatusPlanned,
	"planned":   StatusPlanned,
	"confirmé":  StatusConfirmed,
	"confirmed": StatusConfirmed,
	"annulé":    StatusCancelled,
	"cancelled": StatusCancelled,
	"terminé":   StatusCompleted,
	"completed": StatusCompleted,
}

// ParseStatus accepts the wire value or its English name, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", ErrInvalidStatus
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Color is the calendar colour for s. Unknown statuses share the planned colour.
func (s Status) Color() string {
	switch s {
	case StatusConfirmed:
		return "#059669"
	case StatusCancelled:
		return "#DC2626"
	case StatusCompleted:
		return "#6B7280"
	}
	return "#4F46E5"
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`

	StartsAt time.Time `gorm:"column:date_heure;not null;index" json:"date_heure"`
	Duration string    `gorm:"column:duree;type:text;not null;default:'30 minutes'" json:"duree"`
	Reason   string    `gorm:"column:motif;type:text;not null" json:"motif"`
	Notes    *string   `gorm:"column:notes;type:text" json:"notes"`
	Status   Status    `gorm:"column:statut;type:text;not null;default:'planifié';index" json:"statut"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndsAt is derived from the stored duration and never persisted.
func (a *Appointment) EndsAt() time.Time {
	return a.StartsAt.Add(ParseDuration(a.Duration))
}

// CreateAppointmentCommand carries form input as entered; the service parses
// and validates it before anything reaches storage.
type CreateAppointmentCommand struct {
	PatientID uuid.UUID
	StartsAt  string
	Duration  string
	Reason    string
	Notes     string
	// Status is ignored: new appointments are always planned.
	Status string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	StartsAt  *time.Time
	Duration  *string
	Status    *Status
	UpdatedAt time.Time
}

var startLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseStart reads an RFC 3339 timestamp or the form-style local
// "YYYY-MM-DDTHH:MM", which is interpreted in loc.
func ParseStart(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidStart
}
