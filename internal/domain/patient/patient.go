package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const BirthDateLayout = "2006-01-02"

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	LastName  string `gorm:"column:nom;type:text;not null;index" json:"nom"`
	FirstName string `gorm:"column:prenom;type:text;not null" json:"prenom"`
	// BirthDate is a calendar date, always YYYY-MM-DD.
	BirthDate string `gorm:"column:date_naissance;type:date;not null" json:"date_naissance"`

	Phone                *string `gorm:"column:telephone;type:text" json:"telephone"`
	Email                *string `gorm:"column:email;type:text" json:"email"`
	Address              *string `gorm:"column:adresse;type:text" json:"adresse"`
	SocialSecurityNumber *string `gorm:"column:numero_secu;type:text" json:"numero_secu"`

	// PHI
	MedicalHistory    *string `gorm:"column:antecedents;type:text" json:"antecedents"`
	Allergies         *string `gorm:"column:allergies;type:text" json:"allergies"`
	CurrentTreatments *string `gorm:"column:traitements_actuels;type:text" json:"traitements_actuels"`

	Insurance              *string `gorm:"column:assurance;type:text" json:"assurance"`
	SupplementaryInsurance *string `gorm:"column:mutuelle;type:text" json:"mutuelle"`
	Notes                  *string `gorm:"column:notes;type:text" json:"notes"`
}

func (Patient) TableName() string {
	return "patients"
}

// FullName is "<nom> <prenom>", the form used in calendar titles.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.LastName + " " + p.FirstName)
}

// Matches reports whether term occurs in "<nom> <prenom>" (case-insensitive)
// or in the social security number. An empty term matches everything.
func (p *Patient) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.LastName+" "+p.FirstName), term) {
		return true
	}
	return p.SocialSecurityNumber != nil && strings.Contains(strings.ToLower(*p.SocialSecurityNumber), term)
}

type CreatePatientCommand struct {
	LastName               string
	FirstName              string
	BirthDate              string
	Phone                  string
	Email                  string
	Address                string
	SocialSecurityNumber   string
	MedicalHistory         string
	Allergies              string
	CurrentTreatments      string
	Insurance              string
	SupplementaryInsurance string
	Notes                  string
}

// UpdatePatientCommand is partial: nil fields are left as they are, a pointer
// to an empty string clears an optional field.
type UpdatePatientCommand struct {
	LastName               *string
	FirstName              *string
	BirthDate              *string
	Phone                  *string
	Email                  *string
	Address                *string
	SocialSecurityNumber   *string
	MedicalHistory         *string
	Allergies              *string
	CurrentTreatments      *string
	Insurance              *string
	SupplementaryInsurance *string
	Notes                  *string
}

type ListPatientsQuery struct {
	Search string
}

// Optional trims s and maps an empty result to nil, the stored form of "not provided".
func Optional(s string) *string {
	if t := strings.TrimSpace(s); t != "" {
		return &t
	}
	return nil
}

// OptionalEmail is Optional plus lower-casing.
func OptionalEmail(s string) *string {
	return Optional(strings.ToLower(s))
}

var birthDateLayouts = []string{
	BirthDateLayout,
	"02/01/2006",
	time.RFC3339,
}

// NormalizeBirthDate accepts YYYY-MM-DD, DD/MM/YYYY or an RFC 3339 timestamp and
// returns the YYYY-MM-DD form. Dates after today are rejected.
func NormalizeBirthDate(raw string, today time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthDateLayouts {
		d, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if d.Format(BirthDateLayout) > today.Format(BirthDateLayout) {
			return "", ErrInvalidDateOfBirth
		}
		return d.Format(BirthDateLayout), nil
	}
	return "", ErrUnparseableDateOfBirth
}

// DeletePolicy decides what happens to a patient's appointments when the patient is deleted.
type DeletePolicy string

const (
	// DeleteRestrict refuses the delete while appointments reference the patient.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade removes the patient's appointments first.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteDetach removes the patient only; appointments keep the dangling reference.
	DeleteDetach DeletePolicy = "detach"
)

func ParseDeletePolicy(raw string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case DeleteRestrict, DeleteCascade, DeleteDetach:
		return p, nil
	case "":
		return DeleteRestrict, nil
	}
	return "", ErrInvalidDeletePolicy
}
