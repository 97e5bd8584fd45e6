// Package dossier holds the per-patient medical dossier sections. The viewer
// is read-only: sections are loaded and returned as stored.
package dossier

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/google/uuid"
)

type Section string

const (
	SectionDentalSchema   Section = "dental_schema"
	SectionTreatments     Section = "treatments"
	SectionTreatmentPlans Section = "treatment_plans"
	SectionClinicalNotes  Section = "clinical_notes"
	SectionPayments       Section = "payments"
	SectionMedicalImages  Section = "medical_images"
)

// Sections lists every section in tab order. Each is a table keyed by patient_id.
var Sections = []Section{
	SectionDentalSchema,
	SectionTreatments,
	SectionTreatmentPlans,
	SectionClinicalNotes,
	SectionPayments,
	SectionMedicalImages,
}

type Dossier struct {
	Patient  *patient.Patient            `json:"patient"`
	Sections map[Section][]map[string]any `json:"sections"`
}

type base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
}

// ToothRecord is one line of the dental chart.
type ToothRecord struct {
	base
	ToothNumber int     `gorm:"column:tooth_number;not null"`
	Status      *string `gorm:"column:status;type:text"`
	Notes       *string `gorm:"column:notes;type:text"`
}

func (ToothRecord) TableName() string { return string(SectionDentalSchema) }

type Treatment struct {
	base
	PerformedOn   time.Time `gorm:"column:date_traitement;type:date;not null"`
	Kind          string    `gorm:"column:type_traitement;type:text;not null"`
	Description   *string   `gorm:"column:description;type:text"`
	ToothNumber   *int      `gorm:"column:tooth_number"`
	Cost          *float64  `gorm:"column:cout;type:numeric(10,2)"`
	PaymentStatus string    `gorm:"column:statut_paiement;type:text;not null;default:'en_attente'"`
}

func (Treatment) TableName() string { return string(SectionTreatments) }

type TreatmentPlan struct {
	base
	CreatedOn     time.Time `gorm:"column:date_creation;type:date;not null"`
	Description   string    `gorm:"column:description;type:text;not null"`
	Status        string    `gorm:"column:statut;type:text;not null"`
	Priority      *string   `gorm:"column:priorite;type:text"`
	EstimatedCost *float64  `gorm:"column:cout_estime;type:numeric(10,2)"`
}

func (TreatmentPlan) TableName() string { return string(SectionTreatmentPlans) }

type ClinicalNote struct {
	base
	WrittenOn time.Time `gorm:"column:date_note;type:date;not null"`
	Content   string    `gorm:"column:contenu;type:text;not null"`
	Kind      *string   `gorm:"column:type_note;type:text"`
}

func (ClinicalNote) TableName() string { return string(SectionClinicalNotes) }

type Payment struct {
	base
	TreatmentID *uuid.UUID `gorm:"column:treatment_id;type:uuid;index"`
	Amount      float64    `gorm:"column:montant;type:numeric(10,2);not null"`
	PaidOn      time.Time  `gorm:"column:date_paiement;type:date;not null"`
	Method      string     `gorm:"column:mode_paiement;type:text;not null"`
	Status      string     `gorm:"column:statut;type:text;not null"`
}

func (Payment) TableName() string { return string(SectionPayments) }

type MedicalImage struct {
	base
	Kind        string    `gorm:"column:type_image;type:text;not null"`
	URL         string    `gorm:"column:url;type:text;not null"`
	TakenOn     time.Time `gorm:"column:date_prise;type:date;not null"`
	Description *string   `gorm:"column:description;type:text"`
}

func (MedicalImage) TableName() string { return string(SectionMedicalImages) }

// Models is the migration set for the section tables.
func Models() []any {
	return []any{
		&ToothRecord{},
		&Treatment{},
		&TreatmentPlan{},
		&ClinicalNote{},
		&Payment{},
		&MedicalImage{},
	}
}
