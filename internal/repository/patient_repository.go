package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
)

const patientsTable = "patients"

type PatientRepository struct {
	store rowstore.Client
}

func NewPatientRepository(store rowstore.Client) *PatientRepository {
	return &PatientRepository{store: store}
}

func (r *PatientRepository) table() rowstore.Table {
	return r.store.From(patientsTable)
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	row := patientColumns(p)
	if p.ID != uuid.Nil {
		row["id"] = p.ID
	}

	stored, err := r.table().Insert(ctx, row)
	if err != nil {
		return err
	}
	if p.ID, err = uuidCol(stored, "id"); err != nil {
		return err
	}
	p.CreatedAt = optionalTimeCol(stored, "created_at")
	p.UpdatedAt = optionalTimeCol(stored, "updated_at")
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	rows, err := r.table().Select(ctx, rowstore.Query{
		Filters: []rowstore.Filter{rowstore.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, patient.ErrPatientNotFound
	}
	return patientFromRow(rows[0])
}

func (r *PatientRepository) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*patient.Patient, error) {
	out := make(map[uuid.UUID]*patient.Patient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.table().Select(ctx, rowstore.Query{
		Columns: []string{"id", "nom", "prenom", "date_naissance"},
		Filters: []rowstore.Filter{rowstore.In("id", ids)},
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		p, err := patientFromRow(row)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	row := patientColumns(p)
	row["updated_at"] = p.UpdatedAt

	err := r.table().Update(ctx, p.ID, row)
	if errors.Is(err, rowstore.ErrNoRows) {
		return patient.ErrPatientNotFound
	}
	return err
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.table().Delete(ctx, id)
	if errors.Is(err, rowstore.ErrNoRows) {
		return patient.ErrPatientNotFound
	}
	return err
}

// List orders by last name. The search runs over "<nom> <prenom>" and the
// social security number together, which a single column filter cannot
// express, so it is applied to the fetched rows.
func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) ([]*patient.Patient, error) {
	rows, err := r.table().Select(ctx, rowstore.Query{
		OrderBy: []rowstore.Order{{Column: "nom"}, {Column: "prenom"}},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*patient.Patient, 0, len(rows))
	for _, row := range rows {
		p, err := patientFromRow(row)
		if err != nil {
			return nil, err
		}
		if q == nil || p.Matches(q.Search) {
			out = append(out, p)
		}
	}
	return out, nil
}

func patientColumns(p *patient.Patient) rowstore.Row {
	return rowstore.Row{
		"nom":                 p.LastName,
		"prenom":              p.FirstName,
		"date_naissance":      p.BirthDate,
		"telephone":           nullable(p.Phone),
		"email":               nullable(p.Email),
		"adresse":             nullable(p.Address),
		"numero_secu":         nullable(p.SocialSecurityNumber),
		"antecedents":         nullable(p.MedicalHistory),
		"allergies":           nullable(p.Allergies),
		"traitements_actuels": nullable(p.CurrentTreatments),
		"assurance":           nullable(p.Insurance),
		"mutuelle":            nullable(p.SupplementaryInsurance),
		"notes":               nullable(p.Notes),
	}
}

func patientFromRow(row rowstore.Row) (*patient.Patient, error) {
	id, err := uuidCol(row, "id")
	if err != nil {
		return nil, fmt.Errorf("decoding patient: %w", err)
	}

	p := &patient.Patient{
		ID:                     id,
		CreatedAt:              optionalTimeCol(row, "created_at"),
		UpdatedAt:              optionalTimeCol(row, "updated_at"),
		LastName:               stringCol(row, "nom"),
		FirstName:              stringCol(row, "prenom"),
		Phone:                  optionalCol(row, "telephone"),
		Email:                  optionalCol(row, "email"),
		Address:                optionalCol(row, "adresse"),
		SocialSecurityNumber:   optionalCol(row, "numero_secu"),
		MedicalHistory:         optionalCol(row, "antecedents"),
		Allergies:              optionalCol(row, "allergies"),
		CurrentTreatments:      optionalCol(row, "traitements_actuels"),
		Insurance:              optionalCol(row, "assurance"),
		SupplementaryInsurance: optionalCol(row, "mutuelle"),
		Notes:                  optionalCol(row, "notes"),
	}
	// date columns come back as time.Time from postgres and as text elsewhere.
	if d, err := rowstore.AsTime(row["date_naissance"]); err == nil {
		p.BirthDate = d.Format(patient.BirthDateLayout)
	}
	return p, nil
}
