package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const appointmentsTable = "appointments"

type AppointmentRepository struct {
	store rowstore.Client
	log   *zap.Logger
}

func NewAppointmentRepository(store rowstore.Client, log *zap.Logger) *AppointmentRepository {
	return &AppointmentRepository{store: store, log: log}
}

func (r *AppointmentRepository) table() rowstore.Table {
	return r.store.From(appointmentsTable)
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	row := rowstore.Row{
		"patient_id": a.PatientID,
		"date_heure": a.StartsAt,
		"duree":      a.Duration,
		"motif":      a.Reason,
		"notes":      nullable(a.Notes),
		"statut":     string(a.Status),
	}
	if a.ID != uuid.Nil {
		row["id"] = a.ID
	}

	stored, err := r.table().Insert(ctx, row)
	if err != nil {
		return err
	}
	if a.ID, err = uuidCol(stored, "id"); err != nil {
		return err
	}
	a.CreatedAt = optionalTimeCol(stored, "created_at")
	a.UpdatedAt = optionalTimeCol(stored, "updated_at")
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	rows, err := r.table().Select(ctx, rowstore.Query{
		Filters: []rowstore.Filter{rowstore.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, appointment.ErrAppointmentNotFound
	}
	return r.fromRow(rows[0])
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	return r.list(ctx, nil)
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(ctx, []rowstore.Filter{rowstore.Eq("patient_id", patientID)})
}

func (r *AppointmentRepository) list(ctx context.Context, filters []rowstore.Filter) ([]*appointment.Appointment, error) {
	rows, err := r.table().Select(ctx, rowstore.Query{
		Filters: filters,
		OrderBy: []rowstore.Order{{Column: "date_heure"}},
	})
	if err != nil {
		return nil, err
	}

	out := make([]*appointment.Appointment, 0, len(rows))
	for _, row := range rows {
		a, err := r.fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, p *appointment.Patch) error {
	patch := rowstore.Row{"updated_at": p.UpdatedAt}
	if p.StartsAt != nil {
		patch["date_heure"] = *p.StartsAt
	}
	if p.Duration != nil {
		patch["duree"] = *p.Duration
	}
	if p.Status != nil {
		patch["statut"] = string(*p.Status)
	}

	err := r.table().Update(ctx, id, patch)
	if errors.Is(err, rowstore.ErrNoRows) {
		return appointment.ErrAppointmentNotFound
	}
	return err
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.table().Delete(ctx, id)
	if errors.Is(err, rowstore.ErrNoRows) {
		return appointment.ErrAppointmentNotFound
	}
	return err
}

// fromRow decodes a stored appointment. A statut outside the known values is
// read as planned and logged.
func (r *AppointmentRepository) fromRow(row rowstore.Row) (*appointment.Appointment, error) {
	id, err := uuidCol(row, "id")
	if err != nil {
		return nil, fmt.Errorf("decoding appointment: %w", err)
	}
	start, err := timeCol(row, "date_heure")
	if err != nil {
		return nil, fmt.Errorf("decoding appointment %s: %w", id, err)
	}

	a := &appointment.Appointment{
		ID:        id,
		StartsAt:  start,
		Duration:  stringCol(row, "duree"),
		Reason:    stringCol(row, "motif"),
		Notes:     optionalCol(row, "notes"),
		Status:    appointment.StatusPlanned,
		CreatedAt: optionalTimeCol(row, "created_at"),
		UpdatedAt: optionalTimeCol(row, "updated_at"),
	}
	raw := stringCol(row, "statut")
	if status, err := appointment.ParseStatus(raw); err == nil {
		a.Status = status
	} else {
		r.log.Warn("unknown appointment status, reading as planned",
			zap.String("appointment_id", id.String()), zap.String("statut", raw))
	}
	// A null patient reference decodes as uuid.Nil and renders without a name.
	a.PatientID, _ = rowstore.AsUUID(row["patient_id"])
	return a, nil
}
