package repository

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/dossier"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"
)

func TestAppointmentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository(memstore.New(), zap.NewNop())
	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	notes := "apporter la radio"

	a := &appointment.Appointment{
		PatientID: uuid.New(),
		StartsAt:  start,
		Duration:  "45 minutes",
		Reason:    "Contrôle",
		Notes:     &notes,
		Status:    appointment.StatusPlanned,
	}
	require.NoError(t, repo.Create(ctx, a))
	require.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.PatientID, got.PatientID)
	assert.Equal(t, start, got.StartsAt)
	assert.Equal(t, "45 minutes", got.Duration)
	assert.Equal(t, &notes, got.Notes)
	assert.Equal(t, appointment.StatusPlanned, got.Status)

	status := appointment.StatusConfirmed
	require.NoError(t, repo.Update(ctx, a.ID, &appointment.Patch{Status: &status, UpdatedAt: start}))
	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, got.Status)
	assert.Equal(t, start, got.StartsAt, "untouched columns survive a partial update")

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.ErrorIs(t, repo.Update(ctx, a.ID, &appointment.Patch{UpdatedAt: start}), appointment.ErrAppointmentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), appointment.ErrAppointmentNotFound)
}

func TestAppointmentRepositoryDecodesDriverShapes(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	id, patientID := uuid.New(), uuid.New()

	_, err := store.From("appointments").Insert(ctx, rowstore.Row{
		"id":         id.String(),
		"patient_id": []byte(patientID.String()),
		"date_heure": "2026-03-02 09:30:00+01",
		"duree":      []byte("1 hour"),
		"motif":      "Urgence",
		"notes":      nil,
		"statut":     "terminé",
	})
	require.NoError(t, err)

	got, err := NewAppointmentRepository(store, zap.NewNop()).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, patientID, got.PatientID)
	assert.True(t, got.StartsAt.Equal(time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, "1 hour", got.Duration)
	assert.Nil(t, got.Notes)
	assert.Equal(t, appointment.StatusCompleted, got.Status)
}

func TestAppointmentRepositoryCoercesStoredStatus(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	core, logs := observer.New(zapcore.WarnLevel)
	repo := NewAppointmentRepository(store, zap.New(core))

	insert := func(statut string) uuid.UUID {
		id := uuid.New()
		_, err := store.From("appointments").Insert(ctx, rowstore.Row{
			"id": id, "patient_id": uuid.New(), "date_heure": time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			"duree": "30 minutes", "motif": "Contrôle", "statut": statut,
		})
		require.NoError(t, err)
		return id
	}

	english := insert("confirmed")
	got, err := repo.GetByID(ctx, english)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusConfirmed, got.Status)
	assert.Equal(t, "#059669", got.Status.Color())
	assert.Zero(t, logs.Len())

	unknown := insert("reporté")
	got, err = repo.GetByID(ctx, unknown)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusPlanned, got.Status)

	entries := logs.FilterField(zap.String("statut", "reporté")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, unknown.String(), entries[0].ContextMap()["appointment_id"])
}

func TestAppointmentRepositoryListOrdersByStart(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository(memstore.New(), zap.NewNop())
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	patientID := uuid.New()

	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		pid := uuid.New()
		if offset == time.Hour {
			pid = patientID
		}
		require.NoError(t, repo.Create(ctx, &appointment.Appointment{
			PatientID: pid, StartsAt: base.Add(offset), Duration: "30 minutes", Reason: "x", Status: appointment.StatusPlanned,
		}))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(time.Hour), all[0].StartsAt)
	assert.Equal(t, base.Add(3*time.Hour), all[2].StartsAt)

	mine, err := repo.ListByPatient(ctx, patientID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, base.Add(time.Hour), mine[0].StartsAt)
}

func TestPatientRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(memstore.New())
	secu := "1790375987654"

	martin := &patient.Patient{LastName: "Martin", FirstName: "Claire", BirthDate: "1985-01-17"}
	dupont := &patient.Patient{LastName: "Dupont", FirstName: "Jean", BirthDate: "1979-03-02", SocialSecurityNumber: &secu}
	require.NoError(t, repo.Create(ctx, martin))
	require.NoError(t, repo.Create(ctx, dupont))

	list, err := repo.List(ctx, &patient.ListPatientsQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dupont", list[0].LastName)
	assert.Equal(t, "Martin", list[1].LastName)

	list, err = repo.List(ctx, &patient.ListPatientsQuery{Search: "98765"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dupont.ID, list[0].ID)

	many, err := repo.GetMany(ctx, []uuid.UUID{martin.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, "Martin Claire", many[martin.ID].FullName())

	phone := "0612345678"
	martin.Phone = &phone
	martin.UpdatedAt = time.Now()
	require.NoError(t, repo.Update(ctx, martin))
	got, err := repo.GetByID(ctx, martin.ID)
	require.NoError(t, err)
	assert.Equal(t, &phone, got.Phone)
	assert.Equal(t, "1985-01-17", got.BirthDate)

	require.NoError(t, repo.Delete(ctx, martin.ID))
	_, err = repo.GetByID(ctx, martin.ID)
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
	assert.ErrorIs(t, repo.Update(ctx, martin), patient.ErrPatientNotFound)
}

func TestPatientRepositoryReadsDateColumns(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	id := uuid.New()
	_, err := store.From("patients").Insert(ctx, rowstore.Row{
		"id":             id,
		"nom":            "Bernard",
		"prenom":         "Luc",
		"date_naissance": time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	p, err := NewPatientRepository(store).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2017-06-01", p.BirthDate)
	assert.Nil(t, p.Email)
}

func TestGetManyWithNoIDsSkipsStore(t *testing.T) {
	store := memstore.New()
	out, err := NewPatientRepository(store).GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, store.Calls("patients", memstore.MethodSelect))
}

func TestAuditRepository(t *testing.T) {
	store := memstore.New()
	entry := &domain.AuditLog{
		OccurredAt:   time.Now(),
		Actor:        "cabinet",
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   uuid.NewString(),
		Changes:      datatypes.JSON(`{"statut":"confirmé"}`),
	}
	require.NoError(t, NewAuditRepository(store).Create(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, 1, store.Len("audit_logs"))
}

func TestDossierSection(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	patientID := uuid.New()
	for _, tooth := range []int{11, 21} {
		_, err := store.From("dental_schema").Insert(ctx, rowstore.Row{"patient_id": patientID, "tooth_number": tooth})
		require.NoError(t, err)
	}
	_, err := store.From("dental_schema").Insert(ctx, rowstore.Row{"patient_id": uuid.New(), "tooth_number": 36})
	require.NoError(t, err)

	rows, err := NewDossierRepository(store).Section(ctx, dossier.SectionDentalSchema, patientID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, patientID.String(), rows[0]["patient_id"])
}
