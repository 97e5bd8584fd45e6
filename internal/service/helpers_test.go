package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memstore.Store
	audit    *AuditService
	metrics  *metrics.Collector
	appts    *AppointmentService
	patients *PatientService
	dossiers *DossierService
}

func newFixture(t *testing.T, policy patient.DeletePolicy) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := memstore.New(memstore.WithClock(func() time.Time { return fixedNow }))
	m := metrics.NewCollector("cabinet_test")

	apptRepo := repository.NewAppointmentRepository(store, log)
	patientRepo := repository.NewPatientRepository(store)
	audit := NewAuditService(repository.NewAuditRepository(store), log, m)
	t.Cleanup(audit.Shutdown)

	f := &fixture{
		store:    store,
		audit:    audit,
		metrics:  m,
		appts:    NewAppointmentService(apptRepo, patientRepo, audit, m, log, time.UTC),
		patients: NewPatientService(patientRepo, apptRepo, audit, m, log, policy),
		dossiers: NewDossierService(repository.NewDossierRepository(store), patientRepo, audit, log),
	}
	f.appts.now = func() time.Time { return fixedNow }
	f.patients.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) addPatient(t *testing.T, nom, prenom string) uuid.UUID {
	t.Helper()
	p, err := f.patients.CreatePatient(context.Background(), &patient.CreatePatientCommand{
		LastName: nom, FirstName: prenom, BirthDate: "1985-01-17",
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) addAppointment(t *testing.T, patientID uuid.UUID, start, duration string) uuid.UUID {
	t.Helper()
	a, err := f.appts.Create(context.Background(), &appointment.CreateAppointmentCommand{
		PatientID: patientID, StartsAt: start, Duration: duration, Reason: "Contrôle",
	})
	require.NoError(t, err)
	return a.ID
}

// row reads the raw stored row, bypassing the services.
func (f *fixture) row(t *testing.T, table string, id uuid.UUID) rowstore.Row {
	t.Helper()
	rows, err := f.store.From(table).Select(context.Background(), rowstore.Query{
		Filters: []rowstore.Filter{rowstore.Eq("id", id)},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

type noopAuditRepo struct{}

func (noopAuditRepo) Create(context.Context, *domain.AuditLog) error { return nil }
