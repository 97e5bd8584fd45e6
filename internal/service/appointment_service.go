package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type MoveResult struct {
	ID    uuid.UUID `json:"id"`
	Start time.Time `json:"start"`
}

type ResizeResult struct {
	ID       uuid.UUID `json:"id"`
	Start    time.Time `json:"start"`
	Duration string    `json:"duree"`
}

type AppointmentService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewAppointmentService builds the scheduling service. loc is the practice's
// time zone, used for form-style start times and for the visible window; the
// collector may be nil.
func NewAppointmentService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
	loc *time.Location,
) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{
		repo:        repo,
		patientRepo: patientRepo,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
		loc:         loc,
		now:         time.Now,
	}
}

// ListEvents returns every appointment rendered for the calendar. A non-nil
// window keeps only events starting inside it.
func (s *AppointmentService) ListEvents(ctx context.Context, window *appointment.Window) (events []appointment.Event, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.ListEvents")
	defer func() { endSpan(span, err) }()

	all, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list appointments", zap.Error(err))
		return nil, fetchFailed("listing appointments", err)
	}

	names, err := s.patientNames(ctx, all)
	if err != nil {
		s.log.Error("failed to load patients for appointments", zap.Error(err))
		return nil, fetchFailed("loading patients", err)
	}

	events = make([]appointment.Event, 0, len(all))
	for _, a := range all {
		if window != nil && !window.Contains(a.StartsAt) {
			continue
		}
		events = append(events, appointment.NewEvent(a, names[a.PatientID]))
	}

	span.SetAttributes(attribute.Int("events.count", len(events)))
	if s.metrics != nil {
		s.metrics.EventsListed.Add(float64(len(events)))
	}
	return events, nil
}

func (s *AppointmentService) patientNames(ctx context.Context, appts []*appointment.Appointment) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		if a.PatientID == uuid.Nil || seen[a.PatientID] {
			continue
		}
		seen[a.PatientID] = true
		ids = append(ids, a.PatientID)
	}

	patients, err := s.patientRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(patients))
	for id, p := range patients {
		names[id] = p.FullName()
	}
	return names, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Get", attribute.String("appointment.id", id.String()))
	defer func() { endSpan(span, err) }()

	a, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{Action: "read", ResourceType: "appointment", ResourceID: id.String()})
	return a, nil
}

// Create validates cmd before touching storage. New appointments are always planned.
func (s *AppointmentService) Create(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (a *appointment.Appointment, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Create")
	defer func() {
		endSpan(span, err)
		s.observeWrite("create", err)
	}()

	start, duration, err := s.validateCreate(cmd)
	if err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, fmt.Errorf("verifying patient: %w", err)
		}
		return nil, fetchFailed("verifying patient", err)
	}

	a = &appointment.Appointment{
		PatientID: cmd.PatientID,
		StartsAt:  start,
		Duration:  duration,
		Reason:    strings.TrimSpace(cmd.Reason),
		Notes:     patient.Optional(cmd.Notes),
		Status:    appointment.StatusPlanned,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, writeFailed("creating appointment", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})
	s.log.Info("appointment created",
		zap.String("appointment_id", a.ID.String()),
		zap.String("patient_id", a.PatientID.String()),
		zap.Time("start", a.StartsAt),
	)
	return a, nil
}

func (s *AppointmentService) validateCreate(cmd *appointment.CreateAppointmentCommand) (time.Time, string, error) {
	var errs []string
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "select a patient")
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		errs = append(errs, "motif is required")
	}

	start, err := appointment.ParseStart(cmd.StartsAt, s.loc)
	if err != nil {
		errs = append(errs, "date_heure: "+err.Error())
	}

	duration := strings.TrimSpace(cmd.Duration)
	if duration == "" {
		duration = appointment.DefaultDuration
	} else if err := appointment.ValidateDuration(duration); err != nil {
		errs = append(errs, "duree: "+err.Error())
	}

	if len(errs) > 0 {
		return time.Time{}, "", &ValidationError{Fields: errs}
	}
	return start, duration, nil
}

// Move persists a new start for the appointment. Only date_heure and updated_at
// change. It issues a single write, so every storage failure is a write failure
// and an unknown id surfaces from the update itself.
func (s *AppointmentService) Move(ctx context.Context, id uuid.UUID, newStart time.Time) (res *MoveResult, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Move", attribute.String("appointment.id", id.String()))
	defer func() {
		endSpan(span, err)
		s.observeWrite("move", err)
	}()

	if err := s.update(ctx, id, &appointment.Patch{StartsAt: &newStart, UpdatedAt: s.now().UTC()}); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes:      map[string]any{"date_heure": newStart},
	})
	s.log.Info("appointment moved", zap.String("appointment_id", id.String()), zap.Time("start", newStart))
	return &MoveResult{ID: id, Start: newStart}, nil
}

// Resize stores the whole minutes between newStart and newEnd as a duration
// string. The end itself is never persisted.
func (s *AppointmentService) Resize(ctx context.Context, id uuid.UUID, newStart, newEnd time.Time) (res *ResizeResult, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Resize", attribute.String("appointment.id", id.String()))
	defer func() {
		endSpan(span, err)
		s.observeWrite("resize", err)
	}()

	minutes := int(newEnd.Sub(newStart) / time.Minute)
	if minutes < 1 {
		return nil, appointment.ErrInvalidTimeRange
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	duration := appointment.FormatDuration(minutes)
	patch := &appointment.Patch{Duration: &duration, UpdatedAt: s.now().UTC()}
	changes := map[string]any{"duree": duration}
	if !current.StartsAt.Equal(newStart) {
		patch.StartsAt = &newStart
		changes["date_heure"] = newStart
	}
	if err := s.update(ctx, id, patch); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes:      changes,
	})
	s.log.Info("appointment resized", zap.String("appointment_id", id.String()), zap.String("duree", duration))
	return &ResizeResult{ID: id, Start: newStart, Duration: duration}, nil
}

// ChangeStatus accepts any of the four statuses from any other and returns the
// recoloured event.
func (s *AppointmentService) ChangeStatus(ctx context.Context, id uuid.UUID, rawStatus string) (ev *appointment.Event, err error) {
	ctx, span := startSpan(ctx, "AppointmentService.ChangeStatus", attribute.String("appointment.id", id.String()))
	defer func() {
		endSpan(span, err)
		s.observeWrite("status", err)
	}()

	status, err := appointment.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.update(ctx, id, &appointment.Patch{Status: &status, UpdatedAt: now}); err != nil {
		return nil, err
	}
	previous := a.Status
	a.Status = status
	a.UpdatedAt = now

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes:      map[string]any{"statut": status, "previous": previous},
	})
	s.log.Info("appointment status changed",
		zap.String("appointment_id", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)

	event := appointment.NewEvent(a, s.patientName(ctx, a.PatientID))
	return &event, nil
}

// patientName is best effort: the write already happened, so a lookup failure
// only costs the event its patient name.
func (s *AppointmentService) patientName(ctx context.Context, id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	p, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, patient.ErrPatientNotFound) {
			s.log.Warn("could not load patient for event", zap.String("patient_id", id.String()), zap.Error(err))
		}
		return ""
	}
	return p.FullName()
}

func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "AppointmentService.Delete", attribute.String("appointment.id", id.String()))
	defer func() {
		endSpan(span, err)
		s.observeWrite("delete", err)
	}()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return err
		}
		s.log.Error("failed to delete appointment", zap.String("appointment_id", id.String()), zap.Error(err))
		return writeFailed("deleting appointment", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{Action: "delete", ResourceType: "appointment", ResourceID: id.String()})
	s.log.Info("appointment deleted", zap.String("appointment_id", id.String()))
	return nil
}

// VisibleWindow is the calendar range for kind, anchored at today.
func (s *AppointmentService) VisibleWindow(kind appointment.ViewKind, today time.Time) (appointment.Window, error) {
	return appointment.VisibleWindow(kind, today)
}

// CurrentWindow is VisibleWindow anchored at the current day in the practice's time zone.
func (s *AppointmentService) CurrentWindow(kind appointment.ViewKind) (appointment.Window, error) {
	return appointment.VisibleWindow(kind, s.now().In(s.loc))
}

// Location is the practice time zone used to read form-style times.
func (s *AppointmentService) Location() *time.Location {
	return s.loc
}

func (s *AppointmentService) load(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, err
		}
		s.log.Error("failed to load appointment", zap.String("appointment_id", id.String()), zap.Error(err))
		return nil, fetchFailed("loading appointment", err)
	}
	return a, nil
}

func (s *AppointmentService) update(ctx context.Context, id uuid.UUID, p *appointment.Patch) error {
	if err := s.repo.Update(ctx, id, p); err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return err
		}
		s.log.Error("failed to update appointment", zap.String("appointment_id", id.String()), zap.Error(err))
		return writeFailed("updating appointment", err)
	}
	return nil
}

func (s *AppointmentService) observeWrite(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.AppointmentWrites.WithLabelValues(op, metrics.Outcome(err)).Inc()
}
