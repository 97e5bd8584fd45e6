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

type PatientService struct {
	repo     patient.Repository
	apptRepo appointment.Repository
	auditSvc *AuditService
	metrics  *metrics.Collector
	log      *zap.Logger
	policy   patient.DeletePolicy
	now      func() time.Time
}

func NewPatientService(
	repo patient.Repository,
	apptRepo appointment.Repository,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
	policy patient.DeletePolicy,
) *PatientService {
	if policy == "" {
		policy = patient.DeleteRestrict
	}
	return &PatientService{
		repo:     repo,
		apptRepo: apptRepo,
		auditSvc: auditSvc,
		metrics:  m,
		log:      log,
		policy:   policy,
		now:      time.Now,
	}
}

func (s *PatientService) CreatePatient(ctx context.Context, cmd *patient.CreatePatientCommand) (p *patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.CreatePatient")
	defer func() { endSpan(span, err) }()

	birthDate, err := s.validateCreateCommand(cmd)
	if err != nil {
		return nil, err
	}

	p = &patient.Patient{
		LastName:               strings.TrimSpace(cmd.LastName),
		FirstName:              strings.TrimSpace(cmd.FirstName),
		BirthDate:              birthDate,
		Phone:                  patient.Optional(cmd.Phone),
		Email:                  patient.OptionalEmail(cmd.Email),
		Address:                patient.Optional(cmd.Address),
		SocialSecurityNumber:   patient.Optional(cmd.SocialSecurityNumber),
		MedicalHistory:         patient.Optional(cmd.MedicalHistory),
		Allergies:              patient.Optional(cmd.Allergies),
		CurrentTreatments:      patient.Optional(cmd.CurrentTreatments),
		Insurance:              patient.Optional(cmd.Insurance),
		SupplementaryInsurance: patient.Optional(cmd.SupplementaryInsurance),
		Notes:                  patient.Optional(cmd.Notes),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, writeFailed("creating patient", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsCreatedTotal.Inc()
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "create",
		ResourceType: "patient",
		ResourceID:   p.ID.String(),
	})
	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("created_by", CallerFrom(ctx).Actor),
	)
	return p, nil
}

func (s *PatientService) GetPatient(ctx context.Context, id uuid.UUID) (p *patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.GetPatient", attribute.String("patient.id", id.String()))
	defer func() { endSpan(span, err) }()

	p, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{Action: "read", ResourceType: "patient", ResourceID: id.String()})
	return p, nil
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) (out []*patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.ListPatients")
	defer func() { endSpan(span, err) }()

	out, err = s.repo.List(ctx, q)
	if err != nil {
		s.log.Error("failed to list patients", zap.Error(err))
		return nil, fetchFailed("listing patients", err)
	}
	return out, nil
}

func (s *PatientService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (p *patient.Patient, err error) {
	ctx, span := startSpan(ctx, "PatientService.UpdatePatient", attribute.String("patient.id", id.String()))
	defer func() { endSpan(span, err) }()

	p, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyUpdate(p, cmd); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		s.log.Error("failed to update patient", zap.String("patient_id", id.String()), zap.Error(err))
		return nil, writeFailed("updating patient", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{Action: "update", ResourceType: "patient", ResourceID: id.String()})
	return p, nil
}

// DeletePatient removes the patient row. The configured delete policy decides
// what happens to appointments that reference it.
func (s *PatientService) DeletePatient(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "PatientService.DeletePatient",
		attribute.String("patient.id", id.String()),
		attribute.String("patient.delete_policy", string(s.policy)),
	)
	defer func() { endSpan(span, err) }()

	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	removed := 0
	switch s.policy {
	case patient.DeleteRestrict, patient.DeleteCascade:
		appts, err := s.apptRepo.ListByPatient(ctx, id)
		if err != nil {
			return fetchFailed("listing patient appointments", err)
		}
		if s.policy == patient.DeleteRestrict && len(appts) > 0 {
			return fmt.Errorf("%w: %d appointment(s) reference this patient", patient.ErrPatientHasAppointments, len(appts))
		}
		for _, a := range appts {
			if err := s.apptRepo.Delete(ctx, a.ID); err != nil && !errors.Is(err, appointment.ErrAppointmentNotFound) {
				s.log.Error("failed to delete appointment during cascade",
					zap.String("patient_id", id.String()),
					zap.String("appointment_id", a.ID.String()),
					zap.Error(err),
				)
				return writeFailed("deleting patient appointments", err)
			}
			removed++
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return err
		}
		s.log.Error("failed to delete patient", zap.String("patient_id", id.String()), zap.Error(err))
		return writeFailed("deleting patient", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsDeletedTotal.WithLabelValues(string(s.policy)).Inc()
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Action:       "delete",
		ResourceType: "patient",
		ResourceID:   id.String(),
		Changes:      map[string]any{"policy": s.policy, "appointments_deleted": removed},
	})
	s.log.Info("patient deleted",
		zap.String("patient_id", id.String()),
		zap.String("policy", string(s.policy)),
		zap.Int("appointments_deleted", removed),
	)
	return nil
}

func (s *PatientService) load(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		s.log.Error("failed to load patient", zap.String("patient_id", id.String()), zap.Error(err))
		return nil, fetchFailed("loading patient", err)
	}
	return p, nil
}

func (s *PatientService) validateCreateCommand(cmd *patient.CreatePatientCommand) (string, error) {
	var errs []string

	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "nom is required")
	}
	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "prenom is required")
	}

	var birthDate string
	if strings.TrimSpace(cmd.BirthDate) == "" {
		errs = append(errs, "date_naissance is required")
	} else if d, err := patient.NormalizeBirthDate(cmd.BirthDate, s.now()); err != nil {
		errs = append(errs, "date_naissance: "+err.Error())
	} else {
		birthDate = d
	}

	if len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}
	return birthDate, nil
}

func (s *PatientService) applyUpdate(p *patient.Patient, cmd *patient.UpdatePatientCommand) error {
	var errs []string

	if cmd.LastName != nil {
		if v := strings.TrimSpace(*cmd.LastName); v != "" {
			p.LastName = v
		} else {
			errs = append(errs, "nom cannot be empty")
		}
	}
	if cmd.FirstName != nil {
		if v := strings.TrimSpace(*cmd.FirstName); v != "" {
			p.FirstName = v
		} else {
			errs = append(errs, "prenom cannot be empty")
		}
	}
	if cmd.BirthDate != nil {
		if d, err := patient.NormalizeBirthDate(*cmd.BirthDate, s.now()); err != nil {
			errs = append(errs, "date_naissance: "+err.Error())
		} else {
			p.BirthDate = d
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	setOptional(&p.Phone, cmd.Phone)
	setOptional(&p.Address, cmd.Address)
	setOptional(&p.SocialSecurityNumber, cmd.SocialSecurityNumber)
	setOptional(&p.MedicalHistory, cmd.MedicalHistory)
	setOptional(&p.Allergies, cmd.Allergies)
	setOptional(&p.CurrentTreatments, cmd.CurrentTreatments)
	setOptional(&p.Insurance, cmd.Insurance)
	setOptional(&p.SupplementaryInsurance, cmd.SupplementaryInsurance)
	setOptional(&p.Notes, cmd.Notes)
	if cmd.Email != nil {
		p.Email = patient.OptionalEmail(*cmd.Email)
	}
	return nil
}

func setOptional(dst **string, v *string) {
	if v != nil {
		*dst = patient.Optional(*v)
	}
}
