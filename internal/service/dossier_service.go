package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/dossier"
	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/patient"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DossierService struct {
	repo        dossier.Repository
	patientRepo patient.Repository
	auditSvc    *AuditService
	log         *zap.Logger
}

func NewDossierService(repo dossier.Repository, patientRepo patient.Repository, auditSvc *AuditService, log *zap.Logger) *DossierService {
	return &DossierService{repo: repo, patientRepo: patientRepo, auditSvc: auditSvc, log: log}
}

// GetDossier loads the patient and then every section concurrently. One failing
// section fails the whole dossier.
func (s *DossierService) GetDossier(ctx context.Context, patientID uuid.UUID) (d *dossier.Dossier, err error) {
	ctx, span := startSpan(ctx, "DossierService.GetDossier", attribute.String("patient.id", patientID.String()))
	defer func() { endSpan(span, err) }()

	p, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fetchFailed("loading patient", err)
	}

	var mu sync.Mutex
	sections := make(map[dossier.Section][]map[string]any, len(dossier.Sections))

	g, gctx := errgroup.WithContext(ctx)
	for _, section := range dossier.Sections {
		section := section
		g.Go(func() error {
			rows, err := s.repo.Section(gctx, section, patientID)
			if err != nil {
				return fmt.Errorf("section %s: %w", section, err)
			}
			mu.Lock()
			sections[section] = rows
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("failed to load dossier", zap.String("patient_id", patientID.String()), zap.Error(err))
		return nil, fetchFailed("loading dossier", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{Action: "read", ResourceType: "dossier", ResourceID: patientID.String()})
	return &dossier.Dossier{Patient: p, Sections: sections}, nil
}
