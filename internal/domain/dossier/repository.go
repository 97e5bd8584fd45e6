package dossier

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Section returns the raw rows of one section for a patient.
	Section(ctx context.Context, s Section, patientID uuid.UUID) ([]map[string]any, error)
}
