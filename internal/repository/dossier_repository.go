package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain/dossier"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
)

type DossierRepository struct {
	store rowstore.Client
}

func NewDossierRepository(store rowstore.Client) *DossierRepository {
	return &DossierRepository{store: store}
}

// Section returns rows as stored, oldest first, with driver-specific values
// (uuid bytes, text bytes) normalised for JSON.
func (r *DossierRepository) Section(ctx context.Context, s dossier.Section, patientID uuid.UUID) ([]map[string]any, error) {
	rows, err := r.store.From(string(s)).Select(ctx, rowstore.Query{
		Filters: []rowstore.Filter{rowstore.Eq("patient_id", patientID)},
		OrderBy: []rowstore.Order{{Column: "created_at"}},
	})
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = rowstore.Normalize(v)
		}
		out[i] = m
	}
	return out, nil
}
