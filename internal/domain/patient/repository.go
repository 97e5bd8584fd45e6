package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if no row matched.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// GetMany returns the patients found among ids, keyed by id. Missing ids are simply absent.
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error)

	// Update overwrites the editable columns of p.
	Update(ctx context.Context, p *Patient) error

	// Delete removes the row outright.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns patients ordered by last name, narrowed by q.Search.
	List(ctx context.Context, q *ListPatientsQuery) ([]*Patient, error)
}
