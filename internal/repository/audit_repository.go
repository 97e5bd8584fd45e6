package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/cabinet/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/cabinet/pkg/rowstore"
	"github.com/google/uuid"
)

const auditTable = "audit_logs"

type AuditRepository struct {
	store rowstore.Client
}

func NewAuditRepository(store rowstore.Client) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	row := rowstore.Row{
		"id":            entry.ID,
		"occurred_at":   entry.OccurredAt,
		"actor":         entry.Actor,
		"ip_address":    entry.IPAddress,
		"request_id":    entry.RequestID,
		"action":        string(entry.Action),
		"resource_type": entry.ResourceType,
		"resource_id":   entry.ResourceID,
	}
	if len(entry.Changes) > 0 {
		row["changes"] = entry.Changes
	}

	_, err := r.store.From(auditTable).Insert(ctx, row)
	return err
}
