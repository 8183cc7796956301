package services

import (
	"context"
	"log"

	"oxyspa/b2b/internal/db"
	"oxyspa/b2b/internal/models"
	"oxyspa/b2b/internal/schema"
)

// ILeadService defines the interface for lead capture.
type ILeadService interface {
	// CreateLead validates payload and stores it, returning the new lead's id.
	// Invalid payloads return *schema.ValidationError and are never stored;
	// store failures return *db.InsertionError.
	CreateLead(ctx context.Context, payload map[string]interface{}) (string, error)
}

// ILeadNotifier is told about every stored lead.
type ILeadNotifier interface {
	NotifyLeadCreated(ctx context.Context, leadID string, lead models.Lead) error
}

// leadService implements ILeadService.
type leadService struct {
	store    db.IDocumentStore
	notifier ILeadNotifier // nil when notifications are disabled
}

// NewLeadService creates a new LeadService. notifier may be nil.
func NewLeadService(store db.IDocumentStore, notifier ILeadNotifier) ILeadService {
	return &leadService{store: store, notifier: notifier}
}

// CreateLead validates, then performs a single insert.
func (s *leadService) CreateLead(ctx context.Context, payload map[string]interface{}) (string, error) {
	lead, err := schema.ValidateLead(payload)
	if err != nil {
		return "", err
	}

	id, err := s.store.InsertDocument(ctx, models.EntityLead, lead)
	if err != nil {
		return "", err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyLeadCreated(ctx, id, lead); err != nil {
			log.Printf("WARNING: lead %s stored but notification not queued: %v", id, err)
		}
	}
	return id, nil
}
