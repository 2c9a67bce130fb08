package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service provides business logic for the field requirement registry.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ListRequirements returns the tenant's field requirements.
func (s *Service) ListRequirements(ctx context.Context, tenantID string, activeOnly bool) ([]FieldRequirement, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID cannot be empty")
	}
	return s.store.ListByTenant(ctx, tenantID, activeOnly)
}

// RequirementIndex returns the tenant's requirements keyed by field name for
// engine lookups.
func (s *Service) RequirementIndex(ctx context.Context, tenantID string, activeOnly bool) (map[string]FieldRequirement, error) {
	requirements, err := s.ListRequirements(ctx, tenantID, activeOnly)
	if err != nil {
		return nil, err
	}
	index := make(map[string]FieldRequirement, len(requirements))
	for _, req := range requirements {
		if _, exists := index[req.FieldName]; exists {
			// field_name is unique per tenant; a duplicate here means bad data
			slog.Warn("duplicate field requirement dropped",
				"tenant_id", tenantID,
				"field_name", req.FieldName,
			)
			continue
		}
		index[req.FieldName] = req
	}
	return index, nil
}

// CreateRequirement validates and persists a new requirement.
func (s *Service) CreateRequirement(ctx context.Context, requirement *FieldRequirement) error {
	if requirement == nil {
		return fmt.Errorf("requirement cannot be nil")
	}
	if requirement.TenantID == "" {
		return fmt.Errorf("tenant ID cannot be empty")
	}
	if err := requirement.Validate(); err != nil {
		return fmt.Errorf("invalid field requirement: %w", err)
	}
	return s.store.Create(ctx, requirement)
}

// UpdateRequirement validates and replaces an existing requirement.
func (s *Service) UpdateRequirement(ctx context.Context, requirement *FieldRequirement) error {
	if requirement == nil {
		return fmt.Errorf("requirement cannot be nil")
	}
	if requirement.ID == uuid.Nil {
		return fmt.Errorf("requirement ID cannot be empty")
	}
	if err := requirement.Validate(); err != nil {
		return fmt.Errorf("invalid field requirement: %w", err)
	}
	return s.store.Update(ctx, requirement)
}
