package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store handles database operations for field requirements.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListByTenant returns all requirements for a tenant, optionally filtered to
// active ones, ordered by field name for stable listings.
func (s *Store) ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]FieldRequirement, error) {
	var requirements []FieldRequirement
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("field_name asc").Find(&requirements).Error; err != nil {
		return nil, fmt.Errorf("failed to list field requirements: %w", err)
	}
	return requirements, nil
}

// GetByID returns a single requirement scoped to the tenant.
func (s *Store) GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*FieldRequirement, error) {
	var requirement FieldRequirement
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&requirement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get field requirement: %w", err)
	}
	return &requirement, nil
}

// Create persists a new requirement.
func (s *Store) Create(ctx context.Context, requirement *FieldRequirement) error {
	if err := s.db.WithContext(ctx).Create(requirement).Error; err != nil {
		return fmt.Errorf("failed to create field requirement: %w", err)
	}
	return nil
}

// Update replaces an existing requirement.
func (s *Store) Update(ctx context.Context, requirement *FieldRequirement) error {
	result := s.db.WithContext(ctx).
		Model(&FieldRequirement{}).
		Where("tenant_id = ? AND id = ?", requirement.TenantID, requirement.ID).
		Select("field_name", "label", "field_type", "is_required", "options", "validation_rules", "active").
		Updates(requirement)
	if result.Error != nil {
		return fmt.Errorf("failed to update field requirement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
