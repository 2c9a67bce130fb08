package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/OpenGRC/console/internal/forms/model"
	"gorm.io/gorm"
)

// LayoutStore handles database operations for form layouts.
type LayoutStore struct {
	db *gorm.DB
}

func NewLayoutStore(db *gorm.DB) *LayoutStore {
	return &LayoutStore{db: db}
}

// LayoutQuery selects the layout for a form session.
type LayoutQuery struct {
	TenantID      string
	RequestType   string
	WorkflowStage string
	AgentType     string
	AgentCategory string
}

// FindLayout returns the most specific active layout for the query, or nil
// when no layout matches. Specificity: rows with an explicit workflow stage
// and agent selectors win over wildcard (empty) rows.
func (s *LayoutStore) FindLayout(ctx context.Context, query LayoutQuery) (*model.FormLayout, error) {
	var layout model.FormLayout
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND request_type = ? AND active = ?", query.TenantID, query.RequestType, true).
		Where("workflow_stage = '' OR workflow_stage = ?", query.WorkflowStage).
		Where("agent_type = '' OR agent_type = ?", query.AgentType).
		Where("agent_category = '' OR agent_category = ?", query.AgentCategory).
		Order("workflow_stage desc, agent_type desc, agent_category desc").
		First(&layout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find form layout: %w", err)
	}

	// Normalize once at load so every consumer sees deduplicated, ordered
	// sections.
	layout.Sections = model.NormalizeSections(layout.Sections)
	return &layout, nil
}

// GetLayoutByID returns a layout scoped to the tenant.
func (s *LayoutStore) GetLayoutByID(ctx context.Context, tenantID string, layoutID string) (*model.FormLayout, error) {
	var layout model.FormLayout
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, layoutID).
		First(&layout).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get form layout: %w", err)
	}
	layout.Sections = model.NormalizeSections(layout.Sections)
	return &layout, nil
}

// SaveLayout persists a designer-authored layout.
func (s *LayoutStore) SaveLayout(ctx context.Context, layout *model.FormLayout) error {
	layout.Sections = model.NormalizeSections(layout.Sections)
	if err := s.db.WithContext(ctx).Save(layout).Error; err != nil {
		return fmt.Errorf("failed to save form layout: %w", err)
	}
	return nil
}
