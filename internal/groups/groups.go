package groups

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/OpenGRC/console/internal/model"
)

// ApproverGroup is a named set of roles that a workflow step can assign
// approvals to instead of a single role.
type ApproverGroup struct {
	model.BaseModel
	TenantID    string            `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenantId"`
	Name        string            `gorm:"type:varchar(255);column:name;not null" json:"name"`
	Description string            `gorm:"type:text;column:description" json:"description,omitempty"`
	MemberRoles model.StringArray `gorm:"type:jsonb;column:member_roles;serializer:json" json:"memberRoles,omitempty"`
}

func (ag *ApproverGroup) TableName() string {
	return "approver_groups"
}

// Service provides read access to the approver group catalog.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListGroups returns all approver groups for a tenant.
func (s *Service) ListGroups(ctx context.Context, tenantID string) ([]ApproverGroup, error) {
	var result []ApproverGroup
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name asc").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approver groups: %w", err)
	}
	return result, nil
}

// NameIndex returns group names keyed by group ID string, the shape the step
// sequencer's assignee resolution consumes.
func (s *Service) NameIndex(ctx context.Context, tenantID string) (map[string]string, error) {
	catalog, err := s.ListGroups(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(catalog))
	for _, group := range catalog {
		index[group.ID.String()] = group.Name
	}
	return index, nil
}
