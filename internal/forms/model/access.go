package model

import (
	basemodel "github.com/OpenGRC/console/internal/model"
)

// FieldAccessRule is one persisted permission row: what a role may see and
// edit for a field within a given request type, agent type and workflow
// stage. Empty selector columns match any value.
type FieldAccessRule struct {
	basemodel.BaseModel
	TenantID      string `gorm:"type:uuid;column:tenant_id;not null;index:idx_access_lookup" json:"tenantId"`
	RequestType   string `gorm:"type:varchar(100);column:request_type;not null;index:idx_access_lookup" json:"requestType"`
	Role          string `gorm:"type:varchar(100);column:role;not null;index:idx_access_lookup" json:"role"`
	AgentType     string `gorm:"type:varchar(100);column:agent_type" json:"agentType,omitempty"`
	WorkflowStage string `gorm:"type:varchar(100);column:workflow_stage" json:"workflowStage,omitempty"`
	FieldName     string `gorm:"type:varchar(255);column:field_name;not null" json:"fieldName"`
	CanView       bool   `gorm:"type:boolean;column:can_view;not null;default:false" json:"canView"`
	CanEdit       bool   `gorm:"type:boolean;column:can_edit;not null;default:false" json:"canEdit"`
}

func (far *FieldAccessRule) TableName() string {
	return "field_access_rules"
}

// FieldAccess is the resolved per-field permission pair. Derived, never
// persisted per form instance.
type FieldAccess struct {
	CanView bool `json:"canView"`
	CanEdit bool `json:"canEdit"`
}

// AccessMap is the resolver output: field name to resolved permissions.
// A missing entry means the field is not visible.
type AccessMap map[string]FieldAccess

// AccessQuery identifies one resolver lookup. Role and tenant are explicit
// parameters; nothing is read from ambient state.
type AccessQuery struct {
	TenantID      string `form:"-" json:"-"`
	RequestType   string `form:"requestType" json:"requestType" binding:"required"`
	Role          string `form:"role" json:"role" binding:"required"`
	AgentType     string `form:"agentType" json:"agentType,omitempty"`
	WorkflowStage string `form:"workflowStage" json:"workflowStage,omitempty"`
}

// Key returns a composite cache key for the query, suitable for memoizing
// resolved access maps (last write wins on refresh).
func (q AccessQuery) Key() string {
	return q.TenantID + "|" + q.RequestType + "|" + q.Role + "|" + q.AgentType + "|" + q.WorkflowStage
}

// VisibilityContext carries the workflow situation a form is rendered in.
// The visibility engine combines it with the access map and the layout's
// field dependencies.
type VisibilityContext struct {
	RequestType      string
	WorkflowStage    string
	AssignmentStatus string
	AssignmentID     string
}
