package model

import (
	"github.com/google/uuid"

	basemodel "github.com/OpenGRC/console/internal/model"
)

// StepType is the closed set of workflow step kinds.
type StepType string

const (
	StepTypeReview       StepType = "review"
	StepTypeApproval     StepType = "approval"
	StepTypeNotification StepType = "notification"
)

// Valid reports whether st is a known step type.
func (st StepType) Valid() bool {
	switch st {
	case StepTypeReview, StepTypeApproval, StepTypeNotification:
		return true
	}
	return false
}

// EmailNotifications configures per-step notification delivery.
type EmailNotifications struct {
	Enabled      bool     `json:"enabled"`
	Recipients   []string `json:"recipients,omitempty"`
	ReminderDays []int    `json:"reminders,omitempty"` // day offsets after assignment
}

// StageSettings is the optional per-step override bundle: which fields the
// stage shows, which layout it binds, and how it notifies.
type StageSettings struct {
	VisibleFields      []string            `json:"visibleFields,omitempty"`
	LayoutID           *uuid.UUID          `json:"layoutId,omitempty"`
	EmailNotifications *EmailNotifications `json:"emailNotifications,omitempty"`
}

// WorkflowStep is one stage in an approval pipeline. Step numbers are
// 1-based and dense; they define the pipeline's total order.
type WorkflowStep struct {
	basemodel.BaseModel
	TenantID        string         `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenantId"`
	WorkflowID      uuid.UUID      `gorm:"type:uuid;column:workflow_id;not null;index" json:"workflowId"`
	StepNumber      int            `gorm:"type:integer;column:step_number;not null" json:"stepNumber"`
	StepType        StepType       `gorm:"type:varchar(50);column:step_type;not null" json:"stepType"`
	StepName        string         `gorm:"type:varchar(255);column:step_name;not null" json:"stepName"`
	AssignedRole    string         `gorm:"type:varchar(100);column:assigned_role" json:"assignedRole,omitempty"`
	ApproverGroupID *uuid.UUID     `gorm:"type:uuid;column:approver_group_id" json:"approverGroupId,omitempty"`
	Required        bool           `gorm:"type:boolean;column:required;not null;default:false" json:"required"`
	CanSkip         bool           `gorm:"type:boolean;column:can_skip;not null;default:false" json:"canSkip"`
	IsFirstStep     bool           `gorm:"type:boolean;column:is_first_step;not null;default:false" json:"isFirstStep"`
	StageSettings   *StageSettings `gorm:"type:jsonb;column:stage_settings;serializer:json" json:"stageSettings,omitempty"`
}

func (ws *WorkflowStep) TableName() string {
	return "workflow_steps"
}

// UpdateStepDTO carries a single-step replacement. Every settable attribute
// is a pointer; nil leaves the stored value untouched.
type UpdateStepDTO struct {
	StepType        *StepType      `json:"stepType,omitempty"`
	StepName        *string        `json:"stepName,omitempty"`
	AssignedRole    *string        `json:"assignedRole,omitempty"`
	ApproverGroupID *uuid.UUID     `json:"approverGroupId,omitempty"`
	Required        *bool          `json:"required,omitempty"`
	CanSkip         *bool          `json:"canSkip,omitempty"`
	IsFirstStep     *bool          `json:"isFirstStep,omitempty"`
	StageSettings   *StageSettings `json:"stageSettings,omitempty"`
}

// ReorderStepsDTO expresses the desired new sequence as a permutation of the
// existing step numbers.
type ReorderStepsDTO struct {
	StepNumbers []int `json:"stepNumbers" binding:"required"`
}
