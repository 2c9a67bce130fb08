package requests

import (
	"github.com/google/uuid"

	formmodel "github.com/OpenGRC/console/internal/forms/model"
	basemodel "github.com/OpenGRC/console/internal/model"
)

// FormSubmission is one captured form payload for a request, recorded after
// it passed validation.
type FormSubmission struct {
	basemodel.BaseModel
	TenantID      string             `gorm:"type:uuid;column:tenant_id;not null;index:idx_submission_tenant" json:"tenantId"`
	RequestType   string             `gorm:"type:varchar(100);column:request_type;not null" json:"requestType"`
	WorkflowStage string             `gorm:"type:varchar(100);column:workflow_stage" json:"workflowStage,omitempty"`
	LayoutID      *uuid.UUID         `gorm:"type:uuid;column:layout_id" json:"layoutId,omitempty"`
	SubmittedBy   string             `gorm:"type:varchar(100);column:submitted_by;not null" json:"submittedBy"`
	Role          string             `gorm:"type:varchar(100);column:role;not null" json:"role"`
	FormData      formmodel.FormData `gorm:"type:jsonb;column:form_data;serializer:json" json:"formData"`
}

func (fs *FormSubmission) TableName() string {
	return "form_submissions"
}

// SubmitRequest is the inbound submission payload.
type SubmitRequest struct {
	RequestType   string             `json:"requestType" binding:"required"`
	WorkflowStage string             `json:"workflowStage"`
	AgentType     string             `json:"agentType"`
	AgentCategory string             `json:"agentCategory"`
	FormData      formmodel.FormData `json:"formData"`
}

// RenderedForm is what the console draws: the sections that survived
// visibility filtering plus the per-field permissions for the caller.
type RenderedForm struct {
	Layout   *formmodel.FormLayout  `json:"layout"`
	Sections []formmodel.Section    `json:"sections"`
	Access   formmodel.AccessMap    `json:"access"`
	Errors   map[string]string      `json:"errors,omitempty"`
	FormData formmodel.FormData     `json:"formData,omitempty"`
}
