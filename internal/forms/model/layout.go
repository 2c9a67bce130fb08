package model

import (
	"log/slog"
	"sort"

	basemodel "github.com/OpenGRC/console/internal/model"
)

// FormData is the current value set of a form session, keyed by field name.
// Values arrive as decoded JSON, so every entry is one of: nil, bool, string,
// float64, []any or map[string]any. The validation engine is the boundary
// that checks each value against its declared field type.
type FormData map[string]any

// Section is one ordered group of field references within a layout.
type Section struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Order  int      `json:"order"`
	Fields []string `json:"fields"`
}

// FieldDependency makes one field's visibility conditional on another field's
// current value.
type FieldDependency struct {
	DependsOn string        `json:"dependsOn"`
	Condition ConditionKind `json:"condition"`
	Value     any           `json:"value,omitempty"`
}

// FormLayout is a designer-authored arrangement of registered fields into
// ordered sections, selected by (request type, workflow stage, agent type,
// agent category). Immutable within a single form session.
type FormLayout struct {
	basemodel.BaseModel
	TenantID          string                     `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenantId"`
	Name              string                     `gorm:"type:varchar(255);column:name;not null" json:"name"`
	RequestType       string                     `gorm:"type:varchar(100);column:request_type;not null;index" json:"requestType"`
	WorkflowStage     string                     `gorm:"type:varchar(100);column:workflow_stage" json:"workflowStage,omitempty"`
	AgentType         string                     `gorm:"type:varchar(100);column:agent_type" json:"agentType,omitempty"`
	AgentCategory     string                     `gorm:"type:varchar(100);column:agent_category" json:"agentCategory,omitempty"`
	Sections          []Section                  `gorm:"type:jsonb;column:sections;not null;serializer:json" json:"sections"`
	FieldDependencies map[string]FieldDependency `gorm:"type:jsonb;column:field_dependencies;serializer:json" json:"fieldDependencies,omitempty"`
	Active            bool                       `gorm:"type:boolean;column:active;not null;default:true" json:"active"`
}

func (fl *FormLayout) TableName() string {
	return "form_layouts"
}

// Dependency returns the declared dependency for a field, if any.
func (fl *FormLayout) Dependency(fieldName string) (FieldDependency, bool) {
	if fl == nil || fl.FieldDependencies == nil {
		return FieldDependency{}, false
	}
	dep, ok := fl.FieldDependencies[fieldName]
	return dep, ok
}

// FieldNames returns every field referenced by every section, in section
// order, without deduplication.
func (fl *FormLayout) FieldNames() []string {
	if fl == nil {
		return nil
	}
	var names []string
	for _, section := range NormalizeSections(fl.Sections) {
		names = append(names, section.Fields...)
	}
	return names
}

// NormalizeSections deduplicates sections by ID (first occurrence wins,
// duplicates are logged and dropped) and sorts them by order. The sort is
// stable: ties keep their original relative order. A missing order is
// treated as 0.
func NormalizeSections(sections []Section) []Section {
	seen := make(map[string]bool, len(sections))
	normalized := make([]Section, 0, len(sections))
	for _, section := range sections {
		if seen[section.ID] {
			slog.Warn("duplicate layout section dropped", "section_id", section.ID)
			continue
		}
		seen[section.ID] = true
		normalized = append(normalized, section)
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Order < normalized[j].Order
	})
	return normalized
}
