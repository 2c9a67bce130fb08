package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/OpenGRC/console/internal/model"
)

// FieldType is the closed set of field kinds a requirement can declare.
// Validation and rendering behavior dispatch on this enum; there is exactly
// one handler per case.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi_select"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypeFile        FieldType = "file"
)

// Valid reports whether ft is one of the known field types.
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiSelect,
		FieldTypeCheckbox, FieldTypeNumber, FieldTypeDate, FieldTypeEmail,
		FieldTypeURL, FieldTypeFile:
		return true
	}
	return false
}

// RequiresOptions reports whether the field type must carry a non-empty
// options list.
func (ft FieldType) RequiresOptions() bool {
	return ft == FieldTypeSelect || ft == FieldTypeMultiSelect
}

// FieldOption is one selectable choice of a select/multi_select field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ValidationRules are the declarative constraints attached to a requirement.
// Zero-valued pointers mean "no constraint".
type ValidationRules struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	MinValue  *float64 `json:"minValue,omitempty"`
	MaxValue  *float64 `json:"maxValue,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// FieldRequirement is the declarative definition of one form field within a
// tenant. Layouts reference requirements by field name; they never own them.
type FieldRequirement struct {
	model.BaseModel
	TenantID        string          `gorm:"type:uuid;column:tenant_id;not null;uniqueIndex:idx_tenant_field" json:"tenantId"`
	FieldName       string          `gorm:"type:varchar(255);column:field_name;not null;uniqueIndex:idx_tenant_field" json:"fieldName"`
	Label           string          `gorm:"type:varchar(255);column:label;not null" json:"label"`
	FieldType       FieldType       `gorm:"type:varchar(50);column:field_type;not null" json:"fieldType"`
	IsRequired      bool            `gorm:"type:boolean;column:is_required;not null;default:false" json:"isRequired"`
	Options         []FieldOption   `gorm:"type:jsonb;column:options;serializer:json" json:"options,omitempty"`
	ValidationRules ValidationRules `gorm:"type:jsonb;column:validation_rules;serializer:json" json:"validationRules"`
	Active          bool            `gorm:"type:boolean;column:active;not null;default:true" json:"active"`
}

func (fr *FieldRequirement) TableName() string {
	return "field_requirements"
}

// Validate checks the requirement's declarative invariants before it is
// persisted.
func (fr *FieldRequirement) Validate() error {
	if strings.TrimSpace(fr.FieldName) == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if strings.TrimSpace(fr.Label) == "" {
		return fmt.Errorf("field label cannot be empty")
	}
	if !fr.FieldType.Valid() {
		return fmt.Errorf("unknown field type: %q", fr.FieldType)
	}
	if fr.FieldType.RequiresOptions() && len(fr.Options) == 0 {
		return fmt.Errorf("field type %q requires at least one option", fr.FieldType)
	}
	if fr.ValidationRules.Pattern != "" {
		if _, err := regexp.Compile(fr.ValidationRules.Pattern); err != nil {
			return fmt.Errorf("invalid validation pattern: %w", err)
		}
	}
	if fr.ValidationRules.MinLength != nil && fr.ValidationRules.MaxLength != nil &&
		*fr.ValidationRules.MinLength > *fr.ValidationRules.MaxLength {
		return fmt.Errorf("minLength cannot exceed maxLength")
	}
	if fr.ValidationRules.MinValue != nil && fr.ValidationRules.MaxValue != nil &&
		*fr.ValidationRules.MinValue > *fr.ValidationRules.MaxValue {
		return fmt.Errorf("minValue cannot exceed maxValue")
	}
	return nil
}

// GenericText returns the degraded requirement used for a field that a layout
// references but the registry does not define. The field renders as a plain
// text input with no constraints.
func GenericText(fieldName string) FieldRequirement {
	return FieldRequirement{
		FieldName: fieldName,
		Label:     fieldName,
		FieldType: FieldTypeText,
		Active:    true,
	}
}
