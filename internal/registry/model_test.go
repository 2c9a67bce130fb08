package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func minMaxLen(minLength, maxLength int) ValidationRules {
	return ValidationRules{MinLength: &minLength, MaxLength: &maxLength}
}

func TestFieldRequirement_Validate(t *testing.T) {
	base := FieldRequirement{
		TenantID:  "11111111-1111-1111-1111-111111111111",
		FieldName: "risk_title",
		Label:     "Risk Title",
		FieldType: FieldTypeText,
	}

	t.Run("Valid Text Field", func(t *testing.T) {
		req := base
		assert.NoError(t, req.Validate())
	})

	t.Run("Empty Field Name", func(t *testing.T) {
		req := base
		req.FieldName = "  "
		assert.Error(t, req.Validate())
	})

	t.Run("Empty Label", func(t *testing.T) {
		req := base
		req.Label = ""
		assert.Error(t, req.Validate())
	})

	t.Run("Unknown Field Type", func(t *testing.T) {
		req := base
		req.FieldType = FieldType("dropdown")
		assert.Error(t, req.Validate())
	})

	t.Run("Select Without Options", func(t *testing.T) {
		req := base
		req.FieldType = FieldTypeSelect
		assert.Error(t, req.Validate())
	})

	t.Run("Select With Options", func(t *testing.T) {
		req := base
		req.FieldType = FieldTypeSelect
		req.Options = []FieldOption{{Value: "high", Label: "High"}}
		assert.NoError(t, req.Validate())
	})

	t.Run("MultiSelect Without Options", func(t *testing.T) {
		req := base
		req.FieldType = FieldTypeMultiSelect
		assert.Error(t, req.Validate())
	})

	t.Run("Invalid Pattern", func(t *testing.T) {
		req := base
		req.ValidationRules = ValidationRules{Pattern: "(["}
		assert.Error(t, req.Validate())
	})

	t.Run("Min Length Exceeds Max", func(t *testing.T) {
		req := base
		req.ValidationRules = minMaxLen(10, 5)
		assert.Error(t, req.Validate())
	})

	t.Run("Consistent Length Bounds", func(t *testing.T) {
		req := base
		req.ValidationRules = minMaxLen(1, 10)
		assert.NoError(t, req.Validate())
	})
}

func TestFieldType_Valid(t *testing.T) {
	for _, ft := range []FieldType{
		FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiSelect,
		FieldTypeCheckbox, FieldTypeNumber, FieldTypeDate, FieldTypeEmail,
		FieldTypeURL, FieldTypeFile,
	} {
		assert.True(t, ft.Valid(), string(ft))
	}
	assert.False(t, FieldType("").Valid())
	assert.False(t, FieldType("radio").Valid())
}

func TestGenericText(t *testing.T) {
	req := GenericText("unregistered_field")
	assert.Equal(t, "unregistered_field", req.FieldName)
	assert.Equal(t, "unregistered_field", req.Label)
	assert.Equal(t, FieldTypeText, req.FieldType)
	assert.False(t, req.IsRequired)
	assert.NoError(t, req.Validate())
}
