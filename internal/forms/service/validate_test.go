package service

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/OpenGRC/console/internal/forms/model"
	"github.com/OpenGRC/console/internal/registry"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func requirement(fieldName string, fieldType registry.FieldType, required bool) registry.FieldRequirement {
	return registry.FieldRequirement{
		FieldName:  fieldName,
		Label:      fieldName,
		FieldType:  fieldType,
		IsRequired: required,
	}
}

func TestValidateField(t *testing.T) {
	t.Run("Required Text Missing", func(t *testing.T) {
		req := requirement("email", registry.FieldTypeEmail, true)
		req.Label = "Email"
		assert.Equal(t, "Email is required", ValidateField(req, nil))
		assert.Equal(t, "Email is required", ValidateField(req, ""))
	})

	t.Run("Required Checkbox Must Be Checked", func(t *testing.T) {
		req := requirement("accept_terms", registry.FieldTypeCheckbox, true)
		assert.NotEmpty(t, ValidateField(req, false))
		assert.NotEmpty(t, ValidateField(req, nil))
		assert.Empty(t, ValidateField(req, true))
	})

	t.Run("Required MultiSelect Needs Elements", func(t *testing.T) {
		req := requirement("categories", registry.FieldTypeMultiSelect, true)
		assert.NotEmpty(t, ValidateField(req, []any{}))
		assert.Empty(t, ValidateField(req, []any{"a"}))
	})

	t.Run("Optional Field Accepts Absence", func(t *testing.T) {
		req := requirement("notes", registry.FieldTypeTextarea, false)
		req.ValidationRules = registry.ValidationRules{MinLength: intPtr(10)}
		assert.Empty(t, ValidateField(req, nil))
		assert.Empty(t, ValidateField(req, ""))
	})

	t.Run("Length Bounds", func(t *testing.T) {
		req := requirement("title", registry.FieldTypeText, false)
		req.Label = "Title"
		req.ValidationRules = registry.ValidationRules{MinLength: intPtr(3), MaxLength: intPtr(5)}
		assert.Equal(t, "Title must be at least 3 characters", ValidateField(req, "ab"))
		assert.Equal(t, "Title must be at most 5 characters", ValidateField(req, "toolong"))
		assert.Empty(t, ValidateField(req, "okay"))
	})

	t.Run("Pattern", func(t *testing.T) {
		req := requirement("code", registry.FieldTypeText, false)
		req.Label = "Code"
		req.ValidationRules = registry.ValidationRules{Pattern: `^[A-Z]{3}-\d+$`}
		assert.Equal(t, "Code has an invalid format", ValidateField(req, "abc"))
		assert.Empty(t, ValidateField(req, "RSK-42"))
	})

	t.Run("Numeric Bounds", func(t *testing.T) {
		req := requirement("severity", registry.FieldTypeNumber, false)
		req.Label = "Severity"
		req.ValidationRules = registry.ValidationRules{MinValue: floatPtr(1), MaxValue: floatPtr(5)}
		assert.Equal(t, "Severity must be at least 1", ValidateField(req, float64(0)))
		assert.Equal(t, "Severity must be at most 5", ValidateField(req, float64(9)))
		assert.Empty(t, ValidateField(req, float64(3)))
	})

	t.Run("Type Rules Skip Mismatched Runtime Type", func(t *testing.T) {
		// Length rules only apply to strings, numeric bounds only to
		// numbers. A number in a length-constrained field passes.
		req := requirement("title", registry.FieldTypeText, false)
		req.ValidationRules = registry.ValidationRules{MinLength: intPtr(10)}
		assert.Empty(t, ValidateField(req, float64(7)))
	})

	t.Run("Required Runs Before Other Rules", func(t *testing.T) {
		req := requirement("title", registry.FieldTypeText, true)
		req.Label = "Title"
		req.ValidationRules = registry.ValidationRules{MinLength: intPtr(3)}
		assert.Equal(t, "Title is required", ValidateField(req, ""))
	})
}

// For required fields, a nil, empty-string, or empty-array value always
// yields a message mentioning the label; a non-empty plain string never
// trips the required rule.
func TestValidateField_RequiredProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	textTypes := []registry.FieldType{
		registry.FieldTypeText, registry.FieldTypeTextarea, registry.FieldTypeSelect,
		registry.FieldTypeDate, registry.FieldTypeEmail, registry.FieldTypeURL,
	}

	properties.Property("absent values fail, present strings pass", prop.ForAll(
		func(typeIndex int, value string) bool {
			req := requirement("field", textTypes[typeIndex], true)
			if ValidateField(req, nil) == "" || ValidateField(req, "") == "" {
				return false
			}
			if value == "" {
				return true
			}
			return ValidateField(req, value) == ""
		},
		gen.IntRange(0, len(textTypes)-1),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestValidateAll(t *testing.T) {
	layout := testLayout(
		map[string]model.FieldDependency{
			"details": {DependsOn: "status", Condition: model.ConditionEquals, Value: "other"},
		},
		model.Section{ID: "main", Order: 1, Fields: []string{"email", "severity", "details"}},
	)

	emailReq := requirement("email", registry.FieldTypeEmail, true)
	emailReq.Label = "Email"
	severityReq := requirement("severity", registry.FieldTypeNumber, false)
	detailsReq := requirement("details", registry.FieldTypeTextarea, true)
	detailsReq.Label = "Details"

	requirements := map[string]registry.FieldRequirement{
		"email":    emailReq,
		"severity": severityReq,
		"details":  detailsReq,
	}

	t.Run("Collects All Failures", func(t *testing.T) {
		errs := ValidateAll(layout, requirements, model.FormData{}, ValidateOptions{})
		assert.Equal(t, "Email is required", errs["email"])
		assert.Equal(t, "Details is required", errs["details"])
		assert.NotContains(t, errs, "severity")
	})

	t.Run("Hidden Required Field Still Blocks By Default", func(t *testing.T) {
		formData := model.FormData{"email": "a@b.example", "status": "closed"}
		errs := ValidateAll(layout, requirements, formData, ValidateOptions{})
		assert.Contains(t, errs, "details")
	})

	t.Run("SkipHidden Excludes Invisible Fields", func(t *testing.T) {
		formData := model.FormData{"email": "a@b.example", "status": "closed"}
		access := model.AccessMap{
			"email":    {CanView: true},
			"severity": {CanView: true},
			"details":  {CanView: true},
		}
		errs := ValidateAll(layout, requirements, formData, ValidateOptions{
			SkipHidden: true,
			Access:     access,
		})
		assert.NotContains(t, errs, "details")
		assert.Empty(t, errs)
	})

	t.Run("Unregistered Field Never Fails", func(t *testing.T) {
		unregistered := testLayout(nil, model.Section{ID: "main", Order: 1, Fields: []string{"freeform"}})
		errs := ValidateAll(unregistered, map[string]registry.FieldRequirement{}, model.FormData{}, ValidateOptions{})
		assert.Empty(t, errs)
	})

	t.Run("StrictTypes Flags Mismatch", func(t *testing.T) {
		formData := model.FormData{"email": float64(42)}
		errs := ValidateAll(layout, requirements, formData, ValidateOptions{StrictTypes: true})
		assert.Equal(t, "Email has an invalid value", errs["email"])
	})

	t.Run("Nil Layout Is Valid", func(t *testing.T) {
		assert.Empty(t, ValidateAll(nil, requirements, model.FormData{}, ValidateOptions{}))
	})
}
