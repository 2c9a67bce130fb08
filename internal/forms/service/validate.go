package service

import (
	"fmt"
	"regexp"

	"github.com/OpenGRC/console/internal/forms/model"
	"github.com/OpenGRC/console/internal/registry"
)

// ValidateOptions controls full-form validation behavior.
type ValidateOptions struct {
	// SkipHidden makes ValidateAll validate only fields the visibility
	// engine would currently render. The historical behavior validates
	// every layout field regardless of visibility, which lets a hidden
	// required field block submission; callers opt out explicitly rather
	// than having that changed under them.
	SkipHidden bool

	// StrictTypes rejects values whose runtime type does not match the
	// declared field type instead of silently skipping non-applicable
	// rules.
	StrictTypes bool

	// Access and Context are consulted only when SkipHidden is set.
	Access  model.AccessMap
	Context model.VisibilityContext
}

// ValidateField applies the requirement's rules to a value. Rules run in
// order — required, string length, pattern, numeric bounds — and the first
// failure wins. Rules that do not apply to the value's runtime type are
// skipped. Returns the user-facing error message, or empty when valid.
func ValidateField(req registry.FieldRequirement, value any) string {
	if req.IsRequired {
		if msg := validateRequired(req, value); msg != "" {
			return msg
		}
	}

	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok && s != "" {
		rules := req.ValidationRules
		if rules.MinLength != nil && len(s) < *rules.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", req.Label, *rules.MinLength)
		}
		if rules.MaxLength != nil && len(s) > *rules.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", req.Label, *rules.MaxLength)
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err == nil && !re.MatchString(s) {
				return fmt.Sprintf("%s has an invalid format", req.Label)
			}
		}
	}

	if n, ok := numericValue(value); ok {
		rules := req.ValidationRules
		if rules.MinValue != nil && n < *rules.MinValue {
			return fmt.Sprintf("%s must be at least %v", req.Label, *rules.MinValue)
		}
		if rules.MaxValue != nil && n > *rules.MaxValue {
			return fmt.Sprintf("%s must be at most %v", req.Label, *rules.MaxValue)
		}
	}

	return ""
}

// validateRequired enforces presence per field type: checkboxes must be
// checked, multi-selects must carry at least one choice, everything else must
// be non-nil and non-empty.
func validateRequired(req registry.FieldRequirement, value any) string {
	message := fmt.Sprintf("%s is required", req.Label)

	switch req.FieldType {
	case registry.FieldTypeCheckbox:
		if checked, ok := value.(bool); !ok || !checked {
			return message
		}
	case registry.FieldTypeMultiSelect:
		if !hasElements(value) {
			return message
		}
	case registry.FieldTypeText, registry.FieldTypeTextarea, registry.FieldTypeSelect,
		registry.FieldTypeNumber, registry.FieldTypeDate, registry.FieldTypeEmail,
		registry.FieldTypeURL, registry.FieldTypeFile:
		if isAbsent(value) {
			return message
		}
	default:
		// Unknown field types come from degraded (unregistered) fields
		// and follow the generic presence rule.
		if isAbsent(value) {
			return message
		}
	}
	return ""
}

// typeMatches checks a decoded JSON value against the declared field type.
func typeMatches(fieldType registry.FieldType, value any) bool {
	switch fieldType {
	case registry.FieldTypeCheckbox:
		_, ok := value.(bool)
		return ok
	case registry.FieldTypeMultiSelect:
		switch value.(type) {
		case []any, []string:
			return true
		}
		return false
	case registry.FieldTypeNumber:
		_, ok := numericValue(value)
		return ok
	case registry.FieldTypeText, registry.FieldTypeTextarea, registry.FieldTypeSelect,
		registry.FieldTypeDate, registry.FieldTypeEmail, registry.FieldTypeURL:
		_, ok := value.(string)
		return ok
	case registry.FieldTypeFile:
		switch value.(type) {
		case string, map[string]any, []any:
			return true
		}
		return false
	default:
		return true
	}
}

// ValidateAll validates every field referenced by every section of the
// layout and returns a field name to message map; submission is blocked while
// the map is non-empty. Fields without a registry entry degrade to a generic
// text requirement and so never fail. With SkipHidden set, fields the
// visibility engine would not render are excluded.
func ValidateAll(layout *model.FormLayout, requirements map[string]registry.FieldRequirement, formData model.FormData, opts ValidateOptions) map[string]string {
	errors := make(map[string]string)
	if layout == nil {
		return errors
	}

	seen := make(map[string]bool)
	for _, section := range model.NormalizeSections(layout.Sections) {
		for _, fieldName := range section.Fields {
			if seen[fieldName] {
				continue
			}
			seen[fieldName] = true

			if opts.SkipHidden && !IsFieldVisible(fieldName, layout, formData, opts.Access, opts.Context) {
				continue
			}

			req, registered := requirements[fieldName]
			if !registered {
				req = registry.GenericText(fieldName)
			}

			var value any
			if formData != nil {
				value = formData[fieldName]
			}

			if opts.StrictTypes && registered && value != nil && !typeMatches(req.FieldType, value) {
				errors[fieldName] = fmt.Sprintf("%s has an invalid value", req.Label)
				continue
			}

			if msg := ValidateField(req, value); msg != "" {
				errors[fieldName] = msg
			}
		}
	}
	return errors
}

// isAbsent reports whether a generic value counts as missing: nil, empty
// string, or an empty array.
func isAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// hasElements reports whether the value is a non-empty array.
func hasElements(value any) bool {
	switch v := value.(type) {
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	default:
		return false
	}
}

// numericValue extracts a comparable number from a decoded JSON value.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
