package model

import (
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ConditionKind is the closed set of comparison operators a field dependency
// can declare.
type ConditionKind string

const (
	ConditionEquals      ConditionKind = "equals"
	ConditionNotEquals   ConditionKind = "not_equals"
	ConditionContains    ConditionKind = "contains"
	ConditionNotContains ConditionKind = "not_contains"
	ConditionGreaterThan ConditionKind = "greater_than"
	ConditionLessThan    ConditionKind = "less_than"
	ConditionIsEmpty     ConditionKind = "is_empty"
	ConditionIsNotEmpty  ConditionKind = "is_not_empty"
)

// Evaluate applies the dependency's condition against the current form data.
// It is total: a missing dependency value is treated as nil and every
// condition kind handles nil per its own semantics. An unrecognized condition
// kind evaluates to true (fail-open), so a misconfigured dependency can never
// hide a field.
func (dep FieldDependency) Evaluate(formData FormData) bool {
	var actual any
	if formData != nil {
		actual = formData[dep.DependsOn]
	}

	switch dep.Condition {
	case ConditionEquals:
		return valuesEqual(actual, dep.Value)
	case ConditionNotEquals:
		return !valuesEqual(actual, dep.Value)
	case ConditionContains:
		return valueContains(actual, dep.Value)
	case ConditionNotContains:
		return !valueContains(actual, dep.Value)
	case ConditionGreaterThan:
		// NaN comparisons are always false, so a non-numeric dependency
		// value fails closed.
		return toNumber(actual) > toNumber(dep.Value)
	case ConditionLessThan:
		return toNumber(actual) < toNumber(dep.Value)
	case ConditionIsEmpty:
		return isEmptyValue(actual)
	case ConditionIsNotEmpty:
		return !isEmptyValue(actual)
	default:
		slog.Warn("unrecognized dependency condition, defaulting to visible",
			"condition", string(dep.Condition),
			"depends_on", dep.DependsOn,
		)
		return true
	}
}

// valuesEqual compares two JSON-decoded values. Numbers compare numerically
// regardless of their Go representation; everything else uses deep equality.
func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	na, aIsNum := asNumber(a)
	nb, bIsNum := asNumber(b)
	if aIsNum && bIsNum {
		return na == nb
	}
	return reflect.DeepEqual(a, b)
}

// valueContains implements the contains semantics: membership when the
// dependency value is an array, substring on string-coerced values otherwise.
func valueContains(actual, want any) bool {
	if items, ok := actual.([]any); ok {
		for _, item := range items {
			if valuesEqual(item, want) {
				return true
			}
		}
		return false
	}
	if items, ok := actual.([]string); ok {
		for _, item := range items {
			if valuesEqual(item, want) {
				return true
			}
		}
		return false
	}
	return strings.Contains(toString(actual), toString(want))
}

// isEmptyValue reports whether a value counts as empty: nil, empty string, or
// an empty array.
func isEmptyValue(value any) bool {
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

// asNumber reports whether the value is a number and returns it as float64.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// toNumber coerces a value to float64 for ordering comparisons. Anything that
// is not a number, a numeric string, or a bool yields NaN.
func toNumber(value any) float64 {
	if n, ok := asNumber(value); ok {
		return n
	}
	switch v := value.(type) {
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n
		}
		return math.NaN()
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

// toString coerces a value to its string form for substring comparisons.
func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
