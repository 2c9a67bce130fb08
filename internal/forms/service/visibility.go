package service

import (
	"github.com/OpenGRC/console/internal/forms/model"
)

// The four workflow-decision fields that bypass role-based access resolution
// and follow stage/assignment driven rules instead.
const (
	FieldAssessmentResponseGrid = "assessment_response_grid"
	FieldApprovalNotes          = "approval_notes"
	FieldRejectionReason        = "rejection_reason"
	FieldReviewNotes            = "review_notes"
)

// Workflow situations that grant decision fields visibility.
const (
	StagePendingApproval          = "pending_approval"
	AssignmentStatusCompleted     = "completed"
	RequestTypeAssessmentWorkflow = "assessment_workflow"
)

// IsSpecialField reports whether the field bypasses the field access resolver.
func IsSpecialField(fieldName string) bool {
	switch fieldName {
	case FieldAssessmentResponseGrid, FieldApprovalNotes, FieldRejectionReason, FieldReviewNotes:
		return true
	}
	return false
}

// IsFieldVisible decides whether a field renders. Decision order, first match
// wins:
//
//  1. Special fields follow their own policy, ignoring the access map.
//  2. Ordinary fields require an access entry with can_view; a missing entry
//     or can_view=false hides the field (fail-closed).
//  3. A layout-declared dependency delegates to the condition evaluator.
//  4. Otherwise the field is visible.
func IsFieldVisible(fieldName string, layout *model.FormLayout, formData model.FormData, access model.AccessMap, vctx model.VisibilityContext) bool {
	if IsSpecialField(fieldName) {
		return isAssessmentDecisionFieldVisible(fieldName, layout, formData, vctx)
	}

	entry, ok := access[fieldName]
	if !ok || !entry.CanView {
		return false
	}

	if dep, ok := layout.Dependency(fieldName); ok {
		return dep.Evaluate(formData)
	}

	return true
}

// isAssessmentDecisionFieldVisible is the explicit fail-open policy for the
// special workflow-decision fields. Approvers must never lose access to
// decision fields because of a misconfigured access rule, so these fields
// default to visible whenever the context indicates an assessment workflow:
//
//   - the response grid is always visible unless the layout restricts it with
//     a dependency;
//   - approval_notes, rejection_reason and review_notes are visible when a
//     configured dependency is satisfied, the stage is pending_approval, the
//     assignment is completed or pending approval, or the request itself is
//     an assessment workflow (or carries an assignment identifier).
//
// Only when none of those hold is the field hidden.
func isAssessmentDecisionFieldVisible(fieldName string, layout *model.FormLayout, formData model.FormData, vctx model.VisibilityContext) bool {
	dep, hasDep := layout.Dependency(fieldName)

	if fieldName == FieldAssessmentResponseGrid {
		if hasDep {
			return dep.Evaluate(formData)
		}
		return true
	}

	if hasDep && dep.Evaluate(formData) {
		return true
	}
	if vctx.WorkflowStage == StagePendingApproval {
		return true
	}
	if vctx.AssignmentStatus == AssignmentStatusCompleted || vctx.AssignmentStatus == StagePendingApproval {
		return true
	}
	if vctx.RequestType == RequestTypeAssessmentWorkflow || vctx.AssignmentID != "" {
		return true
	}
	return false
}

// VisibleSections normalizes the layout's sections (dedup by ID, stable sort
// by order) and keeps only those with at least one visible field.
func VisibleSections(layout *model.FormLayout, formData model.FormData, access model.AccessMap, vctx model.VisibilityContext) []model.Section {
	if layout == nil {
		return nil
	}
	sections := model.NormalizeSections(layout.Sections)
	visible := make([]model.Section, 0, len(sections))
	for _, section := range sections {
		for _, fieldName := range section.Fields {
			if IsFieldVisible(fieldName, layout, formData, access, vctx) {
				visible = append(visible, section)
				break
			}
		}
	}
	return visible
}

// VisibleFields returns the set of visible field names across the layout's
// sections, in section order.
func VisibleFields(layout *model.FormLayout, formData model.FormData, access model.AccessMap, vctx model.VisibilityContext) []string {
	if layout == nil {
		return nil
	}
	var fields []string
	seen := make(map[string]bool)
	for _, section := range model.NormalizeSections(layout.Sections) {
		for _, fieldName := range section.Fields {
			if seen[fieldName] {
				continue
			}
			seen[fieldName] = true
			if IsFieldVisible(fieldName, layout, formData, access, vctx) {
				fields = append(fields, fieldName)
			}
		}
	}
	return fields
}
