package service

import (
	"fmt"
	"sort"

	"github.com/OpenGRC/console/internal/workflow/model"
)

// Sequencer errors. Callers map these to 4xx responses.
var (
	ErrStepNotFound     = fmt.Errorf("workflow step not found")
	ErrLastStep         = fmt.Errorf("cannot delete the last remaining workflow step")
	ErrInvalidSequence  = fmt.Errorf("step numbers are not a dense 1..N sequence")
	ErrMultipleFirst    = fmt.Errorf("more than one step is flagged as first")
	ErrBadPermutation   = fmt.Errorf("reorder list is not a permutation of the existing step numbers")
	ErrEmptySequence    = fmt.Errorf("workflow must have at least one step")
	ErrInvalidStepPatch = fmt.Errorf("invalid step patch")
)

// AddStep appends a new step with number max(existing)+1. New steps default
// to review type, not required, not first. Returns the extended list and the
// appended step.
func AddStep(steps []model.WorkflowStep) ([]model.WorkflowStep, model.WorkflowStep) {
	next := 0
	for _, step := range steps {
		if step.StepNumber > next {
			next = step.StepNumber
		}
	}
	added := model.WorkflowStep{
		StepNumber: next + 1,
		StepType:   model.StepTypeReview,
		StepName:   fmt.Sprintf("Step %d", next+1),
	}
	if len(steps) > 0 {
		added.TenantID = steps[0].TenantID
		added.WorkflowID = steps[0].WorkflowID
	}
	return append(append([]model.WorkflowStep{}, steps...), added), added
}

// DeleteStep removes the step with the given number and renumbers the
// remainder into a dense 1..N sequence preserving relative order. Refuses to
// remove the last remaining step.
func DeleteStep(steps []model.WorkflowStep, stepNumber int) ([]model.WorkflowStep, error) {
	if len(steps) <= 1 {
		return nil, ErrLastStep
	}
	remaining := make([]model.WorkflowStep, 0, len(steps)-1)
	found := false
	for _, step := range steps {
		if step.StepNumber == stepNumber {
			found = true
			continue
		}
		remaining = append(remaining, step)
	}
	if !found {
		return nil, ErrStepNotFound
	}
	return Renumber(remaining), nil
}

// UpdateStep applies the patch to the single step with the given number.
// Step numbers are never changed by an update.
func UpdateStep(steps []model.WorkflowStep, stepNumber int, patch model.UpdateStepDTO) ([]model.WorkflowStep, error) {
	if patch.StepType != nil && !patch.StepType.Valid() {
		return nil, fmt.Errorf("%w: unknown step type %q", ErrInvalidStepPatch, *patch.StepType)
	}

	updated := append([]model.WorkflowStep{}, steps...)
	for i := range updated {
		if updated[i].StepNumber != stepNumber {
			continue
		}
		applyPatch(&updated[i], patch)
		return updated, nil
	}
	return nil, ErrStepNotFound
}

func applyPatch(step *model.WorkflowStep, patch model.UpdateStepDTO) {
	if patch.StepType != nil {
		step.StepType = *patch.StepType
	}
	if patch.StepName != nil {
		step.StepName = *patch.StepName
	}
	if patch.AssignedRole != nil {
		step.AssignedRole = *patch.AssignedRole
	}
	if patch.ApproverGroupID != nil {
		step.ApproverGroupID = patch.ApproverGroupID
	}
	if patch.Required != nil {
		step.Required = *patch.Required
	}
	if patch.CanSkip != nil {
		step.CanSkip = *patch.CanSkip
	}
	if patch.IsFirstStep != nil {
		step.IsFirstStep = *patch.IsFirstStep
	}
	if patch.StageSettings != nil {
		step.StageSettings = patch.StageSettings
	}
}

// Reorder reassigns step numbers 1..N following the order given by a
// permutation of the existing step numbers. The UI only ever submits
// adjacent swaps, but any valid permutation is accepted.
func Reorder(steps []model.WorkflowStep, order []int) ([]model.WorkflowStep, error) {
	if len(order) != len(steps) {
		return nil, ErrBadPermutation
	}
	byNumber := make(map[int]model.WorkflowStep, len(steps))
	for _, step := range steps {
		byNumber[step.StepNumber] = step
	}

	reordered := make([]model.WorkflowStep, 0, len(order))
	used := make(map[int]bool, len(order))
	for i, number := range order {
		step, exists := byNumber[number]
		if !exists || used[number] {
			return nil, ErrBadPermutation
		}
		used[number] = true
		step.StepNumber = i + 1
		reordered = append(reordered, step)
	}
	return reordered, nil
}

// Renumber sorts steps by their current number and reassigns a dense 1..N
// sequence, preserving relative order.
func Renumber(steps []model.WorkflowStep) []model.WorkflowStep {
	renumbered := append([]model.WorkflowStep{}, steps...)
	sort.SliceStable(renumbered, func(i, j int) bool {
		return renumbered[i].StepNumber < renumbered[j].StepNumber
	})
	for i := range renumbered {
		renumbered[i].StepNumber = i + 1
	}
	return renumbered
}

// FirstStep resolves the pipeline's entry point: an explicit is_first_step
// flag wins if present on any step; otherwise step number 1 is implicitly
// first. Returns nil for an empty list.
func FirstStep(steps []model.WorkflowStep) *model.WorkflowStep {
	var byNumber *model.WorkflowStep
	for i := range steps {
		if steps[i].IsFirstStep {
			return &steps[i]
		}
		if steps[i].StepNumber == 1 {
			byNumber = &steps[i]
		}
	}
	return byNumber
}

// CheckInvariants verifies the sequence invariants that must hold after
// every sequencer operation: at least one step, step numbers forming a dense
// integer sequence starting at 1, and at most one explicit first-step flag.
func CheckInvariants(steps []model.WorkflowStep) error {
	if len(steps) == 0 {
		return ErrEmptySequence
	}

	seen := make(map[int]bool, len(steps))
	firstFlags := 0
	for _, step := range steps {
		if step.StepNumber < 1 || step.StepNumber > len(steps) || seen[step.StepNumber] {
			return fmt.Errorf("%w: got step number %d in a list of %d", ErrInvalidSequence, step.StepNumber, len(steps))
		}
		seen[step.StepNumber] = true
		if step.IsFirstStep {
			firstFlags++
		}
	}
	if firstFlags > 1 {
		return ErrMultipleFirst
	}
	return nil
}

// ResolveAssignee returns the display name for a step's assignee: the
// approver group's name when group-based (falling back to "Group" when the
// catalog cannot resolve it), otherwise the assigned role.
func ResolveAssignee(step model.WorkflowStep, groupNames map[string]string) string {
	if step.ApproverGroupID != nil {
		if name, ok := groupNames[step.ApproverGroupID.String()]; ok && name != "" {
			return name
		}
		return "Group"
	}
	return step.AssignedRole
}
