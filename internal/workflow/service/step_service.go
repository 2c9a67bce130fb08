package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenGRC/console/internal/audit"
	"github.com/OpenGRC/console/internal/workflow/model"
)

// StepService persists sequencer operations. Every mutation loads the full
// step list, applies the pure sequencer operation, verifies the sequence
// invariants, and writes the result back inside one transaction — the
// database only ever holds dense, invariant-satisfying sequences.
type StepService struct {
	db    *gorm.DB
	repo  StepRepository
	trail *audit.Trail
}

func NewStepService(db *gorm.DB, repo StepRepository, trail *audit.Trail) *StepService {
	return &StepService{db: db, repo: repo, trail: trail}
}

// ListSteps returns the workflow's steps in sequence order.
func (s *StepService) ListSteps(ctx context.Context, tenantID string, workflowID uuid.UUID) ([]model.WorkflowStep, error) {
	return s.repo.GetStepsByWorkflowIDInTx(ctx, s.db, tenantID, workflowID)
}

// AddStep appends a new step to the workflow and persists it.
func (s *StepService) AddStep(ctx context.Context, tenantID, actor string, workflowID uuid.UUID) (*model.WorkflowStep, error) {
	var added model.WorkflowStep
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := s.repo.GetStepsByWorkflowIDInTx(ctx, tx, tenantID, workflowID)
		if err != nil {
			return err
		}

		updated, newStep := AddStep(steps)
		if err := CheckInvariants(updated); err != nil {
			return fmt.Errorf("add step violated sequence invariants: %w", err)
		}

		newStep.TenantID = tenantID
		newStep.WorkflowID = workflowID
		if err := s.repo.CreateStepInTx(ctx, tx, &newStep); err != nil {
			return err
		}
		added = newStep
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, tenantID, actor, "workflow_step.add", "workflow_step", added.ID.String(), added)
	return &added, nil
}

// DeleteStep removes a step and renumbers the remainder to a dense 1..N
// sequence. Refuses to remove the last remaining step.
func (s *StepService) DeleteStep(ctx context.Context, tenantID, actor string, workflowID uuid.UUID, stepNumber int) ([]model.WorkflowStep, error) {
	var remaining []model.WorkflowStep
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := s.repo.GetStepsByWorkflowIDInTx(ctx, tx, tenantID, workflowID)
		if err != nil {
			return err
		}

		var removedID uuid.UUID
		found := false
		for _, step := range steps {
			if step.StepNumber == stepNumber {
				removedID = step.ID
				found = true
				break
			}
		}
		if !found {
			return ErrStepNotFound
		}

		updated, err := DeleteStep(steps, stepNumber)
		if err != nil {
			return err
		}
		if err := CheckInvariants(updated); err != nil {
			return fmt.Errorf("delete step violated sequence invariants: %w", err)
		}

		if err := s.repo.DeleteStepInTx(ctx, tx, removedID); err != nil {
			return err
		}
		if err := s.repo.UpdateStepsInTx(ctx, tx, updated); err != nil {
			return err
		}
		remaining = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, tenantID, actor, "workflow_step.delete", "workflow", workflowID.String(),
		map[string]any{"stepNumber": stepNumber})
	return remaining, nil
}

// UpdateStep patches the single step with the given number. Step numbers are
// never changed by an update.
func (s *StepService) UpdateStep(ctx context.Context, tenantID, actor string, workflowID uuid.UUID, stepNumber int, patch model.UpdateStepDTO) (*model.WorkflowStep, error) {
	var result model.WorkflowStep
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := s.repo.GetStepsByWorkflowIDInTx(ctx, tx, tenantID, workflowID)
		if err != nil {
			return err
		}

		updated, err := UpdateStep(steps, stepNumber, patch)
		if err != nil {
			return err
		}
		if err := CheckInvariants(updated); err != nil {
			return fmt.Errorf("update step violated sequence invariants: %w", err)
		}

		for _, step := range updated {
			if step.StepNumber == stepNumber {
				result = step
				break
			}
		}
		return s.repo.UpdateStepsInTx(ctx, tx, []model.WorkflowStep{result})
	})
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, tenantID, actor, "workflow_step.update", "workflow_step", result.ID.String(), patch)
	return &result, nil
}

// ReorderSteps reassigns step numbers 1..N following the given permutation
// of existing step numbers and persists the whole sequence.
func (s *StepService) ReorderSteps(ctx context.Context, tenantID, actor string, workflowID uuid.UUID, order []int) ([]model.WorkflowStep, error) {
	var reordered []model.WorkflowStep
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := s.repo.GetStepsByWorkflowIDInTx(ctx, tx, tenantID, workflowID)
		if err != nil {
			return err
		}

		updated, err := Reorder(steps, order)
		if err != nil {
			return err
		}
		if err := CheckInvariants(updated); err != nil {
			return fmt.Errorf("reorder violated sequence invariants: %w", err)
		}

		if err := s.repo.UpdateStepsInTx(ctx, tx, updated); err != nil {
			return err
		}
		reordered = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trail.Record(ctx, tenantID, actor, "workflow_step.reorder", "workflow", workflowID.String(),
		map[string]any{"stepNumbers": order})
	return reordered, nil
}
