package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenGRC/console/internal/workflow/model"
)

// StepRepository abstracts database access for workflow steps so the service
// can be tested against a mock.
type StepRepository interface {
	GetStepsByWorkflowIDInTx(ctx context.Context, tx *gorm.DB, tenantID string, workflowID uuid.UUID) ([]model.WorkflowStep, error)
	CreateStepInTx(ctx context.Context, tx *gorm.DB, step *model.WorkflowStep) error
	UpdateStepsInTx(ctx context.Context, tx *gorm.DB, steps []model.WorkflowStep) error
	DeleteStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) error
}

// StepStore is the gorm-backed StepRepository.
type StepStore struct{}

func NewStepStore() *StepStore {
	return &StepStore{}
}

func (s *StepStore) GetStepsByWorkflowIDInTx(ctx context.Context, tx *gorm.DB, tenantID string, workflowID uuid.UUID) ([]model.WorkflowStep, error) {
	var steps []model.WorkflowStep
	err := tx.WithContext(ctx).
		Where("tenant_id = ? AND workflow_id = ?", tenantID, workflowID).
		Order("step_number asc").
		Find(&steps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow steps: %w", err)
	}
	return steps, nil
}

func (s *StepStore) CreateStepInTx(ctx context.Context, tx *gorm.DB, step *model.WorkflowStep) error {
	if err := tx.WithContext(ctx).Create(step).Error; err != nil {
		return fmt.Errorf("failed to create workflow step: %w", err)
	}
	return nil
}

func (s *StepStore) UpdateStepsInTx(ctx context.Context, tx *gorm.DB, steps []model.WorkflowStep) error {
	for i := range steps {
		if err := tx.WithContext(ctx).Save(&steps[i]).Error; err != nil {
			return fmt.Errorf("failed to update workflow step %s: %w", steps[i].ID, err)
		}
	}
	return nil
}

func (s *StepStore) DeleteStepInTx(ctx context.Context, tx *gorm.DB, stepID uuid.UUID) error {
	if err := tx.WithContext(ctx).Delete(&model.WorkflowStep{}, "id = ?", stepID).Error; err != nil {
		return fmt.Errorf("failed to delete workflow step %s: %w", stepID, err)
	}
	return nil
}
