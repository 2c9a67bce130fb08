package requests

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenGRC/console/internal/audit"
	formmodel "github.com/OpenGRC/console/internal/forms/model"
	formservice "github.com/OpenGRC/console/internal/forms/service"
	"github.com/OpenGRC/console/internal/registry"
)

// ValidationError carries the per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form validation failed for %d field(s)", len(e.Fields))
}

// Service accepts form submissions: it resolves the layout, requirements and
// field access for the caller, validates the payload, and persists it.
type Service struct {
	db           *gorm.DB
	layouts      *formservice.LayoutStore
	requirements *registry.Service
	resolver     *formservice.AccessResolver
	trail        *audit.Trail
}

func NewService(db *gorm.DB, layouts *formservice.LayoutStore, requirements *registry.Service, resolver *formservice.AccessResolver, trail *audit.Trail) *Service {
	return &Service{
		db:           db,
		layouts:      layouts,
		requirements: requirements,
		resolver:     resolver,
		trail:        trail,
	}
}

// Submit validates and stores one form payload. Validation failures are
// returned as *ValidationError with the full field-to-message map, so the
// console can annotate every offending field at once.
func (s *Service) Submit(ctx context.Context, tenantID, userID, role string, req SubmitRequest) (*FormSubmission, error) {
	layout, err := s.layouts.FindLayout(ctx, formservice.LayoutQuery{
		TenantID:      tenantID,
		RequestType:   req.RequestType,
		WorkflowStage: req.WorkflowStage,
		AgentType:     req.AgentType,
		AgentCategory: req.AgentCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout: %w", err)
	}
	if layout == nil {
		return nil, fmt.Errorf("no form layout configured for request type %q", req.RequestType)
	}

	index, err := s.requirements.RequirementIndex(ctx, tenantID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load field requirements: %w", err)
	}

	access, err := s.resolver.Resolve(ctx, formmodel.AccessQuery{
		TenantID:      tenantID,
		RequestType:   req.RequestType,
		Role:          role,
		AgentType:     req.AgentType,
		WorkflowStage: req.WorkflowStage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve field access: %w", err)
	}

	fieldErrors := formservice.ValidateAll(layout, index, req.FormData, formservice.ValidateOptions{
		Access: access,
		Context: formmodel.VisibilityContext{
			RequestType:   req.RequestType,
			WorkflowStage: req.WorkflowStage,
		},
	})
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	submission := &FormSubmission{
		TenantID:      tenantID,
		RequestType:   req.RequestType,
		WorkflowStage: req.WorkflowStage,
		SubmittedBy:   userID,
		Role:          role,
		FormData:      req.FormData,
	}
	if layout.ID != uuid.Nil {
		id := layout.ID
		submission.LayoutID = &id
	}

	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	s.trail.Record(ctx, tenantID, userID, "form.submit", "form_submission", submission.ID.String(), map[string]any{
		"requestType":   req.RequestType,
		"workflowStage": req.WorkflowStage,
	})
	slog.Info("form submission accepted",
		"tenant_id", tenantID,
		"request_type", req.RequestType,
		"submission_id", submission.ID,
	)
	return submission, nil
}

// Render computes the form the caller should see right now: the layout, the
// sections after visibility filtering, and the caller's field access. The
// form data is echoed back so clients can render partially filled forms.
func (s *Service) Render(ctx context.Context, tenantID, role string, req SubmitRequest, vctx formmodel.VisibilityContext) (*RenderedForm, error) {
	layout, err := s.layouts.FindLayout(ctx, formservice.LayoutQuery{
		TenantID:      tenantID,
		RequestType:   req.RequestType,
		WorkflowStage: req.WorkflowStage,
		AgentType:     req.AgentType,
		AgentCategory: req.AgentCategory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout: %w", err)
	}
	if layout == nil {
		return &RenderedForm{}, nil
	}

	access, err := s.resolver.Resolve(ctx, formmodel.AccessQuery{
		TenantID:      tenantID,
		RequestType:   req.RequestType,
		Role:          role,
		AgentType:     req.AgentType,
		WorkflowStage: req.WorkflowStage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve field access: %w", err)
	}

	return &RenderedForm{
		Layout:   layout,
		Sections: formservice.VisibleSections(layout, req.FormData, access, vctx),
		Access:   access,
		FormData: req.FormData,
	}, nil
}

// ListSubmissions returns a tenant's submissions, newest first.
func (s *Service) ListSubmissions(ctx context.Context, tenantID string, limit, offset int) ([]FormSubmission, error) {
	var submissions []FormSubmission
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}
