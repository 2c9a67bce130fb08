package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenGRC/console/internal/auth"
	"github.com/OpenGRC/console/internal/groups"
	"github.com/OpenGRC/console/internal/workflow/model"
	"github.com/OpenGRC/console/internal/workflow/service"
)

// WorkflowRouter exposes the step sequencer over HTTP.
type WorkflowRouter struct {
	steps  *service.StepService
	groups *groups.Service
}

func NewWorkflowRouter(steps *service.StepService, groupService *groups.Service) *WorkflowRouter {
	return &WorkflowRouter{steps: steps, groups: groupService}
}

// Register mounts the workflow step routes on the given group.
func (wr *WorkflowRouter) Register(api *gin.RouterGroup) {
	api.GET("/workflows/:workflowID/steps", wr.HandleListSteps)
	api.POST("/workflows/:workflowID/steps", wr.HandleAddStep)
	api.PATCH("/workflows/:workflowID/steps/:stepNumber", wr.HandleUpdateStep)
	api.DELETE("/workflows/:workflowID/steps/:stepNumber", wr.HandleDeleteStep)
	api.POST("/workflows/:workflowID/steps/reorder", wr.HandleReorderSteps)
}

// stepView is a step plus the display name of whoever it is assigned to.
type stepView struct {
	model.WorkflowStep
	Assignee string `json:"assignee"`
}

func (wr *WorkflowRouter) stepViews(c *gin.Context, tenantID string, steps []model.WorkflowStep) []stepView {
	names, err := wr.groups.NameIndex(c.Request.Context(), tenantID)
	if err != nil {
		// Assignee display degrades to role names; the steps themselves
		// are still correct.
		names = map[string]string{}
	}
	views := make([]stepView, 0, len(steps))
	for _, step := range steps {
		views = append(views, stepView{
			WorkflowStep: step,
			Assignee:     service.ResolveAssignee(step, names),
		})
	}
	return views
}

func parseWorkflowID(c *gin.Context) (uuid.UUID, bool) {
	workflowID, err := uuid.Parse(c.Param("workflowID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow ID"})
		return uuid.Nil, false
	}
	return workflowID, true
}

func parseStepNumber(c *gin.Context) (int, bool) {
	stepNumber, err := strconv.Atoi(c.Param("stepNumber"))
	if err != nil || stepNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step number"})
		return 0, false
	}
	return stepNumber, true
}

// HandleListSteps handles GET /api/v1/workflows/:workflowID/steps
func (wr *WorkflowRouter) HandleListSteps(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}
	workflowID, ok := parseWorkflowID(c)
	if !ok {
		return
	}

	steps, err := wr.steps.ListSteps(c.Request.Context(), principal.TenantID, workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workflow steps"})
		return
	}
	c.JSON(http.StatusOK, wr.stepViews(c, principal.TenantID, steps))
}

// HandleAddStep handles POST /api/v1/workflows/:workflowID/steps
// The new step is appended after the current last step with generated
// defaults; clients customize it with a follow-up PATCH.
func (wr *WorkflowRouter) HandleAddStep(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}
	workflowID, ok := parseWorkflowID(c)
	if !ok {
		return
	}

	step, err := wr.steps.AddStep(c.Request.Context(), principal.TenantID, principal.UserID, workflowID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add workflow step"})
		return
	}
	c.JSON(http.StatusCreated, step)
}

// HandleUpdateStep handles PATCH /api/v1/workflows/:workflowID/steps/:stepNumber
func (wr *WorkflowRouter) HandleUpdateStep(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}
	workflowID, ok := parseWorkflowID(c)
	if !ok {
		return
	}
	stepNumber, ok := parseStepNumber(c)
	if !ok {
		return
	}

	var patch model.UpdateStepDTO
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	step, err := wr.steps.UpdateStep(c.Request.Context(), principal.TenantID, principal.UserID, workflowID, stepNumber, patch)
	if err != nil {
		wr.writeStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

// HandleDeleteStep handles DELETE /api/v1/workflows/:workflowID/steps/:stepNumber
// Remaining steps are renumbered and returned so the client can redraw the
// sequence without a second round trip.
func (wr *WorkflowRouter) HandleDeleteStep(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}
	workflowID, ok := parseWorkflowID(c)
	if !ok {
		return
	}
	stepNumber, ok := parseStepNumber(c)
	if !ok {
		return
	}

	steps, err := wr.steps.DeleteStep(c.Request.Context(), principal.TenantID, principal.UserID, workflowID, stepNumber)
	if err != nil {
		wr.writeStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, wr.stepViews(c, principal.TenantID, steps))
}

// HandleReorderSteps handles POST /api/v1/workflows/:workflowID/steps/reorder
func (wr *WorkflowRouter) HandleReorderSteps(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}
	workflowID, ok := parseWorkflowID(c)
	if !ok {
		return
	}

	var dto model.ReorderStepsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	steps, err := wr.steps.ReorderSteps(c.Request.Context(), principal.TenantID, principal.UserID, workflowID, dto.StepNumbers)
	if err != nil {
		wr.writeStepError(c, err)
		return
	}
	c.JSON(http.StatusOK, wr.stepViews(c, principal.TenantID, steps))
}

func (wr *WorkflowRouter) writeStepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStepNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrLastStep),
		errors.Is(err, service.ErrBadPermutation),
		errors.Is(err, service.ErrEmptySequence):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidStepPatch),
		errors.Is(err, service.ErrInvalidSequence),
		errors.Is(err, service.ErrMultipleFirst):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update workflow steps"})
	}
}
