package requests

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenGRC/console/internal/auth"
	formmodel "github.com/OpenGRC/console/internal/forms/model"
	"github.com/OpenGRC/console/utils"
)

// Router exposes form rendering and submission.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// Register mounts the submission routes on the given group.
func (rr *Router) Register(api *gin.RouterGroup) {
	api.POST("/submissions", rr.HandleSubmit)
	api.GET("/submissions", rr.HandleListSubmissions)
	api.POST("/forms/render", rr.HandleRenderForm)
}

// HandleSubmit handles POST /api/v1/submissions
// A payload that fails validation comes back as 422 with the full
// field-to-message map under "errors".
func (rr *Router) HandleSubmit(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	submission, err := rr.service.Submit(c.Request.Context(), principal.TenantID, principal.UserID, principal.Role, req)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  validationErr.Error(),
				"errors": validationErr.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept submission"})
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// HandleListSubmissions handles GET /api/v1/submissions
func (rr *Router) HandleListSubmissions(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	offset, limit := utils.ParsePagination(c.Query("offset"), c.Query("limit"))
	submissions, err := rr.service.ListSubmissions(c.Request.Context(), principal.TenantID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// HandleRenderForm handles POST /api/v1/forms/render
// The body carries the request-type selectors plus any current form data;
// the response is the layout filtered to what this caller may see. A POST
// rather than GET because form data does not fit in a query string.
func (rr *Router) HandleRenderForm(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	rendered, err := rr.service.Render(c.Request.Context(), principal.TenantID, principal.Role, req, formmodel.VisibilityContext{
		RequestType:      req.RequestType,
		WorkflowStage:    req.WorkflowStage,
		AssignmentStatus: c.Query("assignmentStatus"),
		AssignmentID:     c.Query("assignmentId"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render form"})
		return
	}
	c.JSON(http.StatusOK, rendered)
}
