package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenGRC/console/internal/auth"
	"github.com/OpenGRC/console/internal/forms/model"
	"github.com/OpenGRC/console/internal/forms/service"
)

// FormsRouter serves layouts and resolved field access to the console UI.
type FormsRouter struct {
	layouts  *service.LayoutStore
	access   *service.AccessStore
	resolver *service.AccessResolver
}

func NewFormsRouter(layouts *service.LayoutStore, access *service.AccessStore, resolver *service.AccessResolver) *FormsRouter {
	return &FormsRouter{layouts: layouts, access: access, resolver: resolver}
}

// Register mounts the forms routes on the given group.
func (fr *FormsRouter) Register(api *gin.RouterGroup) {
	api.GET("/layouts", fr.HandleGetLayout)
	api.GET("/field-access", fr.HandleGetFieldAccess)
	api.PUT("/field-access", fr.HandleUpsertFieldAccess)
}

// HandleGetLayout handles GET /api/v1/layouts
// Query params: requestType (required), workflowStage, agentType, agentCategory.
// Responds with the matching layout, or JSON null when none is configured —
// callers fall back to their default arrangement.
func (fr *FormsRouter) HandleGetLayout(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	requestType := c.Query("requestType")
	if requestType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: requestType"})
		return
	}

	layout, err := fr.layouts.FindLayout(c.Request.Context(), service.LayoutQuery{
		TenantID:      principal.TenantID,
		RequestType:   requestType,
		WorkflowStage: c.Query("workflowStage"),
		AgentType:     c.Query("agentType"),
		AgentCategory: c.Query("agentCategory"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find form layout"})
		return
	}

	c.JSON(http.StatusOK, layout)
}

// HandleGetFieldAccess handles GET /api/v1/field-access
// Query params: requestType, role (both required), agentType, workflowStage.
// A missing requestType or role is a 400, which callers treat as "no access
// records" rather than a hard failure.
func (fr *FormsRouter) HandleGetFieldAccess(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	var query model.AccessQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	query.TenantID = principal.TenantID

	accessMap, err := fr.resolver.Resolve(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve field access"})
		return
	}

	type entry struct {
		FieldName string `json:"fieldName"`
		CanView   bool   `json:"canView"`
		CanEdit   bool   `json:"canEdit"`
	}
	entries := make([]entry, 0, len(accessMap))
	for fieldName, access := range accessMap {
		entries = append(entries, entry{FieldName: fieldName, CanView: access.CanView, CanEdit: access.CanEdit})
	}
	c.JSON(http.StatusOK, entries)
}

// HandleUpsertFieldAccess handles PUT /api/v1/field-access
func (fr *FormsRouter) HandleUpsertFieldAccess(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	var rule model.FieldAccessRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	rule.TenantID = principal.TenantID

	if err := fr.access.UpsertRule(c.Request.Context(), &rule); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// Stored rules changed; memoized resolutions are stale.
	fr.resolver.Invalidate()
	c.JSON(http.StatusOK, rule)
}
