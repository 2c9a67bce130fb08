package registry

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenGRC/console/internal/auth"
)

// Router exposes the field requirement registry over HTTP.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// Register mounts the registry routes on the given group.
func (r *Router) Register(api *gin.RouterGroup) {
	api.GET("/requirements", r.HandleListRequirements)
	api.POST("/requirements", r.HandleCreateRequirement)
	api.PUT("/requirements/:id", r.HandleUpdateRequirement)
}

// HandleListRequirements handles GET /api/v1/requirements?activeOnly=true
func (r *Router) HandleListRequirements(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	activeOnly := c.DefaultQuery("activeOnly", "true") == "true"
	requirements, err := r.service.ListRequirements(c.Request.Context(), principal.TenantID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list field requirements"})
		return
	}
	c.JSON(http.StatusOK, requirements)
}

// HandleCreateRequirement handles POST /api/v1/requirements
func (r *Router) HandleCreateRequirement(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	var requirement FieldRequirement
	if err := c.ShouldBindJSON(&requirement); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	requirement.TenantID = principal.TenantID

	if err := r.service.CreateRequirement(c.Request.Context(), &requirement); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, requirement)
}

// HandleUpdateRequirement handles PUT /api/v1/requirements/:id
func (r *Router) HandleUpdateRequirement(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requirement ID: " + err.Error()})
		return
	}

	var requirement FieldRequirement
	if err := c.ShouldBindJSON(&requirement); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	requirement.ID = id
	requirement.TenantID = principal.TenantID

	if err := r.service.UpdateRequirement(c.Request.Context(), &requirement); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "field requirement not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, requirement)
}
