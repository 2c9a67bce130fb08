package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OpenGRC/console/internal/auth"
)

// Router serves the approver group directory.
type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// Register mounts the group routes on the given group.
func (gr *Router) Register(api *gin.RouterGroup) {
	api.GET("/groups", gr.HandleListGroups)
}

// HandleListGroups handles GET /api/v1/groups
func (gr *Router) HandleListGroups(c *gin.Context) {
	principal, ok := auth.RequirePrincipal(c)
	if !ok {
		return
	}

	approverGroups, err := gr.service.ListGroups(c.Request.Context(), principal.TenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list approver groups"})
		return
	}
	c.JSON(http.StatusOK, approverGroups)
}
