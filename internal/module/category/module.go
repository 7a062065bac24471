package category

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// CategoryModule implements the app.Module interface for the category domain.
type CategoryModule struct {
	handler *CategoryHandler
}

// NewModule creates a new CategoryModule with the given handler.
// Panics if h is nil.
func NewModule(h *CategoryHandler) *CategoryModule {
	if h == nil {
		panic("category.NewModule: handler must not be nil")
	}
	return &CategoryModule{handler: h}
}

// RegisterRoutes registers category routes on an authenticated group.
// Reading one category is open to every role; the rest needs ADMIN.
func (m *CategoryModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/categories")
	g.POST("", admin, m.handler.Create)
	g.GET("", admin, m.handler.List)
	g.GET("/:id", anyone, m.handler.Get)
	g.PATCH("/:id", admin, m.handler.Update)
	g.DELETE("/:id", admin, m.handler.Delete)
	g.PATCH("/:id/soft-delete", admin, m.handler.SoftDelete)
	g.PATCH("/:id/restore", admin, m.handler.Restore)
}
