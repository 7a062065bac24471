package order

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// OrderModule implements the app.Module interface for orders.
type OrderModule struct {
	handler *OrderHandler
}

// NewModule creates a new OrderModule with the given handler.
// Panics if h is nil.
func NewModule(h *OrderHandler) *OrderModule {
	if h == nil {
		panic("order.NewModule: handler must not be nil")
	}
	return &OrderModule{handler: h}
}

// RegisterRoutes registers order routes on an authenticated group. Users
// check out and read their own orders; the rest needs ADMIN.
func (m *OrderModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/orders")
	g.POST("", anyone, m.handler.Create)
	g.GET("/me", anyone, m.handler.ListMine)

	g.GET("", admin, m.handler.List)
	g.GET("/:id", admin, m.handler.Get)
	g.PATCH("/:id/status", admin, m.handler.UpdateStatus)
	g.PATCH("/:id/soft-delete", admin, m.handler.SoftDelete)
	g.PATCH("/:id/restore", admin, m.handler.Restore)
}
