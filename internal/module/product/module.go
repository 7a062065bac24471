package product

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// ProductModule implements the app.Module interface for the product domain.
type ProductModule struct {
	handler *ProductHandler
}

// NewModule creates a new ProductModule with the given handler.
// Panics if h is nil.
func NewModule(h *ProductHandler) *ProductModule {
	if h == nil {
		panic("product.NewModule: handler must not be nil")
	}
	return &ProductModule{handler: h}
}

// RegisterRoutes registers product routes on an authenticated group.
// Every signed-in user can browse; changes need ADMIN.
func (m *ProductModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)

	g := api.Group("/products")
	g.POST("", admin, m.handler.Create)
	g.GET("", m.handler.List)
	g.GET("/:id", m.handler.Get)
	g.PATCH("/:id", admin, m.handler.Update)
	g.PATCH("/:id/stock", admin, m.handler.ChangeStock)
	g.DELETE("/:id", admin, m.handler.Delete)
	g.PATCH("/:id/soft-delete", admin, m.handler.SoftDelete)
	g.PATCH("/:id/restore", admin, m.handler.Restore)
}
