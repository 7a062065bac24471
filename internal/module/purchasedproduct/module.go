package purchasedproduct

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// PurchasedProductModule implements the app.Module interface for cart lines.
type PurchasedProductModule struct {
	handler *PurchasedProductHandler
}

// NewModule creates a new PurchasedProductModule with the given handler.
// Panics if h is nil.
func NewModule(h *PurchasedProductHandler) *PurchasedProductModule {
	if h == nil {
		panic("purchasedproduct.NewModule: handler must not be nil")
	}
	return &PurchasedProductModule{handler: h}
}

// RegisterRoutes registers cart line routes on an authenticated group.
// Every role manages its own cart; the rest needs ADMIN.
func (m *PurchasedProductModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/purchased-products")
	g.POST("", anyone, m.handler.Create)
	g.POST("/batch", anyone, m.handler.CreateMany)
	g.GET("/me", anyone, m.handler.ListMine)

	g.GET("", admin, m.handler.List)
	g.GET("/users/:userId", admin, m.handler.ListByUser)
	g.PATCH("/users/:userId/status", admin, m.handler.UpdateStatus)
	g.GET("/:id", admin, m.handler.Get)
	g.DELETE("/:id", admin, m.handler.Delete)
	g.PATCH("/:id/soft-delete", admin, m.handler.SoftDelete)
	g.PATCH("/:id/restore", admin, m.handler.Restore)
}
