package address

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// AddressModule implements the app.Module interface for the address domain.
type AddressModule struct {
	handler *AddressHandler
}

// NewModule creates a new AddressModule with the given handler.
// Panics if h is nil.
func NewModule(h *AddressHandler) *AddressModule {
	if h == nil {
		panic("address.NewModule: handler must not be nil")
	}
	return &AddressModule{handler: h}
}

// RegisterRoutes registers address routes on an authenticated group. Users
// manage their own address under /me; the rest is for ADMIN.
func (m *AddressModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/addresses")
	g.POST("", anyone, m.handler.Create)
	g.GET("", admin, m.handler.List)

	me := g.Group("/me", anyone)
	me.GET("", m.handler.GetMine)
	me.PATCH("", m.handler.UpdateMine)
	me.PATCH("/soft-delete", m.handler.SoftDeleteMine)

	users := g.Group("/users/:userId", admin)
	users.GET("", m.handler.Get)
	users.PATCH("", m.handler.Update)
	users.DELETE("", m.handler.Delete)
	users.PATCH("/restore", m.handler.Restore)
}
