package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler *UserHandler
}

// NewModule creates a new UserModule with the given handler.
// Panics if h is nil.
func NewModule(h *UserHandler) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h}
}

// RegisterRoutes registers user routes on an authenticated group. The /me
// routes act on the caller; the rest needs ADMIN.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/users")

	me := g.Group("/me", anyone)
	me.GET("", m.handler.Profile)
	me.PATCH("", m.handler.UpdateProfile)
	me.PATCH("/soft-delete", m.handler.SoftDeleteProfile)

	g.POST("", admin, m.handler.Create)
	g.GET("", admin, m.handler.List)
	g.GET("/:id", admin, m.handler.Get)
	g.PATCH("/:id", admin, m.handler.Update)
	g.DELETE("/:id", admin, m.handler.Delete)
	g.PATCH("/:id/soft-delete", admin, m.handler.SoftDelete)
	g.PATCH("/:id/restore", admin, m.handler.Restore)
}
