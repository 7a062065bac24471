package image

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
)

// ImageModule implements the app.Module interface for images.
type ImageModule struct {
	handler *ImageHandler
}

// NewModule creates a new ImageModule with the given handler.
// Panics if h is nil.
func NewModule(h *ImageHandler) *ImageModule {
	if h == nil {
		panic("image.NewModule: handler must not be nil")
	}
	return &ImageModule{handler: h}
}

// RegisterRoutes registers image routes on an authenticated group. Every
// role manages its own picture and reads product images; product image
// writes need ADMIN.
func (m *ImageModule) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	anyone := middleware.RequireRole(domain.RoleAdmin, domain.RoleUser)

	g := api.Group("/images")
	me := g.Group("/users/me", anyone)
	me.POST("", m.handler.UploadUserImage)
	me.GET("", m.handler.GetUserImage)
	me.PATCH("", m.handler.UpdateUserImage)
	me.DELETE("", m.handler.DeleteUserImage)

	g.GET("/products/:productId", anyone, m.handler.ListProductImages)
	g.POST("/products/:productId", admin, m.handler.UploadProductImages)
	g.DELETE("/products/:productId", admin, m.handler.DeleteProductImages)
	g.DELETE("/products/:productId/:imageId", admin, m.handler.DeleteProductImage)
}
