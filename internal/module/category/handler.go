package category

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// CategoryHandler handles REST API requests for the category resource.
type CategoryHandler struct {
	svc Service
}

// NewHandler creates a new CategoryHandler with the given service.
func NewHandler(svc Service) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// Create handles POST /api/v1/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), req))
}

// Get handles GET /api/v1/categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

// List handles GET /api/v1/categories.
func (h *CategoryHandler) List(c *gin.Context) {
	var q ListQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	page, err := pkg.ParsePageRequest(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.List(c.Request.Context(), q, page))
}

// Update handles PATCH /api/v1/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := pkg.ParamUint(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Update(c.Request.Context(), id, req))
}

// Delete handles DELETE /api/v1/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	h.byID(c, h.svc.Delete)
}

// SoftDelete handles PATCH /api/v1/categories/:id/soft-delete.
func (h *CategoryHandler) SoftDelete(c *gin.Context) {
	h.byID(c, h.svc.SoftDelete)
}

// Restore handles PATCH /api/v1/categories/:id/restore.
func (h *CategoryHandler) Restore(c *gin.Context) {
	h.byID(c, h.svc.Restore)
}

func (h *CategoryHandler) byID(c *gin.Context, op func(ctx context.Context, id uint) store.Reply) {
	id, err := pkg.ParamUint(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), id))
}
