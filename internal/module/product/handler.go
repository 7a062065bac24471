package product

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// ProductHandler handles REST API requests for the product resource.
type ProductHandler struct {
	svc Service
}

// NewHandler creates a new ProductHandler with the given service.
func NewHandler(svc Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create handles POST /api/v1/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), req))
}

// Get handles GET /api/v1/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(c *gin.Context) {
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

// Update handles PATCH /api/v1/products/:id.
func (h *ProductHandler) Update(c *gin.Context) {
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

// ChangeStock handles PATCH /api/v1/products/:id/stock.
func (h *ProductHandler) ChangeStock(c *gin.Context) {
	id, err := pkg.ParamUint(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req ChangeStockRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.ChangeStock(c.Request.Context(), id, req))
}

// Delete handles DELETE /api/v1/products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	h.byID(c, h.svc.Delete)
}

// SoftDelete handles PATCH /api/v1/products/:id/soft-delete.
func (h *ProductHandler) SoftDelete(c *gin.Context) {
	h.byID(c, h.svc.SoftDelete)
}

// Restore handles PATCH /api/v1/products/:id/restore.
func (h *ProductHandler) Restore(c *gin.Context) {
	h.byID(c, h.svc.Restore)
}

func (h *ProductHandler) byID(c *gin.Context, op func(ctx context.Context, id uint) store.Reply) {
	id, err := pkg.ParamUint(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), id))
}
