package purchasedproduct

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// PurchasedProductHandler handles REST API requests for cart lines.
type PurchasedProductHandler struct {
	svc Service
}

// NewHandler creates a new PurchasedProductHandler with the given service.
func NewHandler(svc Service) *PurchasedProductHandler {
	return &PurchasedProductHandler{svc: svc}
}

// Create handles POST /api/v1/purchased-products.
func (h *PurchasedProductHandler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), middleware.ActingUser(c, req.UserID), req))
}

// CreateMany handles POST /api/v1/purchased-products/batch.
func (h *PurchasedProductHandler) CreateMany(c *gin.Context) {
	var req CreateManyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.CreateMany(c.Request.Context(), middleware.ActingUser(c, req.UserID), req.Items))
}

// ListMine handles GET /api/v1/purchased-products/me.
func (h *PurchasedProductHandler) ListMine(c *gin.Context) {
	page, err := pkg.ParsePageRequest(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.ListByUser(c.Request.Context(), middleware.UserID(c), page))
}

// ListByUser handles GET /api/v1/purchased-products/users/:userId.
func (h *PurchasedProductHandler) ListByUser(c *gin.Context) {
	userID, err := pkg.ParamUUID(c, "userId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	page, err := pkg.ParsePageRequest(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.ListByUser(c.Request.Context(), userID, page))
}

// List handles GET /api/v1/purchased-products.
func (h *PurchasedProductHandler) List(c *gin.Context) {
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

// Get handles GET /api/v1/purchased-products/:id.
func (h *PurchasedProductHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

// UpdateStatus handles PATCH /api/v1/purchased-products/users/:userId/status.
func (h *PurchasedProductHandler) UpdateStatus(c *gin.Context) {
	userID, err := pkg.ParamUUID(c, "userId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req UpdateStatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.UpdateStatus(c.Request.Context(), userID, req.Status))
}

// Delete handles DELETE /api/v1/purchased-products/:id.
func (h *PurchasedProductHandler) Delete(c *gin.Context) {
	h.byID(c, h.svc.Delete)
}

// SoftDelete handles PATCH /api/v1/purchased-products/:id/soft-delete.
func (h *PurchasedProductHandler) SoftDelete(c *gin.Context) {
	h.byID(c, h.svc.SoftDelete)
}

// Restore handles PATCH /api/v1/purchased-products/:id/restore.
func (h *PurchasedProductHandler) Restore(c *gin.Context) {
	h.byID(c, h.svc.Restore)
}

func (h *PurchasedProductHandler) byID(c *gin.Context, op func(ctx context.Context, id string) store.Reply) {
	id, err := pkg.ParamUUID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), id))
}
