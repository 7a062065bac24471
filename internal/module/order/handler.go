package order

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// OrderHandler handles REST API requests for orders.
type OrderHandler struct {
	svc Service
}

// NewHandler creates a new OrderHandler with the given service.
func NewHandler(svc Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateRequest
	if c.Request.ContentLength != 0 && !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), middleware.ActingUser(c, req.UserID), req))
}

// ListMine handles GET /api/v1/orders/me.
func (h *OrderHandler) ListMine(c *gin.Context) {
	page, err := pkg.ParsePageRequest(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.ListByUser(c.Request.Context(), middleware.UserID(c), page))
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
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

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := pkg.ParamUUID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req UpdateStatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.UpdateStatus(c.Request.Context(), id, req.Status))
}

// SoftDelete handles PATCH /api/v1/orders/:id/soft-delete.
func (h *OrderHandler) SoftDelete(c *gin.Context) {
	h.byID(c, h.svc.SoftDelete)
}

// Restore handles PATCH /api/v1/orders/:id/restore.
func (h *OrderHandler) Restore(c *gin.Context) {
	h.byID(c, h.svc.Restore)
}

func (h *OrderHandler) byID(c *gin.Context, op func(ctx context.Context, id string) store.Reply) {
	id, err := pkg.ParamUUID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), id))
}
