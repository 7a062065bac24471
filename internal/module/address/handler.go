package address

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// AddressHandler handles REST API requests for the address resource.
type AddressHandler struct {
	svc Service
}

// NewHandler creates a new AddressHandler with the given service.
func NewHandler(svc Service) *AddressHandler {
	return &AddressHandler{svc: svc}
}

// Create handles POST /api/v1/addresses.
func (h *AddressHandler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	userID := middleware.UserID(c)
	if req.UserID != "" && middleware.HasRole(c, domain.RoleAdmin) {
		userID = req.UserID
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), userID, req))
}

// GetMine handles GET /api/v1/addresses/me.
func (h *AddressHandler) GetMine(c *gin.Context) {
	pkg.Respond(c, h.svc.GetByUser(c.Request.Context(), middleware.UserID(c)))
}

// UpdateMine handles PATCH /api/v1/addresses/me.
func (h *AddressHandler) UpdateMine(c *gin.Context) {
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Update(c.Request.Context(), middleware.UserID(c), req))
}

// SoftDeleteMine handles PATCH /api/v1/addresses/me/soft-delete.
func (h *AddressHandler) SoftDeleteMine(c *gin.Context) {
	pkg.Respond(c, h.svc.SoftDelete(c.Request.Context(), middleware.UserID(c)))
}

// List handles GET /api/v1/addresses.
func (h *AddressHandler) List(c *gin.Context) {
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

// Get handles GET /api/v1/addresses/users/:userId.
func (h *AddressHandler) Get(c *gin.Context) {
	h.byUser(c, h.svc.GetByUser)
}

// Update handles PATCH /api/v1/addresses/users/:userId.
func (h *AddressHandler) Update(c *gin.Context) {
	userID, err := pkg.ParamUUID(c, "userId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Update(c.Request.Context(), userID, req))
}

// Delete handles DELETE /api/v1/addresses/users/:userId.
func (h *AddressHandler) Delete(c *gin.Context) {
	h.byUser(c, h.svc.Delete)
}

// Restore handles PATCH /api/v1/addresses/users/:userId/restore.
func (h *AddressHandler) Restore(c *gin.Context) {
	h.byUser(c, h.svc.Restore)
}

func (h *AddressHandler) byUser(c *gin.Context, op func(ctx context.Context, userID string) store.Reply) {
	userID, err := pkg.ParamUUID(c, "userId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), userID))
}
