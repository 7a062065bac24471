package user

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc Service
}

// NewHandler creates a new UserHandler with the given service.
func NewHandler(svc Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	pkg.Respond(c, h.svc.Create(c.Request.Context(), req))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	h.byID(c, h.svc.Get)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
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

// Update handles PATCH /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pkg.ParamUUID(c, "id")
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

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	h.byID(c, h.svc.Delete)
}

// SoftDelete handles PATCH /api/v1/users/:id/soft-delete.
func (h *UserHandler) SoftDelete(c *gin.Context) {
	h.byID(c, h.svc.SoftDelete)
}

// Restore handles PATCH /api/v1/users/:id/restore.
func (h *UserHandler) Restore(c *gin.Context) {
	h.byID(c, h.svc.Restore)
}

// Profile handles GET /api/v1/users/me.
func (h *UserHandler) Profile(c *gin.Context) {
	pkg.Respond(c, h.svc.Get(c.Request.Context(), middleware.UserID(c)))
}

// UpdateProfile handles PATCH /api/v1/users/me. Users cannot change their
// own role or verification state.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	req.Role = nil
	req.IsVerified = nil
	pkg.Respond(c, h.svc.Update(c.Request.Context(), middleware.UserID(c), req))
}

// SoftDeleteProfile handles PATCH /api/v1/users/me/soft-delete.
func (h *UserHandler) SoftDeleteProfile(c *gin.Context) {
	pkg.Respond(c, h.svc.SoftDelete(c.Request.Context(), middleware.UserID(c)))
}

func (h *UserHandler) byID(c *gin.Context, op func(ctx context.Context, id string) store.Reply) {
	id, err := pkg.ParamUUID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, op(c.Request.Context(), id))
}
