package image

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
)

// DefaultMaxFileSize is the per-file upload limit when none is configured.
const DefaultMaxFileSize int64 = 5 << 20

// ImageHandler handles REST API requests for user and product images.
type ImageHandler struct {
	svc         Service
	maxFileSize int64
}

// NewHandler creates a new ImageHandler. Files larger than maxFileSize
// bytes are rejected; zero selects DefaultMaxFileSize.
func NewHandler(svc Service, maxFileSize int64) *ImageHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &ImageHandler{svc: svc, maxFileSize: maxFileSize}
}

// UploadUserImage handles POST /api/v1/images/users/me.
func (h *ImageHandler) UploadUserImage(c *gin.Context) {
	f, ok := h.single(c)
	if !ok {
		return
	}
	pkg.Respond(c, h.svc.UploadUserImage(c.Request.Context(), middleware.UserID(c), f))
}

// GetUserImage handles GET /api/v1/images/users/me.
func (h *ImageHandler) GetUserImage(c *gin.Context) {
	pkg.Respond(c, h.svc.GetUserImage(c.Request.Context(), middleware.UserID(c)))
}

// UpdateUserImage handles PATCH /api/v1/images/users/me.
func (h *ImageHandler) UpdateUserImage(c *gin.Context) {
	f, ok := h.single(c)
	if !ok {
		return
	}
	pkg.Respond(c, h.svc.UpdateUserImage(c.Request.Context(), middleware.UserID(c), f))
}

// DeleteUserImage handles DELETE /api/v1/images/users/me.
func (h *ImageHandler) DeleteUserImage(c *gin.Context) {
	pkg.Respond(c, h.svc.DeleteUserImage(c.Request.Context(), middleware.UserID(c)))
}

// UploadProductImages handles POST /api/v1/images/products/:productId.
func (h *ImageHandler) UploadProductImages(c *gin.Context) {
	productID, err := pkg.ParamUint(c, "productId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	files, ok := h.multiple(c)
	if !ok {
		return
	}
	pkg.Respond(c, h.svc.UploadProductImages(c.Request.Context(), middleware.UserID(c), productID, files))
}

// ListProductImages handles GET /api/v1/images/products/:productId.
func (h *ImageHandler) ListProductImages(c *gin.Context) {
	productID, err := pkg.ParamUint(c, "productId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.ListProductImages(c.Request.Context(), productID))
}

// DeleteProductImages handles DELETE /api/v1/images/products/:productId.
func (h *ImageHandler) DeleteProductImages(c *gin.Context) {
	productID, err := pkg.ParamUint(c, "productId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.DeleteProductImages(c.Request.Context(), productID))
}

// DeleteProductImage handles DELETE /api/v1/images/products/:productId/:imageId.
func (h *ImageHandler) DeleteProductImage(c *gin.Context) {
	productID, err := pkg.ParamUint(c, "productId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	imageID, err := pkg.ParamUint(c, "imageId")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Respond(c, h.svc.DeleteProductImage(c.Request.Context(), productID, imageID))
}

// single reads the "image" form file.
func (h *ImageHandler) single(c *gin.Context) (File, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, `An image file is required in field "image"`, err))
		return File{}, false
	}
	f, err := readFile(header, h.maxFileSize)
	if err != nil {
		pkg.Error(c, err)
		return File{}, false
	}
	return f, true
}

// multiple reads every "images" form file.
func (h *ImageHandler) multiple(c *gin.Context) ([]File, bool) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, `At least one image file is required in field "images"`, err))
		return nil, false
	}
	files := make([]File, 0, len(form.File["images"]))
	for _, header := range form.File["images"] {
		f, err := readFile(header, h.maxFileSize)
		if err != nil {
			pkg.Error(c, err)
			return nil, false
		}
		files = append(files, f)
	}
	return files, true
}
