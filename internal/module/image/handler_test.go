package image

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/moduletest"
)

const testMaxFileSize = 256

func setupImageRouter(t *testing.T) (*gin.Engine, fixture, *moduletest.JWT) {
	t.Helper()
	f := newFixture(t)
	tokens := moduletest.NewJWT()
	mod := NewModule(NewHandler(f.service(0), testMaxFileSize))
	return moduletest.Router(tokens, mod.RegisterRoutes), f, tokens
}

func part(field string, file File) moduletest.File {
	return moduletest.File{Field: field, Name: file.Name, ContentType: file.Mimetype, Data: file.Data}
}

func TestImageHandler_UserImage(t *testing.T) {
	r, f, tokens := setupImageRouter(t)
	user := tokens.Issue(t, f.user.ID, domain.RoleUser)
	const path = "/api/v1/images/users/me"

	tests := []struct {
		name       string
		method     string
		files      []moduletest.File
		wantStatus int
	}{
		{"missing file", http.MethodPost, nil, http.StatusBadRequest},
		{"wrong field", http.MethodPost, []moduletest.File{part("avatar", pngFile(1))}, http.StatusBadRequest},
		{"declared pdf", http.MethodPost, []moduletest.File{{Field: "image", Name: "cv.pdf", ContentType: "application/pdf", Data: pngFile(1).Data}}, http.StatusBadRequest},
		{"text posing as png", http.MethodPost, []moduletest.File{{Field: "image", Name: "a.png", ContentType: "image/png", Data: []byte("hello world")}}, http.StatusBadRequest},
		{"too large", http.MethodPost, []moduletest.File{{Field: "image", Name: "big.png", ContentType: "image/png", Data: append(bytes.Clone(pngMagic), make([]byte, testMaxFileSize)...)}}, http.StatusBadRequest},
		{"upload", http.MethodPost, []moduletest.File{part("image", pngFile(1))}, http.StatusOK},
		{"replace", http.MethodPatch, []moduletest.File{part("image", jpegFile(2))}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moduletest.Upload(t, r, tt.method, path, user, nil, tt.files...)
			if got.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, path, got.Code, tt.wantStatus, got.Raw)
			}
		})
	}

	got := moduletest.Do(t, r, http.MethodGet, path, user, nil)
	if got.Code != http.StatusOK || got.Data()["mimetype"] != "image/jpeg" {
		t.Errorf("GET %s = %d (%s)", path, got.Code, got.Raw)
	}
	if del := moduletest.Do(t, r, http.MethodDelete, path, user, nil); del.Code != http.StatusOK {
		t.Errorf("DELETE %s = %d (%s)", path, del.Code, del.Raw)
	}
}

func TestImageHandler_ProductImages(t *testing.T) {
	r, f, tokens := setupImageRouter(t)
	admin := tokens.Issue(t, "admin-1", domain.RoleAdmin)
	user := tokens.Issue(t, f.user.ID, domain.RoleUser)
	path := "/api/v1/images/products/" + strconv.FormatUint(uint64(f.product.ID), 10)

	denied := moduletest.Upload(t, r, http.MethodPost, path, user, nil, part("images", pngFile(1)))
	if denied.Code != http.StatusForbidden {
		t.Errorf("user upload = %d, want 403", denied.Code)
	}
	if empty := moduletest.Upload(t, r, http.MethodPost, path, admin, nil); empty.Code != http.StatusBadRequest {
		t.Errorf("upload without files = %d, want 400", empty.Code)
	}

	created := moduletest.Upload(t, r, http.MethodPost, path, admin, nil,
		part("images", pngFile(1)), part("images", jpegFile(2)))
	if created.Code != http.StatusOK {
		t.Fatalf("admin upload = %d (%s)", created.Code, created.Raw)
	}

	list := moduletest.Do(t, r, http.MethodGet, path, user, nil)
	images := list.List()
	if list.Code != http.StatusOK || len(images) != 2 {
		t.Fatalf("list = %d with %d images (%s)", list.Code, len(images), list.Raw)
	}
	first := images[0].(map[string]any)
	imageID := strconv.FormatFloat(first["id"].(float64), 'f', -1, 64)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"bad product id", http.MethodGet, "/api/v1/images/products/abc", user, http.StatusBadRequest},
		{"user cannot delete", http.MethodDelete, path + "/" + imageID, user, http.StatusForbidden},
		{"admin deletes one", http.MethodDelete, path + "/" + imageID, admin, http.StatusOK},
		{"admin deletes one again", http.MethodDelete, path + "/" + imageID, admin, http.StatusNotFound},
		{"admin deletes all", http.MethodDelete, path, admin, http.StatusOK},
		{"list empty", http.MethodGet, path, user, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moduletest.Do(t, r, tt.method, tt.path, tt.token, nil)
			if got.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, got.Code, tt.wantStatus, got.Raw)
			}
		})
	}
}
