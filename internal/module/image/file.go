package image

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/simp-lee/shopbase/internal/domain"
)

// extensions maps the accepted image types to the stored file extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// File is an uploaded image held in memory.
type File struct {
	Name     string
	Mimetype string
	Data     []byte
}

// Hash returns the hex sha256 of the content.
func (f File) Hash() string {
	sum := sha256.Sum256(f.Data)
	return hex.EncodeToString(sum[:])
}

func (f File) ext() string {
	return extensions[f.Mimetype]
}

// readFile loads an upload and checks its type and size. Both the declared
// type and the sniffed content must be JPEG or PNG.
func readFile(h *multipart.FileHeader, maxSize int64) (File, error) {
	if h.Size > maxSize {
		return File{}, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("File %s exceeds the %d byte limit", h.Filename, maxSize), nil)
	}
	declared := h.Header.Get("Content-Type")
	if _, ok := extensions[declared]; !ok {
		return File{}, domain.NewAppError(domain.CodeValidation,
			"Only jpeg and png images are allowed", errors.New("mimetype "+declared))
	}

	src, err := h.Open()
	if err != nil {
		return File{}, fmt.Errorf("image: open upload: %w", err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return File{}, fmt.Errorf("image: read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return File{}, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("File %s exceeds the %d byte limit", h.Filename, maxSize), nil)
	}

	sniffed := http.DetectContentType(data)
	if _, ok := extensions[sniffed]; !ok {
		return File{}, domain.NewAppError(domain.CodeValidation,
			"Only jpeg and png images are allowed", errors.New("content "+sniffed))
	}
	return File{Name: filepath.Base(h.Filename), Mimetype: sniffed, Data: data}, nil
}
