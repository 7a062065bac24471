package image

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// DefaultMaxProductImages caps the images of one product when Options
// leaves it unset.
const DefaultMaxProductImages = 5

// Options tunes the image service.
type Options struct {
	MaxProductImages int
}

// Service defines the user and product image operations.
type Service interface {
	UploadUserImage(ctx context.Context, userID string, f File) store.Reply
	GetUserImage(ctx context.Context, userID string) store.Reply
	UpdateUserImage(ctx context.Context, userID string, f File) store.Reply
	DeleteUserImage(ctx context.Context, userID string) store.Reply

	UploadProductImages(ctx context.Context, userID string, productID uint, files []File) store.Reply
	ListProductImages(ctx context.Context, productID uint) store.Reply
	DeleteProductImages(ctx context.Context, productID uint) store.Reply
	DeleteProductImage(ctx context.Context, productID, imageID uint) store.Reply
}

type imageService struct {
	reg              *repository.Registry
	disk             *Disk
	maxProductImages int
	log              *slog.Logger
}

// NewService creates an image Service storing files on disk.
// Panics if disk is nil.
func NewService(reg *repository.Registry, disk *Disk, opts Options) Service {
	if disk == nil {
		panic("image.NewService: disk must not be nil")
	}
	if opts.MaxProductImages <= 0 {
		opts.MaxProductImages = DefaultMaxProductImages
	}
	return &imageService{
		reg:              reg,
		disk:             disk,
		maxProductImages: opts.MaxProductImages,
		log:              reg.UserImages.Logger(),
	}
}

func userDir(userID string) string {
	return path.Join("users", userID)
}

func productDir(productID uint) string {
	return path.Join("products", strconv.FormatUint(uint64(productID), 10))
}

func byUser(userID string) store.Filter {
	return store.Where(store.Eq("user_id", userID))
}

func byProduct(productID uint) store.Filter {
	return store.Where(store.Eq("product_id", productID))
}

// remove deletes a stored file. Failures leave an orphan file behind and
// are only logged.
func (s *imageService) remove(ctx context.Context, file string) {
	if err := s.disk.Remove(file); err != nil {
		s.log.WarnContext(ctx, "stale image file kept", slog.String("path", file), slog.Any("error", err))
	}
}

func (s *imageService) UploadUserImage(ctx context.Context, userID string, f File) store.Reply {
	const op = "image.uploadUser"
	user, err := s.reg.Users.GetByConstraint(ctx, store.Select("id"), store.Messages{
		NotFound: "User with id: " + userID + " not found",
		Success:  "User with id: " + userID + " found successfully",
	}, s.reg.Users.ByID(userID))
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !user.Success {
		return user
	}

	existing, err := s.reg.UserImages.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "User image with user id: " + userID + " not found",
		Success:  "User image with user id: " + userID + " already exists",
	}, byUser(userID))
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if existing.Success {
		return existing
	}

	stored, err := s.disk.Save(userDir(userID), f.ext(), f.Data)
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	res, err := s.reg.UserImages.Create(ctx, &domain.UserImage{
		Mimetype:     f.Mimetype,
		FileName:     f.Name,
		Path:         stored,
		HashedBuffer: f.Hash(),
		UserID:       userID,
	}, store.Selection{}, store.Messages{
		Failed:  "Something went wrong while creating image",
		Success: "Image created successfully",
	})
	if err != nil || !res.Success {
		s.remove(ctx, stored)
	}
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	return res
}

func (s *imageService) userImage(ctx context.Context, userID string) (store.Envelope[*domain.UserImage], error) {
	return s.reg.UserImages.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "User image with user id: " + userID + " not found",
		Success:  "User image with user id: " + userID + " found successfully",
	}, byUser(userID))
}

func (s *imageService) GetUserImage(ctx context.Context, userID string) store.Reply {
	res, err := s.userImage(ctx, userID)
	if err != nil {
		return store.Internal(ctx, s.log, "image.getUser", err)
	}
	return res
}

// UpdateUserImage replaces the stored picture. The old file is removed once
// the row points at the new one.
func (s *imageService) UpdateUserImage(ctx context.Context, userID string, f File) store.Reply {
	const op = "image.updateUser"
	current, err := s.userImage(ctx, userID)
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !current.Success {
		return current
	}
	hash := f.Hash()
	if current.Data.HashedBuffer == hash {
		return store.Fail(ctx, s.log, http.StatusCreated,
			"Same image uploaded for user "+userID, "No changes occurred on image")
	}

	stored, err := s.disk.Save(userDir(userID), f.ext(), f.Data)
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	res, err := s.reg.UserImages.Update(ctx, store.Patch{
		"hashedBuffer": hash,
		"fileName":     f.Name,
		"path":         stored,
		"mimetype":     f.Mimetype,
	}, store.UpdateSpec{
		Where: []store.Filter{byUser(userID)},
		Messages: store.Messages{
			NotFound:  "Image not found",
			NoChanges: "No changes occurred on image",
			Conflict:  "Unique constraint already exists",
			Failed:    "Something went wrong while updating image",
			Success:   "Image updated successfully",
		},
	})
	if err != nil || !res.Success {
		s.remove(ctx, stored)
	}
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if res.Success {
		s.remove(ctx, current.Data.Path)
	}
	return res
}

func (s *imageService) DeleteUserImage(ctx context.Context, userID string) store.Reply {
	res, err := s.reg.UserImages.Delete(ctx, byUser(userID), store.Selection{}, store.Messages{
		NotFound: "Image for user id: " + userID + " not found",
		Failed:   "Something went wrong while deleting user image",
		Success:  "User image with user id: " + userID + " deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "image.deleteUser", err)
	}
	if res.Success {
		s.remove(ctx, res.Data.Path)
	}
	return res
}

// UploadProductImages stores files for a product. Nothing is stored when
// the product would exceed its image cap or when any file duplicates an
// image of the product.
func (s *imageService) UploadProductImages(ctx context.Context, userID string, productID uint, files []File) store.Reply {
	const op = "image.uploadProduct"
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"productId": productID},
		store.ForeignKey{Field: "productId", Target: s.reg.Products, Message: "Product id not found"})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !fk.Success {
		return fk
	}

	count, err := s.reg.ProductImages.Count(ctx, byProduct(productID))
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if int(count)+len(files) > s.maxProductImages {
		msg := fmt.Sprintf("Max images per product are %d", s.maxProductImages)
		return store.Fail(ctx, s.log, http.StatusBadRequest, msg, msg)
	}

	hashes := make([]any, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		h := f.Hash()
		if seen[h] {
			return store.Fail(ctx, s.log, http.StatusBadRequest,
				"Same file uploaded twice for product "+strconv.FormatUint(uint64(productID), 10),
				"Duplicate images detected")
		}
		seen[h] = true
		hashes = append(hashes, h)
	}
	guard := byProduct(productID).And(store.In("hashed_buffer", hashes...))
	dupes, err := s.reg.ProductImages.GetAll(ctx, guard, store.Selection{}, store.Messages{}, store.PageRequest{})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if dupes.TotalDataCount > 0 {
		return store.Respond(ctx, s.log, false, http.StatusBadRequest,
			"One or more images already exist for this product", "Duplicate images detected", dupes.Data)
	}

	records := make([]domain.ProductImage, 0, len(files))
	for i, f := range files {
		stored, err := s.disk.Save(productDir(productID), f.ext(), f.Data)
		if err != nil {
			for _, r := range records {
				s.remove(ctx, r.Path)
			}
			return store.Internal(ctx, s.log, op, err)
		}
		records = append(records, domain.ProductImage{
			Mimetype:     f.Mimetype,
			FileName:     f.Name,
			Path:         stored,
			HashedBuffer: hashes[i].(string),
			ProductID:    productID,
			UserID:       userID,
		})
	}

	res, err := s.reg.ProductImages.CreateMany(ctx, guard, records, store.Messages{
		NotFound: "Image not found",
		Conflict: "Duplicate images detected",
		Failed:   "Something went wrong while creating images",
		Success:  "Images created successfully",
	})
	if err != nil || !res.Success {
		for _, r := range records {
			s.remove(ctx, r.Path)
		}
	}
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	return res
}

func (s *imageService) ListProductImages(ctx context.Context, productID uint) store.Reply {
	id := strconv.FormatUint(uint64(productID), 10)
	res, err := s.reg.ProductImages.GetAll(ctx, byProduct(productID), store.Selection{}, store.Messages{
		NotFound: "Images with product id: " + id + " not found",
		Success:  "Images with product id: " + id + " found successfully",
	}, store.PageRequest{})
	if err != nil {
		return store.Internal(ctx, s.log, "image.listProduct", err)
	}
	return res
}

func (s *imageService) DeleteProductImages(ctx context.Context, productID uint) store.Reply {
	const op = "image.deleteProduct"
	id := strconv.FormatUint(uint64(productID), 10)
	images, err := s.reg.ProductImages.GetAll(ctx, byProduct(productID), store.Selection{}, store.Messages{
		NotFound: "Product image with product id: " + id + " not found",
	}, store.PageRequest{})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !images.Success {
		return images
	}

	res, err := s.reg.ProductImages.DeleteMany(ctx, byProduct(productID), store.Messages{
		Success: "Images for product id: " + id + " deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	for _, img := range images.Data {
		s.remove(ctx, img.Path)
	}
	return res
}

func (s *imageService) DeleteProductImage(ctx context.Context, productID, imageID uint) store.Reply {
	where := byProduct(productID).And(store.Eq("id", imageID))
	res, err := s.reg.ProductImages.Delete(ctx, where, store.Selection{}, store.Messages{
		NotFound: "Product image not found",
		Failed:   "Something went wrong while deleting product image",
		Success:  "Product image deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "image.deleteProductImage", err)
	}
	if res.Success {
		s.remove(ctx, res.Data.Path)
	}
	return res
}
