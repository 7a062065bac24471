package product

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// Service defines the product operations.
type Service interface {
	Create(ctx context.Context, req CreateRequest) store.Reply
	Get(ctx context.Context, id uint) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	Update(ctx context.Context, id uint, req UpdateRequest) store.Reply
	ChangeStock(ctx context.Context, id uint, req ChangeStockRequest) store.Reply
	Delete(ctx context.Context, id uint) store.Reply
	SoftDelete(ctx context.Context, id uint) store.Reply
	Restore(ctx context.Context, id uint) store.Reply
}

var productSelect = store.Selection{}.With("Images")

// StockShortage is the payload of a rejected stock change.
type StockShortage struct {
	StockQuantityAvailable int `json:"stockQuantityAvailable"`
}

type productService struct {
	products   *store.Repository[domain.Product]
	categories *store.Repository[domain.Category]
	log        *slog.Logger
}

// NewService creates a product Service over the registry.
func NewService(reg *repository.Registry) Service {
	return &productService{
		products:   reg.Products,
		categories: reg.Categories,
		log:        reg.Products.Logger(),
	}
}

func (s *productService) categoryKey() store.ForeignKey {
	return store.ForeignKey{Field: "categoryId", Target: s.categories, Message: "Category not found"}
}

func (s *productService) Create(ctx context.Context, req CreateRequest) store.Reply {
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"categoryId": req.CategoryID}, s.categoryKey())
	if err != nil {
		return store.Internal(ctx, s.log, "product.create", err)
	}
	if !fk.Success {
		return fk
	}

	name := strings.TrimSpace(req.Name)
	existing, err := s.products.GetByConstraint(ctx, productSelect, store.Messages{
		NotFound: "Product not found",
		Success:  "Name already exists",
	}, store.Where(store.Eq("name", name)))
	if err != nil {
		return store.Internal(ctx, s.log, "product.create", err)
	}
	if existing.Success {
		return existing
	}

	p := &domain.Product{
		Name:          name,
		SKU:           req.SKU,
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: *req.StockQuantity,
		IsAvailable:   *req.IsAvailable,
	}
	if p.SKU == "" {
		p.SKU = newSKU()
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}

	res, err := s.products.Create(ctx, p, productSelect, store.Messages{
		Failed:  "Something went wrong while creating product",
		Success: "Product created successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "product.create", err)
	}
	return res
}

func newSKU() string {
	return "SKU-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func (s *productService) Get(ctx context.Context, id uint) store.Reply {
	res, err := s.products.GetByConstraint(ctx, productSelect, store.Messages{
		NotFound: "Product not found",
		Success:  "Product found successfully",
	}, s.products.ByID(id))
	if err != nil {
		return store.Internal(ctx, s.log, "product.get", err)
	}
	return res
}

func (s *productService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	where := store.Where(
		store.Contains("name", q.Name),
		store.Range("price", q.MinPrice, q.MaxPrice),
		store.Related("category_id", "categories", store.Contains("name", q.CategoryName)),
		store.Eq("category_id", q.CategoryID),
		store.Eq("is_available", q.IsAvailable),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.products.GetAll(ctx, where, productSelect, store.Messages{
		NotFound: "Products not found",
		Success:  "Product list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "product.list", err)
	}
	return res
}

var updateMsgs = store.Messages{
	NotFound:  "Product not found",
	NoChanges: "No changes occurred on product",
	Conflict:  "Name already exists",
	Failed:    "Something went wrong while updating product",
	Success:   "Product updated successfully",
}

func (s *productService) Update(ctx context.Context, id uint, req UpdateRequest) store.Reply {
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"categoryId": req.CategoryID}, s.categoryKey())
	if err != nil {
		return store.Internal(ctx, s.log, "product.update", err)
	}
	if !fk.Success {
		return fk
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	patch := store.Patch{
		"name":           req.Name,
		"sku":            req.SKU,
		"category_id":    req.CategoryID,
		"description":    req.Description,
		"price":          req.Price,
		"cost_price":     req.CostPrice,
		"stock_quantity": req.StockQuantity,
		"is_available":   req.IsAvailable,
	}
	res, err := s.products.Update(ctx, patch, store.UpdateSpec{
		Where:    []store.Filter{s.products.ByID(id)},
		Unique:   []store.Filter{store.Where(store.Eq("name", req.Name))},
		Select:   productSelect,
		Messages: updateMsgs,
	})
	if err != nil {
		return store.Internal(ctx, s.log, "product.update", err)
	}
	return res
}

// ChangeStock removes the requested quantity from stock. Running out marks
// the product unavailable.
func (s *productService) ChangeStock(ctx context.Context, id uint, req ChangeStockRequest) store.Reply {
	found, err := s.products.GetByConstraint(ctx, productSelect, store.Messages{
		NotFound: "Product not found",
		Success:  "Product found successfully",
	}, s.products.ByID(id))
	if err != nil {
		return store.Internal(ctx, s.log, "product.changeStock", err)
	}
	if !found.Success {
		return found
	}

	current := found.Data
	if *req.StockQuantity > current.StockQuantity {
		const msg = "Stock quantity provided exceeds availability"
		return store.Respond(ctx, s.log, false, http.StatusBadRequest, msg, msg,
			StockShortage{StockQuantityAvailable: current.StockQuantity})
	}

	remaining := current.StockQuantity - *req.StockQuantity
	patch := store.Patch{"stock_quantity": remaining}
	if remaining == 0 {
		patch["is_available"] = false
	}

	msgs := updateMsgs
	msgs.Failed = "Something went wrong while updating product stock quantity"
	msgs.Success = "Product stock quantity updated successfully"
	res, err := s.products.Update(ctx, patch, store.UpdateSpec{
		Where:    []store.Filter{s.products.ByID(id)},
		Select:   productSelect,
		Messages: msgs,
	})
	if err != nil {
		return store.Internal(ctx, s.log, "product.changeStock", err)
	}
	return res
}

func (s *productService) Delete(ctx context.Context, id uint) store.Reply {
	res, err := s.products.Delete(ctx, s.products.ByID(id), productSelect, store.Messages{
		NotFound: "Product not found",
		Failed:   "Something went wrong while deleting product",
		Success:  "Product permanently deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "product.delete", err)
	}
	return res
}

func (s *productService) SoftDelete(ctx context.Context, id uint) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while soft deleting product"
	msgs.Success = "Product deleted successfully"
	res, err := s.products.SoftDelete(ctx, s.products.ByID(id), productSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "product.softDelete", err)
	}
	return res
}

func (s *productService) Restore(ctx context.Context, id uint) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while restoring product"
	msgs.Success = "Product restored successfully"
	res, err := s.products.Restore(ctx, s.products.ByID(id), productSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "product.restore", err)
	}
	return res
}
