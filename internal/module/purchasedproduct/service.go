package purchasedproduct

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// lookupLimit bounds the concurrent product lookups of CreateMany.
const lookupLimit = 8

// Service defines the cart line operations.
type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) store.Reply
	CreateMany(ctx context.Context, userID string, items []Item) store.Reply
	ListByUser(ctx context.Context, userID string, page store.PageRequest) store.Reply
	Get(ctx context.Context, id string) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	UpdateStatus(ctx context.Context, userID string, status domain.OrderStatus) store.Reply
	Delete(ctx context.Context, id string) store.Reply
	SoftDelete(ctx context.Context, id string) store.Reply
	Restore(ctx context.Context, id string) store.Reply
}

type purchasedProductService struct {
	reg   *repository.Registry
	lines *store.Repository[domain.PurchasedProduct]
	log   *slog.Logger
}

// NewService creates a cart line Service over the registry.
func NewService(reg *repository.Registry) Service {
	return &purchasedProductService{
		reg:   reg,
		lines: reg.PurchasedProducts,
		log:   reg.PurchasedProducts.Logger(),
	}
}

var lineSelect = store.Selection{}.With("Product")

// pendingFor matches the live PENDING lines of a user.
func pendingFor(userID string) store.Filter {
	return store.Where(
		store.Eq("user_id", userID),
		store.Eq("status", domain.StatusPending),
		store.Eq("is_deleted", false),
	)
}

func (s *purchasedProductService) checkUser(ctx context.Context, userID string) (store.Reply, error) {
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"userId": userID},
		store.ForeignKey{Field: "userId", Target: s.reg.Users, Message: "User not found"})
	if err != nil || !fk.Success {
		return fk, err
	}
	return nil, nil
}

// product fetches a product that can be put in a cart.
func (s *purchasedProductService) product(ctx context.Context, id uint) (store.Envelope[*domain.Product], error) {
	found, err := s.reg.Products.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "Product not found",
		Success:  "Product found successfully",
	}, s.reg.Products.ByID(id))
	if err != nil || !found.Success {
		return found, err
	}
	if !found.Data.IsAvailable {
		return store.Respond[*domain.Product](ctx, s.log, false, http.StatusBadRequest,
			"Product is not available", "Product is not available", nil), nil
	}
	return found, nil
}

func newLine(userID string, p *domain.Product, qty int) domain.PurchasedProduct {
	return domain.PurchasedProduct{
		UserID:            userID,
		ProductID:         p.ID,
		QuantityPurchased: qty,
		PricePurchased:    p.Price,
		TotalPrice:        p.Price * float64(qty),
		Status:            domain.StatusPending,
	}
}

func (s *purchasedProductService) Create(ctx context.Context, userID string, req CreateRequest) store.Reply {
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.create", err)
	} else if failed != nil {
		return failed
	}

	existing, err := s.lines.GetFirst(ctx, pendingFor(userID).And(store.Eq("product_id", req.ProductID)), lineSelect, store.Messages{
		NotFound: "Purchased product not found",
		Success:  "Purchased product already exists",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.create", err)
	}
	if existing.Success {
		return existing
	}

	p, err := s.product(ctx, req.ProductID)
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.create", err)
	}
	if !p.Success {
		return p
	}

	line := newLine(userID, p.Data, req.QuantityPurchased)
	res, err := s.lines.Create(ctx, &line, lineSelect, store.Messages{
		Failed:  "Something went wrong while creating purchased product",
		Success: "Purchased product created successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.create", err)
	}
	return res
}

func (s *purchasedProductService) CreateMany(ctx context.Context, userID string, items []Item) store.Reply {
	seen := make(map[uint]bool, len(items))
	productIDs := make([]any, 0, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			return store.Fail(ctx, s.log, http.StatusBadRequest,
				"Duplicate product id in purchased product batch", "Each product may appear only once")
		}
		seen[it.ProductID] = true
		productIDs = append(productIDs, it.ProductID)
	}

	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.createMany", err)
	} else if failed != nil {
		return failed
	}

	products := make([]store.Envelope[*domain.Product], len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupLimit)
	for i, it := range items {
		g.Go(func() error {
			p, err := s.product(gctx, it.ProductID)
			products[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.createMany", err)
	}

	var invalid []store.InvalidKey
	for i, p := range products {
		if !p.Success {
			invalid = append(invalid, store.InvalidKey{Key: "items", ResMessage: productMessage(items[i].ProductID, p)})
		}
	}
	if len(invalid) > 0 {
		return store.Respond(ctx, s.log, false, http.StatusBadRequest,
			"Purchased product batch references invalid products", "One or more products are invalid", invalid)
	}

	lines := make([]domain.PurchasedProduct, len(items))
	for i, it := range items {
		lines[i] = newLine(userID, products[i].Data, it.QuantityPurchased)
	}
	res, err := s.lines.CreateMany(ctx, pendingFor(userID).And(store.In("product_id", productIDs...)), lines, store.Messages{
		NotFound: "Purchased product not found",
		Conflict: "Purchased products already exist for user id: " + userID,
		Failed:   "Something went wrong while creating many purchased products",
		Success:  "Purchased products created successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.createMany", err)
	}
	return res
}

func productMessage(id uint, p store.Envelope[*domain.Product]) string {
	if p.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("Product with id: %d not found", id)
	}
	return fmt.Sprintf("Product with id: %d: %s", id, p.Message)
}

func (s *purchasedProductService) ListByUser(ctx context.Context, userID string, page store.PageRequest) store.Reply {
	res, err := s.lines.GetAll(ctx, store.Where(store.Eq("user_id", userID)), lineSelect, store.Messages{
		NotFound: "Purchased product with user id: " + userID + " not found",
		Success:  "Purchased product list with user id: " + userID + " found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.listByUser", err)
	}
	return res
}

func (s *purchasedProductService) Get(ctx context.Context, id string) store.Reply {
	res, err := s.lines.GetByConstraint(ctx, lineSelect, store.Messages{
		NotFound: "Purchased product with id: " + id + " not found",
		Success:  "Purchased product with id: " + id + " found successfully",
	}, s.lines.ByID(id))
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.get", err)
	}
	return res
}

func (s *purchasedProductService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	where := store.Where(
		store.Eq("user_id", q.UserID),
		store.Eq("product_id", q.ProductID),
		store.Eq("order_id", q.OrderID),
		store.Eq("status", q.Status),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.lines.GetAll(ctx, where, lineSelect, store.Messages{
		NotFound: "Purchased product list not found",
		Success:  "Purchased product list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.list", err)
	}
	return res
}

// UpdateStatus moves every open line of the user to status. Cancelling
// returns the units of checked-out lines to stock.
func (s *purchasedProductService) UpdateStatus(ctx context.Context, userID string, status domain.OrderStatus) store.Reply {
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.updateStatus", err)
	} else if failed != nil {
		return failed
	}

	byUser := store.Where(store.Eq("user_id", userID))
	if status == domain.StatusCancelled {
		var out Cancellation
		err := s.reg.Transaction(ctx, func(tx *repository.Registry) error {
			var err error
			out, err = Cancel(ctx, tx, byUser)
			return err
		})
		if err != nil {
			return store.Internal(ctx, s.log, "purchasedProduct.updateStatus", err)
		}
		if len(out.CancelledPurchasedProducts) == 0 {
			return store.Fail(ctx, s.log, http.StatusNotFound, "No open purchased products for user "+userID, "Purchased products not found")
		}
		const msg = "Purchased products cancelled and stock restored successfully"
		return store.Respond(ctx, s.log, true, http.StatusOK, msg, msg, out)
	}

	res, err := s.lines.UpdateMany(ctx, openLines(byUser), store.Patch{"status": status}, store.Messages{
		NotFound: "Purchased products not found",
		Success:  "Purchased product status updated successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.updateStatus", err)
	}
	return res
}

func (s *purchasedProductService) Delete(ctx context.Context, id string) store.Reply {
	res, err := s.lines.Delete(ctx, s.lines.ByID(id), lineSelect, store.Messages{
		NotFound: "Purchased product not found",
		Failed:   "Something went wrong while deleting purchased product",
		Success:  "Purchased product permanently deleted successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.delete", err)
	}
	return res
}

var updateMsgs = store.Messages{
	NotFound:  "Purchased product not found",
	NoChanges: "No changes occurred on purchased product",
	Conflict:  "Unique constraint already exists",
}

func (s *purchasedProductService) SoftDelete(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while deleting purchased product"
	msgs.Success = "Purchased product deleted successfully"
	res, err := s.lines.SoftDelete(ctx, s.lines.ByID(id), lineSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.softDelete", err)
	}
	return res
}

func (s *purchasedProductService) Restore(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while restoring purchased product"
	msgs.Success = "Purchased product restored successfully"
	res, err := s.lines.Restore(ctx, s.lines.ByID(id), lineSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "purchasedProduct.restore", err)
	}
	return res
}
