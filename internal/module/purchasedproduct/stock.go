package purchasedproduct

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// Shortage reports a product that cannot cover a stock reservation.
type Shortage struct {
	ProductID              uint `json:"productId"`
	StockQuantityAvailable int  `json:"stockQuantityAvailable"`
	QuantityRequested      int  `json:"quantityRequested"`
}

// Cancellation is the payload of a bulk cancel.
type Cancellation struct {
	CancelledPurchasedProducts []domain.PurchasedProduct `json:"cancelledPurchasedProducts"`
	UpdatedProducts            []domain.Product          `json:"updatedProducts"`
}

var stockMsgs = store.Messages{
	NotFound:  "Product not found",
	Success:   "Product stock updated successfully",
	NoChanges: "No stock changes detected",
	Conflict:  "Product already exists",
	Failed:    "Failed to update product stock",
}

// Units sums the quantities of lines per product.
func Units(lines []domain.PurchasedProduct) map[uint]int {
	units := make(map[uint]int, len(lines))
	for _, l := range lines {
		units[l.ProductID] += l.QuantityPurchased
	}
	return units
}

// AdjustStock adds delta to the stock of each product. Nothing is written
// when a negative delta exceeds the stock or hits a missing or deleted
// product; those products are returned as shortages instead. Products
// missing on a positive delta are skipped. Run it inside
// Registry.Transaction.
func AdjustStock(ctx context.Context, tx *repository.Registry, deltas map[uint]int) ([]domain.Product, []Shortage, error) {
	type change struct {
		product *domain.Product
		next    int
	}
	var (
		changes   []change
		shortages []Shortage
	)
	for _, id := range slices.Sorted(maps.Keys(deltas)) {
		delta := deltas[id]
		if delta == 0 {
			continue
		}
		found, err := tx.Products.GetByConstraint(ctx, store.Selection{}, stockMsgs, tx.Products.ByID(id))
		if err != nil {
			return nil, nil, err
		}
		if !found.Success {
			if delta < 0 {
				shortages = append(shortages, Shortage{ProductID: id, QuantityRequested: -delta})
			}
			continue
		}
		next := found.Data.StockQuantity + delta
		if next < 0 {
			shortages = append(shortages, Shortage{
				ProductID:              id,
				StockQuantityAvailable: found.Data.StockQuantity,
				QuantityRequested:      -delta,
			})
			continue
		}
		changes = append(changes, change{product: found.Data, next: next})
	}
	if len(shortages) > 0 {
		return nil, shortages, nil
	}

	updated := make([]domain.Product, 0, len(changes))
	for _, c := range changes {
		patch := store.Patch{"stock_quantity": c.next}
		switch {
		case c.next == 0:
			patch["is_available"] = false
		case c.product.StockQuantity == 0:
			patch["is_available"] = true
		}
		res, err := tx.Products.Update(ctx, patch, store.UpdateSpec{
			Where:    []store.Filter{tx.Products.ByID(c.product.ID)},
			Messages: stockMsgs,
		})
		if err != nil {
			return nil, nil, err
		}
		if !res.Success {
			return nil, nil, fmt.Errorf("adjust stock of product %d: %s", c.product.ID, res.Message)
		}
		updated = append(updated, *res.Data)
	}
	return updated, nil, nil
}

// openLines matches the lines a status change may still touch.
func openLines(where store.Filter) store.Filter {
	return where.And(
		store.NotIn("status", domain.StatusShipped, domain.StatusDelivered, domain.StatusCancelled),
		store.Eq("is_deleted", false),
	)
}

// Cancel marks the open lines matching where CANCELLED and returns the
// units of checked-out lines to stock. Run it inside Registry.Transaction.
func Cancel(ctx context.Context, tx *repository.Registry, where store.Filter) (Cancellation, error) {
	lines, err := tx.PurchasedProducts.GetAll(ctx, openLines(where), store.Selection{}, store.Messages{}, store.PageRequest{})
	if err != nil {
		return Cancellation{}, err
	}
	out := Cancellation{CancelledPurchasedProducts: lines.Data, UpdatedProducts: []domain.Product{}}
	if len(lines.Data) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(lines.Data))
	var checkedOut []domain.PurchasedProduct
	for i := range lines.Data {
		ids = append(ids, lines.Data[i].ID)
		if lines.Data[i].OrderID != nil {
			checkedOut = append(checkedOut, lines.Data[i])
		}
		lines.Data[i].Status = domain.StatusCancelled
	}
	res, err := tx.PurchasedProducts.UpdateMany(ctx, store.Where(store.In("id", ids...)),
		store.Patch{"status": domain.StatusCancelled}, store.Messages{NotFound: "Purchased products not found"})
	if err != nil {
		return Cancellation{}, err
	}
	if !res.Success {
		return Cancellation{}, fmt.Errorf("cancel purchased products: %s", res.Message)
	}

	restocked, _, err := AdjustStock(ctx, tx, Units(checkedOut))
	if err != nil {
		return Cancellation{}, err
	}
	out.UpdatedProducts = append(out.UpdatedProducts, restocked...)
	return out, nil
}
