package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/purchasedproduct"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// Service defines the order operations.
type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) store.Reply
	Get(ctx context.Context, id string) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	ListByUser(ctx context.Context, userID string, page store.PageRequest) store.Reply
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) store.Reply
	SoftDelete(ctx context.Context, id string) store.Reply
	Restore(ctx context.Context, id string) store.Reply
}

// CancelResult is the payload of an order cancellation.
type CancelResult struct {
	UpdatedOrder             *domain.Order                 `json:"updatedOrder"`
	UpdatedPurchasedProducts purchasedproduct.Cancellation `json:"updatedPurchasedProducts"`
}

// shortageError aborts a checkout whose cart exceeds product stock.
type shortageError struct {
	shortages []purchasedproduct.Shortage
}

func (e *shortageError) Error() string {
	return fmt.Sprintf("order: %d products lack stock", len(e.shortages))
}

// errAborted rolls back a transaction whose outcome is already an envelope.
var errAborted = errors.New("order: transaction aborted")

var orderSelect = store.Selection{}.With("PurchasedProducts.Product")

type orderService struct {
	reg    *repository.Registry
	orders *store.Repository[domain.Order]
	log    *slog.Logger
}

// NewService creates an order Service over the registry.
func NewService(reg *repository.Registry) Service {
	return &orderService{
		reg:    reg,
		orders: reg.Orders,
		log:    reg.Orders.Logger(),
	}
}

func (s *orderService) checkUser(ctx context.Context, userID any) (store.Reply, error) {
	fk, err := store.CheckForeignKeys(ctx, s.log, map[string]any{"userId": userID},
		store.ForeignKey{Field: "userId", Target: s.reg.Users, Message: "User not found"})
	if err != nil || !fk.Success {
		return fk, err
	}
	return nil, nil
}

// cartOf matches the lines of a user that are not checked out yet.
func cartOf(userID string) store.Filter {
	return store.Where(
		store.Eq("user_id", userID),
		store.Eq("status", domain.StatusPending),
		store.Eq("is_deleted", false),
		store.IsNull("order_id"),
	)
}

// Create checks out the cart of userID. An open PENDING order is returned
// unchanged. Otherwise the stock of every product is reserved, the order is
// created and the cart lines are attached to it in one transaction.
func (s *orderService) Create(ctx context.Context, userID string, req CreateRequest) store.Reply {
	const op = "order.create"
	if failed, err := s.checkUser(ctx, userID); err != nil {
		return store.Internal(ctx, s.log, op, err)
	} else if failed != nil {
		return failed
	}

	pending := store.Where(
		store.Eq("user_id", userID),
		store.Eq("status", domain.StatusPending),
		store.Eq("is_deleted", false),
	)
	existing, err := s.orders.GetFirst(ctx, pending, orderSelect, store.Messages{
		NotFound: "Order not found",
		Success:  "Order already exists",
	})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if existing.Success {
		return existing
	}

	address, err := s.reg.Addresses.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "Shipping address not found",
		Success:  "Shipping address found successfully",
	}, store.Where(store.Eq("user_id", userID)))
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !address.Success {
		return address
	}

	cart := cartOf(userID)
	lines, err := s.reg.PurchasedProducts.GetAll(ctx, cart, store.Selection{}, store.Messages{
		NotFound: "Purchased products not found",
		Success:  "Purchased products found successfully",
	}, store.PageRequest{})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !lines.Success {
		return lines
	}
	total, err := s.reg.PurchasedProducts.Sum(ctx, "total_price", cart)
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}

	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCashOnDelivery
	}

	var created store.Envelope[*domain.Order]
	err = s.reg.Transaction(ctx, func(tx *repository.Registry) error {
		deltas := purchasedproduct.Units(lines.Data)
		for id, n := range deltas {
			deltas[id] = -n
		}
		_, shortages, err := purchasedproduct.AdjustStock(ctx, tx, deltas)
		if err != nil {
			return err
		}
		if len(shortages) > 0 {
			return &shortageError{shortages: shortages}
		}

		created, err = tx.Orders.Create(ctx, &domain.Order{
			UserID:            userID,
			Status:            domain.StatusPending,
			PaymentMethod:     method,
			ShippingAddressID: address.Data.ID,
			TotalAmount:       total,
		}, store.Selection{}, store.Messages{
			Failed:  "Something went wrong while creating order",
			Success: "Order created successfully",
		})
		if err != nil {
			return err
		}
		if !created.Success {
			return errAborted
		}

		ids := make([]any, 0, len(lines.Data))
		for _, l := range lines.Data {
			ids = append(ids, l.ID)
		}
		attached, err := tx.PurchasedProducts.UpdateMany(ctx,
			cart.And(store.In("id", ids...)),
			store.Patch{"order_id": created.Data.ID},
			store.Messages{NotFound: "Purchased products not found"})
		if err != nil {
			return err
		}
		if attached.Data.Count != int64(len(ids)) {
			return fmt.Errorf("order: attached %d of %d purchased products", attached.Data.Count, len(ids))
		}
		return nil
	})

	var short *shortageError
	switch {
	case errors.As(err, &short):
		return store.Respond(ctx, s.log, false, http.StatusBadRequest,
			"Checkout of user "+userID+" exceeds product stock",
			"Insufficient stock for one or more products", short.shortages)
	case errors.Is(err, errAborted):
		return created
	case err != nil:
		return store.Internal(ctx, s.log, op, err)
	}

	res, err := s.fetch(ctx, created.Data.ID, "Order created successfully")
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	return res
}

func (s *orderService) fetch(ctx context.Context, id, success string) (store.Envelope[*domain.Order], error) {
	return s.orders.GetByConstraint(ctx, orderSelect, store.Messages{
		NotFound: "Order with id: " + id + " not found",
		Success:  success,
	}, s.orders.ByID(id))
}

func (s *orderService) Get(ctx context.Context, id string) store.Reply {
	res, err := s.fetch(ctx, id, "Order with id: "+id+" found successfully")
	if err != nil {
		return store.Internal(ctx, s.log, "order.get", err)
	}
	return res
}

func (s *orderService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	const op = "order.list"
	if failed, err := s.checkUser(ctx, q.UserID); err != nil {
		return store.Internal(ctx, s.log, op, err)
	} else if failed != nil {
		return failed
	}

	where := store.Where(
		store.Eq("user_id", q.UserID),
		store.Eq("status", q.Status),
		store.Eq("payment_method", q.PaymentMethod),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.orders.GetAll(ctx, where, orderSelect, store.Messages{
		NotFound: "Order not found",
		Success:  "Order list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	return res
}

func (s *orderService) ListByUser(ctx context.Context, userID string, page store.PageRequest) store.Reply {
	res, err := s.orders.GetAll(ctx, store.Where(store.Eq("user_id", userID)), orderSelect, store.Messages{
		NotFound: "Order with user id: " + userID + " not found",
		Success:  "Order list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "order.listByUser", err)
	}
	return res
}

// UpdateStatus moves the order and its lines to status. Cancelling returns
// the reserved units to stock. Cancelled orders are final and shipped ones
// can no longer be cancelled.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) store.Reply {
	const op = "order.updateStatus"
	current, err := s.fetch(ctx, id, "Order found successfully")
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !current.Success {
		return current
	}
	switch from := current.Data.Status; {
	case from == domain.StatusCancelled && status != domain.StatusCancelled:
		return store.Fail(ctx, s.log, http.StatusBadRequest,
			"Order "+id+" is cancelled", "Cancelled orders cannot change status")
	case status == domain.StatusCancelled && (from == domain.StatusShipped || from == domain.StatusDelivered):
		return store.Fail(ctx, s.log, http.StatusBadRequest,
			"Order "+id+" is "+string(from), "Shipped orders cannot be cancelled")
	}

	var (
		updated   store.Envelope[*domain.Order]
		cancelled purchasedproduct.Cancellation
	)
	err = s.reg.Transaction(ctx, func(tx *repository.Registry) error {
		var err error
		updated, err = tx.Orders.Update(ctx, store.Patch{"status": status}, store.UpdateSpec{
			Where: []store.Filter{tx.Orders.ByID(id)},
			Messages: store.Messages{
				NotFound:  "Order with id: " + id + " not found",
				NoChanges: "No changes occurred on order",
				Conflict:  "Unique constraint already exists",
				Failed:    "Something went wrong while updating order",
				Success:   "Order status updated successfully",
			},
		})
		if err != nil {
			return err
		}
		if !updated.Success {
			return nil
		}

		lines := store.Where(store.Eq("order_id", id))
		if status == domain.StatusCancelled {
			cancelled, err = purchasedproduct.Cancel(ctx, tx, lines)
			return err
		}
		_, err = tx.PurchasedProducts.UpdateMany(ctx,
			lines.And(store.Not("status", domain.StatusCancelled), store.Eq("is_deleted", false)),
			store.Patch{"status": status},
			store.Messages{NotFound: "Purchased products not found"})
		return err
	})
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	if !updated.Success {
		return updated
	}

	if status != domain.StatusCancelled {
		res, err := s.fetch(ctx, id, "Order status updated successfully")
		if err != nil {
			return store.Internal(ctx, s.log, op, err)
		}
		return res
	}

	order, err := s.fetch(ctx, id, "Order cancelled successfully")
	if err != nil {
		return store.Internal(ctx, s.log, op, err)
	}
	const msg = "Order cancelled and stock restored successfully"
	return store.Respond(ctx, s.log, true, http.StatusOK, msg, msg, CancelResult{
		UpdatedOrder:             order.Data,
		UpdatedPurchasedProducts: cancelled,
	})
}

var updateMsgs = store.Messages{
	NotFound:  "Order not found",
	NoChanges: "No changes occurred on order",
	Conflict:  "Unique constraint already exists",
}

func (s *orderService) SoftDelete(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while deleting order"
	msgs.Success = "Order deleted successfully"
	res, err := s.orders.SoftDelete(ctx, s.orders.ByID(id), orderSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "order.softDelete", err)
	}
	return res
}

func (s *orderService) Restore(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs
	msgs.Failed = "Something went wrong while restoring order"
	msgs.Success = "Order restored successfully"
	res, err := s.orders.Restore(ctx, s.orders.ByID(id), orderSelect, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "order.restore", err)
	}
	return res
}
