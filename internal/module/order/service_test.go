package order

import (
	"context"
	"net/http"
	"testing"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/purchasedproduct"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/repository/repotest"
	"github.com/simp-lee/shopbase/internal/store"
)

const missingUser = "00000000-0000-0000-0000-000000000000"

func ptr[T any](v T) *T { return &v }

type fixture struct {
	reg          *repository.Registry
	user         *domain.User
	address      *domain.Address
	lamp, kettle *domain.Product
}

// newFixture seeds a user with an address and two products: a lamp with
// five units and a kettle with one.
func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{reg: repotest.New(t)}
	f.user = &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PasswordHash: "x", Role: domain.RoleUser}
	repotest.Seed(t, f.reg, f.user)
	f.address = &domain.Address{UserID: f.user.ID, Address1: "12 St James's Square", City: "London", State: "London", Country: "UK", PostalCode: "SW1Y 4JH"}
	repotest.Seed(t, f.reg, f.address)

	home := &domain.Category{Name: "Home"}
	repotest.Seed(t, f.reg, home)
	f.lamp = &domain.Product{Name: "Lamp", SKU: "SKU-LAMP", CategoryID: home.ID, Price: 10, StockQuantity: 5, IsAvailable: true}
	f.kettle = &domain.Product{Name: "Kettle", SKU: "SKU-KETTLE", CategoryID: home.ID, Price: 25.5, StockQuantity: 1, IsAvailable: true}
	repotest.Seed(t, f.reg, f.lamp, f.kettle)
	return f
}

func (f fixture) addToCart(t *testing.T, userID string, p *domain.Product, qty int) {
	t.Helper()
	repotest.Seed(t, f.reg, &domain.PurchasedProduct{
		UserID:            userID,
		ProductID:         p.ID,
		QuantityPurchased: qty,
		PricePurchased:    p.Price,
		TotalPrice:        p.Price * float64(qty),
		Status:            domain.StatusPending,
	})
}

func (f fixture) product(t *testing.T, id uint) domain.Product {
	t.Helper()
	var p domain.Product
	if err := f.reg.DB().First(&p, id).Error; err != nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return p
}

func (f fixture) checkout(t *testing.T, svc Service) *domain.Order {
	t.Helper()
	res := svc.Create(context.Background(), f.user.ID, CreateRequest{})
	if !res.OK() {
		t.Fatalf("Create() = %d/%q", res.Status(), res.Msg())
	}
	return res.Payload().(*domain.Order)
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 2)
	f.addToCart(t, f.user.ID, f.kettle, 1)

	res := svc.Create(ctx, f.user.ID, CreateRequest{PaymentMethod: domain.PaymentCard})
	if !res.OK() || res.Msg() != "Order created successfully" {
		t.Fatalf("Create() = %d/%q", res.Status(), res.Msg())
	}
	order := res.Payload().(*domain.Order)
	if order.TotalAmount != 45.5 || order.PaymentMethod != domain.PaymentCard || order.Status != domain.StatusPending {
		t.Errorf("order = %+v", order)
	}
	if order.ShippingAddressID != f.address.ID {
		t.Errorf("ShippingAddressID = %q, want %q", order.ShippingAddressID, f.address.ID)
	}
	if len(order.PurchasedProducts) != 2 {
		t.Fatalf("PurchasedProducts = %d, want 2", len(order.PurchasedProducts))
	}
	for _, line := range order.PurchasedProducts {
		if line.OrderID == nil || *line.OrderID != order.ID || line.Product == nil {
			t.Errorf("line = %+v, want attached with product", line)
		}
	}

	if lamp := f.product(t, f.lamp.ID); lamp.StockQuantity != 3 || !lamp.IsAvailable {
		t.Errorf("lamp = %d/%v, want 3 available", lamp.StockQuantity, lamp.IsAvailable)
	}
	if kettle := f.product(t, f.kettle.ID); kettle.StockQuantity != 0 || kettle.IsAvailable {
		t.Errorf("kettle = %d/%v, want sold out", kettle.StockQuantity, kettle.IsAvailable)
	}

	again := svc.Create(ctx, f.user.ID, CreateRequest{})
	if !again.OK() || again.Msg() != "Order already exists" {
		t.Errorf("second Create() = %d/%q, want existing order", again.Status(), again.Msg())
	}
	if got := again.Payload().(*domain.Order).ID; got != order.ID {
		t.Errorf("existing order id = %q, want %q", got, order.ID)
	}
}

func TestService_Create_Failures(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()

	homeless := &domain.User{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", PasswordHash: "x", Role: domain.RoleUser}
	repotest.Seed(t, f.reg, homeless)
	f.addToCart(t, homeless.ID, f.lamp, 1)

	tests := []struct {
		name       string
		userID     string
		wantStatus int
		wantMsg    string
	}{
		{"unknown user", missingUser, http.StatusBadRequest, "One or more foreign keys are invalid"},
		{"no address", homeless.ID, http.StatusNotFound, "Shipping address not found"},
		{"empty cart", f.user.ID, http.StatusNotFound, "Purchased products not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Create(ctx, tt.userID, CreateRequest{})
			if got.Status() != tt.wantStatus || got.Msg() != tt.wantMsg {
				t.Errorf("Create() = %d/%q, want %d/%q", got.Status(), got.Msg(), tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestService_Create_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 2)
	f.addToCart(t, f.user.ID, f.kettle, 3)

	res := svc.Create(ctx, f.user.ID, CreateRequest{})
	if res.Status() != http.StatusBadRequest || res.Msg() != "Insufficient stock for one or more products" {
		t.Fatalf("Create() = %d/%q", res.Status(), res.Msg())
	}
	shortages := res.Payload().([]purchasedproduct.Shortage)
	want := purchasedproduct.Shortage{ProductID: f.kettle.ID, StockQuantityAvailable: 1, QuantityRequested: 3}
	if len(shortages) != 1 || shortages[0] != want {
		t.Errorf("shortages = %+v, want [%+v]", shortages, want)
	}

	if n, _ := f.reg.Orders.Count(ctx, store.Where()); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
	if got := f.product(t, f.lamp.ID).StockQuantity; got != 5 {
		t.Errorf("lamp stock = %d, want untouched 5", got)
	}
	if cart, _ := f.reg.PurchasedProducts.Count(ctx, store.Where(store.IsNull("order_id"))); cart != 2 {
		t.Errorf("unattached lines = %d, want 2", cart)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 2)
	f.addToCart(t, f.user.ID, f.kettle, 1)
	order := f.checkout(t, svc)

	confirmed := svc.UpdateStatus(ctx, order.ID, domain.StatusConfirmed)
	if !confirmed.OK() {
		t.Fatalf("confirm = %d/%q", confirmed.Status(), confirmed.Msg())
	}
	for _, line := range confirmed.Payload().(*domain.Order).PurchasedProducts {
		if line.Status != domain.StatusConfirmed {
			t.Errorf("line status = %s, want CONFIRMED", line.Status)
		}
	}

	if same := svc.UpdateStatus(ctx, order.ID, domain.StatusConfirmed); same.Status() != http.StatusCreated {
		t.Errorf("same status = %d/%q, want 201", same.Status(), same.Msg())
	}

	cancelled := svc.UpdateStatus(ctx, order.ID, domain.StatusCancelled)
	if !cancelled.OK() || cancelled.Msg() != "Order cancelled and stock restored successfully" {
		t.Fatalf("cancel = %d/%q", cancelled.Status(), cancelled.Msg())
	}
	out := cancelled.Payload().(CancelResult)
	if out.UpdatedOrder.Status != domain.StatusCancelled ||
		len(out.UpdatedPurchasedProducts.CancelledPurchasedProducts) != 2 ||
		len(out.UpdatedPurchasedProducts.UpdatedProducts) != 2 {
		t.Errorf("cancel result = %+v", out)
	}
	if lamp := f.product(t, f.lamp.ID); lamp.StockQuantity != 5 {
		t.Errorf("lamp stock = %d, want 5", lamp.StockQuantity)
	}
	if kettle := f.product(t, f.kettle.ID); kettle.StockQuantity != 1 || !kettle.IsAvailable {
		t.Errorf("kettle = %d/%v, want restocked", kettle.StockQuantity, kettle.IsAvailable)
	}

	final := svc.UpdateStatus(ctx, order.ID, domain.StatusConfirmed)
	if final.Status() != http.StatusBadRequest || final.Msg() != "Cancelled orders cannot change status" {
		t.Errorf("reopen = %d/%q", final.Status(), final.Msg())
	}
	if missing := svc.UpdateStatus(ctx, missingUser, domain.StatusConfirmed); missing.Status() != http.StatusNotFound {
		t.Errorf("missing order = %d, want 404", missing.Status())
	}
}

func TestService_UpdateStatus_ShippedCannotBeCancelled(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 1)
	order := f.checkout(t, svc)

	if res := svc.UpdateStatus(ctx, order.ID, domain.StatusShipped); !res.OK() {
		t.Fatalf("ship = %d/%q", res.Status(), res.Msg())
	}
	res := svc.UpdateStatus(ctx, order.ID, domain.StatusCancelled)
	if res.Status() != http.StatusBadRequest || res.Msg() != "Shipped orders cannot be cancelled" {
		t.Errorf("cancel shipped = %d/%q", res.Status(), res.Msg())
	}
	if got := f.product(t, f.lamp.ID).StockQuantity; got != 4 {
		t.Errorf("lamp stock = %d, want 4", got)
	}
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 1)
	f.checkout(t, svc)

	tests := []struct {
		name       string
		q          ListQuery
		wantStatus int
		wantCount  int
	}{
		{"all", ListQuery{}, http.StatusOK, 1},
		{"by user", ListQuery{UserID: ptr(f.user.ID), Status: ptr("PENDING")}, http.StatusOK, 1},
		{"unknown user", ListQuery{UserID: ptr(missingUser)}, http.StatusBadRequest, 0},
		{"other status", ListQuery{Status: ptr("DELIVERED")}, http.StatusNotFound, 0},
		{"by payment method", ListQuery{PaymentMethod: ptr("CASH_ON_DELIVERY")}, http.StatusOK, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.List(ctx, tt.q, store.PageRequest{})
			if got.Status() != tt.wantStatus {
				t.Fatalf("List() = %d/%q, want %d", got.Status(), got.Msg(), tt.wantStatus)
			}
			if orders, ok := got.Payload().([]domain.Order); ok && len(orders) != tt.wantCount {
				t.Errorf("orders = %d, want %d", len(orders), tt.wantCount)
			}
		})
	}

	mine := svc.ListByUser(ctx, f.user.ID, store.PageRequest{Limit: 10, Page: 1})
	if !mine.OK() {
		t.Errorf("ListByUser() = %d/%q", mine.Status(), mine.Msg())
	}
}

func TestService_SoftDeleteRestore(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.reg)
	ctx := context.Background()
	f.addToCart(t, f.user.ID, f.lamp, 1)
	id := f.checkout(t, svc).ID

	steps := []struct {
		name       string
		run        func() store.Reply
		wantStatus int
	}{
		{"soft delete", func() store.Reply { return svc.SoftDelete(ctx, id) }, http.StatusOK},
		{"soft delete again", func() store.Reply { return svc.SoftDelete(ctx, id) }, http.StatusCreated},
		{"get deleted", func() store.Reply { return svc.Get(ctx, id) }, http.StatusForbidden},
		{"status of deleted", func() store.Reply { return svc.UpdateStatus(ctx, id, domain.StatusConfirmed) }, http.StatusForbidden},
		{"restore", func() store.Reply { return svc.Restore(ctx, id) }, http.StatusOK},
		{"get", func() store.Reply { return svc.Get(ctx, id) }, http.StatusOK},
	}

	for _, step := range steps {
		if res := step.run(); res.Status() != step.wantStatus {
			t.Fatalf("%s = %d/%q, want %d", step.name, res.Status(), res.Msg(), step.wantStatus)
		}
	}
}
