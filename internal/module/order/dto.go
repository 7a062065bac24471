package order

import "github.com/simp-lee/shopbase/internal/domain"

// CreateRequest checks out a cart. UserID is honoured for admins only.
type CreateRequest struct {
	UserID        string               `json:"userId" binding:"omitempty,uuid"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH_ON_DELIVERY CARD"`
}

// UpdateStatusRequest moves an order and its lines to Status.
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// ListQuery filters the order list.
type ListQuery struct {
	UserID        *string `form:"userId" binding:"omitempty,uuid"`
	Status        *string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	PaymentMethod *string `form:"paymentMethod" binding:"omitempty,oneof=CASH_ON_DELIVERY CARD"`
	IsDeleted     *bool   `form:"isDeleted"`
}
