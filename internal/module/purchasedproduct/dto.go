package purchasedproduct

import "github.com/simp-lee/shopbase/internal/domain"

// CreateRequest adds a product to a cart. UserID is honoured for admins
// only; everyone else adds to their own cart.
type CreateRequest struct {
	UserID            string `json:"userId" binding:"omitempty,uuid"`
	ProductID         uint   `json:"productId" binding:"required,gt=0"`
	QuantityPurchased int    `json:"quantityPurchased" binding:"required,gt=0"`
}

// Item is one line of a CreateManyRequest.
type Item struct {
	ProductID         uint `json:"productId" binding:"required,gt=0"`
	QuantityPurchased int  `json:"quantityPurchased" binding:"required,gt=0"`
}

// CreateManyRequest adds several products to one cart.
type CreateManyRequest struct {
	UserID string `json:"userId" binding:"omitempty,uuid"`
	Items  []Item `json:"items" binding:"required,min=1,max=100,dive"`
}

// UpdateStatusRequest moves the open lines of a user to Status.
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

// ListQuery filters the purchased product list.
type ListQuery struct {
	UserID    *string `form:"userId" binding:"omitempty,uuid"`
	ProductID *uint   `form:"productId"`
	OrderID   *string `form:"orderId" binding:"omitempty,uuid"`
	Status    *string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	IsDeleted *bool   `form:"isDeleted"`
}
