package product

// CreateRequest is the input for creating a product. An empty SKU is
// generated.
type CreateRequest struct {
	Name          string   `json:"name" binding:"required,min=1,max=200"`
	SKU           string   `json:"sku" binding:"omitempty,max=64"`
	CategoryID    uint     `json:"categoryId" binding:"required,gt=0"`
	Description   *string  `json:"description" binding:"omitempty,max=2000"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	CostPrice     *float64 `json:"costPrice" binding:"omitempty,gte=0"`
	StockQuantity *int     `json:"stockQuantity" binding:"required,gte=0"`
	IsAvailable   *bool    `json:"isAvailable" binding:"required"`
}

// UpdateRequest carries the product fields to change. Omitted fields are
// left untouched.
type UpdateRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=200"`
	SKU           *string  `json:"sku" binding:"omitempty,min=1,max=64"`
	CategoryID    *uint    `json:"categoryId" binding:"omitempty,gt=0"`
	Description   *string  `json:"description" binding:"omitempty,max=2000"`
	Price         *float64 `json:"price" binding:"omitempty,gt=0"`
	CostPrice     *float64 `json:"costPrice" binding:"omitempty,gte=0"`
	StockQuantity *int     `json:"stockQuantity" binding:"omitempty,gte=0"`
	IsAvailable   *bool    `json:"isAvailable"`
}

// ChangeStockRequest takes StockQuantity units out of stock.
type ChangeStockRequest struct {
	StockQuantity *int `json:"stockQuantity" binding:"required,gte=0"`
}

// ListQuery filters the product list.
type ListQuery struct {
	Name         *string  `form:"name"`
	MinPrice     *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	CategoryName *string  `form:"categoryName"`
	CategoryID   *uint    `form:"categoryId"`
	IsAvailable  *bool    `form:"isAvailable"`
	IsDeleted    *bool    `form:"isDeleted"`
}
