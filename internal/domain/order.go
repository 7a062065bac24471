package domain

// OrderStatus is the lifecycle state shared by orders and their lines.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMethod is how an order is paid.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentCard           PaymentMethod = "CARD"
)

// Order is a checked-out set of purchased products.
type Order struct {
	UUIDModel
	UserID            string             `gorm:"type:varchar(36);not null;index" json:"userId"`
	Status            OrderStatus        `gorm:"size:16;not null;default:PENDING" json:"status"`
	PaymentMethod     PaymentMethod      `gorm:"size:32;not null;default:CASH_ON_DELIVERY" json:"paymentMethod"`
	ShippingAddressID string             `gorm:"type:varchar(36);not null" json:"shippingAddressId"`
	TotalAmount       float64            `gorm:"not null;default:0" json:"totalAmount"`
	PurchasedProducts []PurchasedProduct `gorm:"foreignKey:OrderID" json:"purchasedProducts,omitempty"`
	SoftDelete
}

// PurchasedProduct is a cart line. It belongs to an order once checked out.
type PurchasedProduct struct {
	UUIDModel
	OrderID           *string     `gorm:"type:varchar(36);index" json:"orderId"`
	UserID            string      `gorm:"type:varchar(36);not null;index" json:"userId"`
	ProductID         uint        `gorm:"not null;index" json:"productId"`
	Product           *Product    `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	QuantityPurchased int         `gorm:"not null" json:"quantityPurchased"`
	PricePurchased    float64     `gorm:"not null" json:"pricePurchased"`
	TotalPrice        float64     `gorm:"not null" json:"totalPrice"`
	Status            OrderStatus `gorm:"size:16;not null;default:PENDING" json:"status"`
	SoftDelete
}

// Models lists every persisted model, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Address{},
		&Category{},
		&Product{},
		&ProductImage{},
		&UserImage{},
		&Order{},
		&PurchasedProduct{},
	}
}
