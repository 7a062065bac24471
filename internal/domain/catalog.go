package domain

// Category groups products.
type Category struct {
	BaseModel
	Name     string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	SoftDelete
}

// Product is a sellable item with its stock level.
type Product struct {
	BaseModel
	Name          string         `gorm:"size:200;uniqueIndex;not null" json:"name"`
	SKU           string         `gorm:"column:sku;size:64;not null" json:"sku"`
	CategoryID    uint           `gorm:"not null;index" json:"categoryId"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`
	Price         float64        `gorm:"not null" json:"price"`
	CostPrice     float64        `gorm:"not null;default:0" json:"costPrice"`
	StockQuantity int            `gorm:"not null;default:0" json:"stockQuantity"`
	IsAvailable   bool           `gorm:"not null" json:"isAvailable"`
	Images        []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	SoftDelete
}

// ProductImage is an uploaded picture of a product.
type ProductImage struct {
	BaseModel
	Mimetype     string `gorm:"size:100;not null" json:"mimetype"`
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	Path         string `gorm:"size:512;not null" json:"path"`
	HashedBuffer string `gorm:"size:64;not null;index" json:"hashedBuffer"`
	ProductID    uint   `gorm:"not null;index" json:"productId"`
	UserID       string `gorm:"type:varchar(36);not null;index" json:"userId"`
}

// UserImage is the profile picture of a user.
type UserImage struct {
	BaseModel
	Mimetype     string `gorm:"size:100;not null" json:"mimetype"`
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	Path         string `gorm:"size:512;not null" json:"path"`
	HashedBuffer string `gorm:"size:64;not null" json:"hashedBuffer"`
	UserID       string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
}
