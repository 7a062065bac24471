package domain

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User represents a customer or administrator account.
type User struct {
	UUIDModel
	FirstName    string  `gorm:"size:100;not null" json:"firstName"`
	LastName     string  `gorm:"size:100;not null" json:"lastName"`
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"column:password;size:255;not null" json:"-"`
	Role         Role    `gorm:"size:16;not null;default:USER" json:"role"`
	IsVerified   bool    `gorm:"not null;default:false" json:"isVerified"`
	Phone        *string `gorm:"size:32" json:"phone,omitempty"`
	Token        *string `gorm:"size:1024" json:"token,omitempty"`
	SoftDelete
}

// Address is the single shipping address of a user.
type Address struct {
	UUIDModel
	UserID     string  `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	Address1   string  `gorm:"size:255;not null" json:"address1"`
	Address2   *string `gorm:"size:255" json:"address2,omitempty"`
	City       string  `gorm:"size:100;not null" json:"city"`
	State      string  `gorm:"size:100;not null" json:"state"`
	Country    string  `gorm:"size:100;not null" json:"country"`
	PostalCode string  `gorm:"size:20;not null" json:"postalCode"`
	SoftDelete
}
