package address

// CreateRequest is the input for creating a shipping address. UserID is
// only honored for administrators; everyone else creates their own.
type CreateRequest struct {
	UserID     string  `json:"userId" binding:"omitempty,uuid"`
	Address1   string  `json:"address1" binding:"required,min=5,max=100"`
	Address2   *string `json:"address2" binding:"omitempty,min=5,max=100"`
	City       string  `json:"city" binding:"required,min=2,max=100"`
	State      string  `json:"state" binding:"required,min=2,max=100"`
	Country    string  `json:"country" binding:"required,min=2,max=100"`
	PostalCode string  `json:"postalCode" binding:"required,min=3,max=20"`
}

// UpdateRequest carries the address fields to change.
type UpdateRequest struct {
	Address1   *string `json:"address1" binding:"omitempty,min=5,max=100"`
	Address2   *string `json:"address2" binding:"omitempty,min=5,max=100"`
	City       *string `json:"city" binding:"omitempty,min=2,max=100"`
	State      *string `json:"state" binding:"omitempty,min=2,max=100"`
	Country    *string `json:"country" binding:"omitempty,min=2,max=100"`
	PostalCode *string `json:"postalCode" binding:"omitempty,min=3,max=20"`
}

// ListQuery filters the address list. Text filters match substrings.
type ListQuery struct {
	Address1   *string `form:"address1"`
	Address2   *string `form:"address2"`
	City       *string `form:"city"`
	State      *string `form:"state"`
	Country    *string `form:"country"`
	PostalCode *string `form:"postalCode"`
	IsDeleted  *bool   `form:"isDeleted"`
}
