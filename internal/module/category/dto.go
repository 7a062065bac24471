package category

// CreateRequest is the input for creating a category.
type CreateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateRequest is the input for renaming a category.
type UpdateRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ListQuery filters the category list.
type ListQuery struct {
	Name      *string `form:"name"`
	IsDeleted *bool   `form:"isDeleted"`
}
