package user

import "github.com/simp-lee/shopbase/internal/domain"

// CreateRequest represents the input for creating a new user.
type CreateRequest struct {
	FirstName  string      `json:"firstName" binding:"required,min=1,max=100"`
	LastName   string      `json:"lastName" binding:"required,min=1,max=100"`
	Email      string      `json:"email" binding:"required,email,max=255"`
	Password   string      `json:"password" binding:"required,min=8,max=72,password"`
	Role       domain.Role `json:"role" binding:"omitempty,oneof=ADMIN USER"`
	IsVerified *bool       `json:"isVerified"`
	Phone      *string     `json:"phone" binding:"omitempty,min=6,max=32"`
}

// UpdateRequest carries the user fields to change. Omitted fields are left
// untouched.
type UpdateRequest struct {
	FirstName  *string      `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName   *string      `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email      *string      `json:"email" binding:"omitempty,email,max=255"`
	Password   *string      `json:"password" binding:"omitempty,min=8,max=72,password"`
	Role       *domain.Role `json:"role" binding:"omitempty,oneof=ADMIN USER"`
	IsVerified *bool        `json:"isVerified"`
	Phone      *string      `json:"phone" binding:"omitempty,min=6,max=32"`
}

// LoginRequest represents the input for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ListQuery filters the user list.
type ListQuery struct {
	FirstName  *string `form:"firstName"`
	LastName   *string `form:"lastName"`
	Email      *string `form:"email"`
	Role       *string `form:"role" binding:"omitempty,oneof=ADMIN USER"`
	IsVerified *bool   `form:"isVerified"`
	IsDeleted  *bool   `form:"isDeleted"`
}
