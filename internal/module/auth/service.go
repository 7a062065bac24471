package auth

import (
	"context"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/user"
	"github.com/simp-lee/shopbase/internal/store"
)

// Accounts is the part of user.Service that authentication relies on.
type Accounts interface {
	Create(ctx context.Context, req user.CreateRequest) store.Reply
	Login(ctx context.Context, req user.LoginRequest) store.Reply
}

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, req LoginRequest) store.Reply
	Register(ctx context.Context, req RegisterRequest) store.Reply
}

// authService implements Service.
type authService struct {
	accounts Accounts
}

// NewService creates a new auth Service over accounts.
func NewService(accounts Accounts) Service {
	if accounts == nil {
		panic("auth.NewService: accounts must not be nil")
	}
	return &authService{accounts: accounts}
}

// Login checks the credentials and returns the user with a fresh token.
func (s *authService) Login(ctx context.Context, req LoginRequest) store.Reply {
	return s.accounts.Login(ctx, user.LoginRequest{Email: req.Email, Password: req.Password})
}

// Register creates an unverified USER account and returns it with its token.
func (s *authService) Register(ctx context.Context, req RegisterRequest) store.Reply {
	return s.accounts.Create(ctx, user.CreateRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      domain.RoleUser,
		Phone:     req.Phone,
	})
}
