package user

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/simp-lee/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/store"
)

// DefaultTokenTTL is used when Options.TokenTTL is zero.
const DefaultTokenTTL = 24 * time.Hour

// Service defines the user operations.
type Service interface {
	Create(ctx context.Context, req CreateRequest) store.Reply
	Get(ctx context.Context, id string) store.Reply
	List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply
	Update(ctx context.Context, id string, req UpdateRequest) store.Reply
	Delete(ctx context.Context, id string) store.Reply
	SoftDelete(ctx context.Context, id string) store.Reply
	Restore(ctx context.Context, id string) store.Reply
	Login(ctx context.Context, req LoginRequest) store.Reply
}

// Options tunes token issuing and password hashing.
type Options struct {
	TokenTTL   time.Duration
	BcryptCost int
}

type userService struct {
	users  *store.Repository[domain.User]
	tokens jwt.Service
	log    *slog.Logger
	ttl    time.Duration
	cost   int
}

// NewService creates a user Service. Zero options fall back to
// DefaultTokenTTL and bcrypt.DefaultCost.
func NewService(reg *repository.Registry, tokens jwt.Service, opts Options) Service {
	if tokens == nil {
		panic("user.NewService: token service must not be nil")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:  reg.Users,
		tokens: tokens,
		log:    reg.Users.Logger(),
		ttl:    opts.TokenTTL,
		cost:   opts.BcryptCost,
	}
}

func (s *userService) byID(id string) store.Filter {
	return s.users.ByID(id)
}

func (s *userService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// withoutToken returns a copy of an envelope whose user omits the token.
func withoutToken(env store.Envelope[*domain.User]) store.Envelope[*domain.User] {
	if env.Data != nil {
		u := *env.Data
		u.Token = nil
		env.Data = &u
	}
	return env
}

func (s *userService) Create(ctx context.Context, req CreateRequest) store.Reply {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.users.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "User not found",
		Success:  "Email already exists",
	}, store.Where(store.Eq("email", email)))
	if err != nil {
		return store.Internal(ctx, s.log, "user.create", err)
	}
	if existing.StatusCode != http.StatusNotFound {
		return withoutToken(existing)
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return store.Internal(ctx, s.log, "user.create", err)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	u := &domain.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Phone:        req.Phone,
	}
	if req.IsVerified != nil {
		u.IsVerified = *req.IsVerified
	}

	created, err := s.users.Create(ctx, u, store.Selection{}, store.Messages{
		Failed:  "Something went wrong while creating user",
		Success: "User created successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "user.create", err)
	}
	if !created.Success {
		return created
	}

	issued, err := s.issueToken(ctx, created.Data)
	if err != nil {
		return store.Internal(ctx, s.log, "user.create", err)
	}
	if !issued.Success {
		return issued
	}
	created.Data = issued.Data
	return created
}

// issueToken signs a token for u and stores it on the user row.
func (s *userService) issueToken(ctx context.Context, u *domain.User) (store.Envelope[*domain.User], error) {
	token, err := s.tokens.GenerateToken(u.ID, []string{string(u.Role)}, s.ttl)
	if err != nil {
		return store.Envelope[*domain.User]{}, err
	}
	return s.users.Update(ctx, store.Patch{"token": token}, store.UpdateSpec{
		Where: []store.Filter{s.byID(u.ID)},
		Messages: store.Messages{
			NotFound:  "User not found with id: " + u.ID,
			NoChanges: "No changes occurred on user id: " + u.ID,
			Conflict:  "Email already exists",
			Failed:    "Something went wrong while updating token for user with id: " + u.ID,
			Success:   "User with id: " + u.ID + " updated token successfully",
		},
	})
}

func (s *userService) Get(ctx context.Context, id string) store.Reply {
	res, err := s.users.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "User with id: " + id + " not found",
		Success:  "User with id: " + id + " found successfully",
	}, s.byID(id))
	if err != nil {
		return store.Internal(ctx, s.log, "user.get", err)
	}
	return res
}

func (s *userService) List(ctx context.Context, q ListQuery, page store.PageRequest) store.Reply {
	where := store.Where(
		store.Contains("first_name", q.FirstName),
		store.Contains("last_name", q.LastName),
		store.Contains("email", q.Email),
		store.Eq("role", q.Role),
		store.Eq("is_verified", q.IsVerified),
		store.Eq("is_deleted", q.IsDeleted),
	)
	res, err := s.users.GetAll(ctx, where, store.Selection{}, store.Messages{
		NotFound: "Users not found",
		Success:  "Users list found successfully",
	}, page)
	if err != nil {
		return store.Internal(ctx, s.log, "user.list", err)
	}
	return res
}

func updateMsgs(id string) store.Messages {
	return store.Messages{
		NotFound:  "User with id: " + id + " not found",
		NoChanges: "No changes occurred on user id: " + id,
		Conflict:  "Email already exists",
		Failed:    "Something went wrong while updating user with id: " + id,
		Success:   "User with id: " + id + " updated successfully",
	}
}

func (s *userService) Update(ctx context.Context, id string, req UpdateRequest) store.Reply {
	var email *string
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		email = &e
	}
	patch := store.Patch{
		"first_name":  req.FirstName,
		"last_name":   req.LastName,
		"email":       email,
		"role":        req.Role,
		"is_verified": req.IsVerified,
		"phone":       req.Phone,
	}
	if req.Password != nil {
		hashed, err := s.hash(*req.Password)
		if err != nil {
			return store.Internal(ctx, s.log, "user.update", err)
		}
		patch["password"] = hashed
	}

	res, err := s.users.Update(ctx, patch, store.UpdateSpec{
		Where:    []store.Filter{s.byID(id)},
		Unique:   []store.Filter{store.Where(store.Eq("email", email))},
		Messages: updateMsgs(id),
	})
	if err != nil {
		return store.Internal(ctx, s.log, "user.update", err)
	}
	return res
}

func (s *userService) Delete(ctx context.Context, id string) store.Reply {
	res, err := s.users.Delete(ctx, s.byID(id), store.Selection{}, store.Messages{
		NotFound: "User with id: " + id + " not found",
		Failed:   "Something went wrong while deleting user with id: " + id,
		Success:  "User with id: " + id + " deleted permanently successfully",
	})
	if err != nil {
		return store.Internal(ctx, s.log, "user.delete", err)
	}
	if res.Success {
		s.revoke(ctx, id)
	}
	return res
}

func (s *userService) SoftDelete(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs(id)
	msgs.Failed = "Something went wrong while deleting user with id: " + id
	msgs.Success = "User with id: " + id + " deleted successfully"
	res, err := s.users.SoftDelete(ctx, s.byID(id), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "user.softDelete", err)
	}
	if res.Success {
		s.revoke(ctx, id)
	}
	return res
}

func (s *userService) Restore(ctx context.Context, id string) store.Reply {
	msgs := updateMsgs(id)
	msgs.Failed = "Something went wrong while restoring user id: " + id
	msgs.Success = "User with id: " + id + " restored successfully"
	res, err := s.users.Restore(ctx, s.byID(id), store.Selection{}, msgs)
	if err != nil {
		return store.Internal(ctx, s.log, "user.restore", err)
	}
	return res
}

// revoke invalidates every token of a removed user. Failures are logged
// only; the row change already happened.
func (s *userService) revoke(ctx context.Context, id string) {
	if err := s.tokens.RevokeAllUserTokens(id); err != nil {
		s.log.ErrorContext(ctx, "revoke user tokens failed",
			slog.String("user_id", id),
			slog.Any("error", err),
		)
	}
}

func (s *userService) Login(ctx context.Context, req LoginRequest) store.Reply {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	found, err := s.users.GetByConstraint(ctx, store.Selection{}, store.Messages{
		NotFound: "Email or password is invalid",
		Success:  "User found",
	}, store.Where(store.Eq("email", email)))
	if err != nil {
		return store.Internal(ctx, s.log, "user.login", err)
	}
	switch found.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return store.Fail(ctx, s.log, http.StatusUnauthorized, "Email is invalid", "Email or password is invalid")
	case http.StatusForbidden:
		return store.Fail(ctx, s.log, http.StatusForbidden,
			"Login attempt on deleted user", "This user is deleted, contact support for help")
	default:
		return found
	}

	u := found.Data
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return store.Fail(ctx, s.log, http.StatusUnauthorized, "Password is invalid", "Email or password is invalid")
	}

	issued, err := s.issueToken(ctx, u)
	if err != nil {
		return store.Internal(ctx, s.log, "user.login", err)
	}
	if !issued.Success {
		return issued
	}
	return store.Respond(ctx, s.log, true, http.StatusOK,
		"User with id: "+u.ID+" logged in", "User logged in successfully", issued.Data)
}
