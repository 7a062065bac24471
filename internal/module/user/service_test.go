package user

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/moduletest"
	"github.com/simp-lee/shopbase/internal/repository"
	"github.com/simp-lee/shopbase/internal/repository/repotest"
	"github.com/simp-lee/shopbase/internal/store"
)

const strongPassword = "Secr3t!pass"

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (Service, *repository.Registry, *moduletest.JWT) {
	t.Helper()
	reg := repotest.New(t)
	tokens := moduletest.NewJWT()
	return NewService(reg, tokens, Options{BcryptCost: bcrypt.MinCost}), reg, tokens
}

func validCreate(email string) CreateRequest {
	return CreateRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  strongPassword,
	}
}

func mustCreate(t *testing.T, svc Service, req CreateRequest) *domain.User {
	t.Helper()
	res := svc.Create(context.Background(), req)
	if !res.OK() {
		t.Fatalf("Create() = %d/%q", res.Status(), res.Msg())
	}
	return res.Payload().(*domain.User)
}

func TestService_Create(t *testing.T) {
	svc, reg, tokens := newTestService(t)
	ctx := context.Background()

	res := svc.Create(ctx, validCreate(" Ada@Example.com "))
	if !res.OK() || res.Status() != http.StatusOK || res.Msg() != "User created successfully" {
		t.Fatalf("Create() = %d/%q", res.Status(), res.Msg())
	}
	u := res.Payload().(*domain.User)
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized", u.Email)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("Role = %q, want %q", u.Role, domain.RoleUser)
	}
	if u.PasswordHash == strongPassword || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strongPassword)) != nil {
		t.Error("password not stored as a bcrypt hash")
	}
	if u.Token == nil {
		t.Fatal("Token is nil, want issued token")
	}
	claims, err := tokens.ValidateToken(*u.Token)
	if err != nil || claims.UserID != u.ID || !slices.Equal(claims.Roles, []string{"USER"}) {
		t.Errorf("token claims = %+v, %v", claims, err)
	}

	var stored domain.User
	if err := reg.DB().First(&stored, "id = ?", u.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Token == nil || *stored.Token != *u.Token {
		t.Errorf("stored token = %v, want %q", stored.Token, *u.Token)
	}

	again := svc.Create(ctx, validCreate("ada@example.com"))
	if !again.OK() || again.Msg() != "Email already exists" {
		t.Errorf("Create() existing = %v/%q", again.OK(), again.Msg())
	}
	if got := again.Payload().(*domain.User); got.ID != u.ID || got.Token != nil {
		t.Errorf("existing user = %+v, want same id without token", got)
	}
}

func TestService_Create_AdminRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validCreate("root@example.com")
	req.Role = domain.RoleAdmin
	req.IsVerified = ptr(true)
	u := mustCreate(t, svc, req)
	if u.Role != domain.RoleAdmin || !u.IsVerified {
		t.Errorf("user = %+v, want verified admin", u)
	}
}

func TestService_Create_TokenFailure(t *testing.T) {
	svc, reg, tokens := newTestService(t)
	tokens.GenerateErr = errors.New("signing key unavailable")

	res := svc.Create(context.Background(), validCreate("ada@example.com"))
	if res.OK() || res.Status() != http.StatusInternalServerError {
		t.Errorf("Create() = %d/%q, want 500", res.Status(), res.Msg())
	}
	if n, _ := reg.Users.Count(context.Background(), store.Where()); n != 1 {
		t.Errorf("users = %d, want the row kept without token", n)
	}
}

func TestService_Login(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, validCreate("ada@example.com"))
	gone := mustCreate(t, svc, validCreate("gone@example.com"))
	if res := svc.SoftDelete(ctx, gone.ID); !res.OK() {
		t.Fatalf("SoftDelete() = %d/%q", res.Status(), res.Msg())
	}

	tests := []struct {
		name       string
		req        LoginRequest
		wantStatus int
		wantMsg    string
	}{
		{"valid", LoginRequest{Email: "ADA@example.com", Password: strongPassword}, http.StatusOK, "User logged in successfully"},
		{"wrong password", LoginRequest{Email: "ada@example.com", Password: "Wr0ng!pass"}, http.StatusUnauthorized, "Email or password is invalid"},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: strongPassword}, http.StatusUnauthorized, "Email or password is invalid"},
		{"deleted user", LoginRequest{Email: "gone@example.com", Password: strongPassword}, http.StatusForbidden, "This user is deleted, contact support for help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Login(ctx, tt.req)
			if res.Status() != tt.wantStatus || res.Msg() != tt.wantMsg {
				t.Fatalf("Login() = %d/%q, want %d/%q", res.Status(), res.Msg(), tt.wantStatus, tt.wantMsg)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			u := res.Payload().(*domain.User)
			if u.Token == nil || *u.Token == *created.Token {
				t.Errorf("Token = %v, want a fresh token", u.Token)
			}
			if _, err := tokens.ValidateToken(*u.Token); err != nil {
				t.Errorf("ValidateToken() error = %v", err)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	ada := mustCreate(t, svc, validCreate("ada@example.com"))
	mustCreate(t, svc, validCreate("grace@example.com"))

	tests := []struct {
		name       string
		id         string
		req        UpdateRequest
		wantStatus int
		wantMsg    string
	}{
		{"email taken", ada.ID, UpdateRequest{Email: ptr("Grace@example.com")}, http.StatusBadRequest, "Email already exists"},
		{"same values", ada.ID, UpdateRequest{FirstName: ptr("Ada"), Email: ptr("ada@example.com")}, http.StatusCreated, "No changes occurred on user id: " + ada.ID},
		{"rename", ada.ID, UpdateRequest{LastName: ptr("Byron")}, http.StatusOK, "User with id: " + ada.ID + " updated successfully"},
		{"missing", "00000000-0000-0000-0000-000000000000", UpdateRequest{LastName: ptr("X")}, http.StatusNotFound, "User with id: 00000000-0000-0000-0000-000000000000 not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Update(ctx, tt.id, tt.req)
			if res.Status() != tt.wantStatus || res.Msg() != tt.wantMsg {
				t.Errorf("Update() = %d/%q, want %d/%q", res.Status(), res.Msg(), tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestService_Update_Password(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	ada := mustCreate(t, svc, validCreate("ada@example.com"))

	if res := svc.Update(ctx, ada.ID, UpdateRequest{Password: ptr("N3w!secret")}); !res.OK() {
		t.Fatalf("Update() = %d/%q", res.Status(), res.Msg())
	}
	if res := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: strongPassword}); res.Status() != http.StatusUnauthorized {
		t.Errorf("Login() with old password = %d, want 401", res.Status())
	}
	if res := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "N3w!secret"}); !res.OK() {
		t.Errorf("Login() with new password = %d/%q", res.Status(), res.Msg())
	}
}

func TestService_Lifecycle(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()
	u := mustCreate(t, svc, validCreate("ada@example.com"))

	steps := []struct {
		name       string
		run        func() store.Reply
		wantStatus int
	}{
		{"get", func() store.Reply { return svc.Get(ctx, u.ID) }, http.StatusOK},
		{"soft delete", func() store.Reply { return svc.SoftDelete(ctx, u.ID) }, http.StatusOK},
		{"soft delete again", func() store.Reply { return svc.SoftDelete(ctx, u.ID) }, http.StatusCreated},
		{"get deleted", func() store.Reply { return svc.Get(ctx, u.ID) }, http.StatusForbidden},
		{"restore", func() store.Reply { return svc.Restore(ctx, u.ID) }, http.StatusOK},
		{"delete", func() store.Reply { return svc.Delete(ctx, u.ID) }, http.StatusOK},
		{"get missing", func() store.Reply { return svc.Get(ctx, u.ID) }, http.StatusNotFound},
	}

	for _, step := range steps {
		if res := step.run(); res.Status() != step.wantStatus {
			t.Fatalf("%s = %d/%q, want %d", step.name, res.Status(), res.Msg(), step.wantStatus)
		}
	}

	if got := tokens.Revoked(); !slices.Equal(got, []string{u.ID, u.ID}) {
		t.Errorf("Revoked() = %v, want soft delete and delete to revoke", got)
	}
	if _, err := tokens.ValidateToken(*u.Token); err == nil {
		t.Error("token still valid after delete")
	}
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	admin := validCreate("root@example.com")
	admin.Role = domain.RoleAdmin
	mustCreate(t, svc, admin)
	mustCreate(t, svc, validCreate("ada@example.com"))
	mustCreate(t, svc, validCreate("grace@example.com"))

	tests := []struct {
		name      string
		q         ListQuery
		wantCount int64
	}{
		{"all", ListQuery{}, 3},
		{"by role", ListQuery{Role: ptr("ADMIN")}, 1},
		{"email contains", ListQuery{Email: ptr("grace")}, 1},
		{"not verified", ListQuery{IsVerified: ptr(false)}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.List(ctx, tt.q, store.PageRequest{})
			page, ok := res.(store.Page[domain.User])
			if !ok {
				t.Fatalf("List() returned %T", res)
			}
			if page.TotalDataCount != tt.wantCount {
				t.Errorf("TotalDataCount = %d, want %d", page.TotalDataCount, tt.wantCount)
			}
		})
	}
}
