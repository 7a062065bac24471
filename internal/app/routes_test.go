package app

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/module/moduletest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Health check tests ---

func TestHealthHandler(t *testing.T) {
	closed := openTestSQLiteDB(t)
	sqlDB, _ := closed.DB()
	sqlDB.Close()

	tests := []struct {
		name       string
		db         *gorm.DB
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{name: "database reachable", db: openTestSQLiteDB(t), wantCode: http.StatusOK, wantStatus: "ok", wantDB: "ok"},
		{name: "database closed", db: closed, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded", wantDB: "error"},
		{name: "no database", db: nil, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded", wantDB: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", healthHandler(tt.db))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var body struct {
				Status     string            `json:"status"`
				Components map[string]string `json:"components"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Components["database"] != tt.wantDB {
				t.Errorf("components.database = %q, want %q", body.Components["database"], tt.wantDB)
			}
		})
	}
}

func TestHealthHandler_UsesRequestContextTimeout(t *testing.T) {
	registerBlockingPingDriver()

	sqlDB, err := sql.Open(blockingPingDriverName, "")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	r := gin.New()
	r.GET("/health", healthHandler(db))

	reqCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	t.Cleanup(cancel)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(reqCtx)

	start := time.Now()
	r.ServeHTTP(w, req)
	elapsed := time.Since(start)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if elapsed > 300*time.Millisecond {
		t.Fatalf("expected health response to honor request context timeout, elapsed=%v", elapsed)
	}
}

// --- NoRoute handler tests ---

func TestNoRouteHandler(t *testing.T) {
	r := gin.New()
	r.NoRoute(noRouteHandler())

	for _, path := range []string{"/nonexistent", "/api/v1/nothing"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var body struct {
				Success    bool   `json:"success"`
				StatusCode int    `json:"statusCode"`
				Message    string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Success || body.StatusCode != http.StatusNotFound {
				t.Errorf("body = %+v, want failed 404 envelope", body)
			}
			if want := "Route " + path + " not found"; body.Message != want {
				t.Errorf("message = %q, want %q", body.Message, want)
			}
		})
	}
}

// --- RegisterRoutes tests ---

type mockModule struct {
	path   string
	called bool
}

func (m *mockModule) RegisterRoutes(api *gin.RouterGroup) {
	m.called = true
	api.GET(m.path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"path": m.path})
	})
}

func TestRegisterRoutes_Validation(t *testing.T) {
	tokens := moduletest.NewJWT()
	tests := []struct {
		name    string
		router  *gin.Engine
		deps    *RouteDeps
		wantErr string
	}{
		{name: "nil router", router: nil, deps: &RouteDeps{}, wantErr: "router is nil"},
		{name: "nil deps", router: gin.New(), deps: nil, wantErr: "route dependencies are nil"},
		{name: "no modules", router: gin.New(), deps: &RouteDeps{}, wantErr: "at least one module is required"},
		{
			name:    "secured without tokens",
			router:  gin.New(),
			deps:    &RouteDeps{Secured: []Module{&mockModule{path: "/a"}}},
			wantErr: "token validator is required",
		},
		{
			name:    "nil public module",
			router:  gin.New(),
			deps:    &RouteDeps{Public: []Module{nil}},
			wantErr: "public module at index 0 is nil",
		},
		{
			name:    "nil secured module",
			router:  gin.New(),
			deps:    &RouteDeps{Secured: []Module{&mockModule{path: "/a"}, nil}, Tokens: tokens},
			wantErr: "secured module at index 1 is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RegisterRoutes(tt.router, tt.deps)
			if err == nil {
				t.Fatal("RegisterRoutes() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("RegisterRoutes() error = %q, want contains %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRegisterRoutes_PublicAndSecured(t *testing.T) {
	tokens := moduletest.NewJWT()
	public := &mockModule{path: "/open"}
	secured := &mockModule{path: "/closed"}

	r := gin.New()
	if err := RegisterRoutes(r, &RouteDeps{
		Public:  []Module{public},
		Secured: []Module{secured},
		Tokens:  tokens,
		DB:      openTestSQLiteDB(t),
	}); err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}
	if !public.called || !secured.called {
		t.Fatalf("modules called = (%v, %v), want both", public.called, secured.called)
	}

	token := tokens.Issue(t, "user-1", domain.RoleUser)
	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{name: "public without token", path: "/api/v1/open", wantCode: http.StatusOK},
		{name: "secured without token", path: "/api/v1/closed", wantCode: http.StatusUnauthorized},
		{name: "secured with bad token", path: "/api/v1/closed", token: "forged", wantCode: http.StatusUnauthorized},
		{name: "secured with token", path: "/api/v1/closed", token: token, wantCode: http.StatusOK},
		{name: "health stays public", path: "/health", wantCode: http.StatusOK},
		{name: "unknown route", path: "/api/v1/missing", token: token, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := moduletest.Do(t, r, http.MethodGet, tt.path, tt.token, nil)
			if res.Code != tt.wantCode {
				t.Fatalf("GET %s = %d, want %d: %s", tt.path, res.Code, tt.wantCode, res.Raw)
			}
		})
	}
}

// --- test helpers ---

func openTestSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return db
}

const blockingPingDriverName = "shopbase_blocking_ping"

var registerBlockingPingDriverOnce sync.Once

func registerBlockingPingDriver() {
	registerBlockingPingDriverOnce.Do(func() {
		sql.Register(blockingPingDriverName, blockingPingDriver{})
	})
}

type blockingPingDriver struct{}

func (blockingPingDriver) Open(string) (driver.Conn, error) {
	return blockingPingConn{}, nil
}

type blockingPingConn struct{}

func (blockingPingConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (blockingPingConn) Close() error                        { return nil }
func (blockingPingConn) Begin() (driver.Tx, error)           { return blockingPingTx{}, nil }

func (blockingPingConn) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type blockingPingTx struct{}

func (blockingPingTx) Commit() error   { return nil }
func (blockingPingTx) Rollback() error { return nil }
