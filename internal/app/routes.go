package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/middleware"
	"github.com/simp-lee/shopbase/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules are mounted on /api/v1 without authentication.
	Public []Module
	// Secured modules are mounted on /api/v1 behind Authenticate.
	Secured []Module
	Tokens  middleware.TokenValidator
	DB      *gorm.DB
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Public)+len(deps.Secured) == 0 {
		return errors.New("at least one module is required")
	}
	if len(deps.Secured) > 0 && deps.Tokens == nil {
		return errors.New("token validator is required for secured modules")
	}

	r.GET("/health", healthHandler(deps.DB))

	public := r.Group("/api/v1")
	for i, m := range deps.Public {
		if m == nil {
			return fmt.Errorf("public module at index %d is nil", i)
		}
		m.RegisterRoutes(public)
	}

	if len(deps.Secured) > 0 {
		secured := r.Group("/api/v1", middleware.Authenticate(deps.Tokens))
		for i, m := range deps.Secured {
			if m == nil {
				return fmt.Errorf("secured module at index %d is nil", i)
			}
			m.RegisterRoutes(secured)
		}
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := ping(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// noRouteHandler answers unknown paths with a 404 envelope.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		pkg.Error(c, domain.NewAppError(domain.CodeNotFound, "Route "+c.Request.URL.Path+" not found", nil))
	}
}
