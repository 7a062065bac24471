// Package repository binds a store.Repository to every domain model and
// scopes them to a shared database handle or transaction.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/shopbase/internal/domain"
	"github.com/simp-lee/shopbase/internal/pkg"
	"github.com/simp-lee/shopbase/internal/store"
)

// Registry holds one repository per model, all bound to the same handle.
type Registry struct {
	db  *gorm.DB
	log *slog.Logger

	Users             *store.Repository[domain.User]
	Addresses         *store.Repository[domain.Address]
	Categories        *store.Repository[domain.Category]
	Products          *store.Repository[domain.Product]
	ProductImages     *store.Repository[domain.ProductImage]
	UserImages        *store.Repository[domain.UserImage]
	Orders            *store.Repository[domain.Order]
	PurchasedProducts *store.Repository[domain.PurchasedProduct]
}

// NewRegistry builds the repositories over db.
func NewRegistry(db *gorm.DB, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{db: db, log: log}

	var err error
	if r.Users, err = bind[domain.User](db, log); err != nil {
		return nil, err
	}
	if r.Addresses, err = bind[domain.Address](db, log); err != nil {
		return nil, err
	}
	if r.Categories, err = bind[domain.Category](db, log); err != nil {
		return nil, err
	}
	if r.Products, err = bind[domain.Product](db, log); err != nil {
		return nil, err
	}
	if r.ProductImages, err = bind[domain.ProductImage](db, log); err != nil {
		return nil, err
	}
	if r.UserImages, err = bind[domain.UserImage](db, log); err != nil {
		return nil, err
	}
	if r.Orders, err = bind[domain.Order](db, log); err != nil {
		return nil, err
	}
	if r.PurchasedProducts, err = bind[domain.PurchasedProduct](db, log); err != nil {
		return nil, err
	}
	return r, nil
}

func bind[T any](db *gorm.DB, log *slog.Logger) (*store.Repository[T], error) {
	ds, err := store.NewGormStore[T](db)
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}
	return store.New[T](ds, log.With(slog.String("model", ds.Model()))), nil
}

// DB returns the handle the repositories are bound to.
func (r *Registry) DB() *gorm.DB {
	return r.db
}

// Logger returns the registry logger.
func (r *Registry) Logger() *slog.Logger {
	return r.log
}

// Transaction runs fn with a registry bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *Registry) Transaction(ctx context.Context, fn func(tx *Registry) error) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		scoped, err := NewRegistry(tx, r.log)
		if err != nil {
			return err
		}
		return fn(scoped)
	})
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("repository: migrate: %w", err)
	}
	return nil
}
