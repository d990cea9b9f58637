package repositories

import (
	"context"

	"productos/internal/models"

	"github.com/samber/mo"
)

// OrderBy names a column and direction for listing products.
type OrderBy struct {
	Column string
	Desc   bool
}

// ProductRepository defines the interface for product data access.
//
// Lookups return mo.None when no row matches; the error result is reserved
// for persistence failures.
type ProductRepository interface {
	FindAll(ctx context.Context, limit int, orderBy OrderBy) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (mo.Option[models.Product], error)
	Create(ctx context.Context, fields models.ProductFields) (models.Product, error)
	Update(ctx context.Context, id uint, fields models.ProductFields) (mo.Option[models.Product], error)
	ToggleAvailability(ctx context.Context, id uint) (mo.Option[models.Product], error)
	Delete(ctx context.Context, id uint) (mo.Option[models.Product], error)
}
