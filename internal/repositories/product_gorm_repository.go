package repositories

import (
	"context"
	"errors"
	"fmt"

	"productos/internal/models"

	"github.com/samber/mo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindAll retrieves up to limit products without their timestamp columns.
func (r *GORMProductRepository) FindAll(ctx context.Context, limit int, orderBy OrderBy) ([]models.Product, error) {
	products := make([]models.Product, 0, limit)
	err := r.db.WithContext(ctx).
		Omit("created_at", "updated_at").
		Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy.Column}, Desc: orderBy.Desc}).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single product by its primary key.
func (r *GORMProductRepository) FindByID(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	return r.first(r.db.WithContext(ctx), id)
}

// Create inserts a new, available product.
func (r *GORMProductRepository) Create(ctx context.Context, fields models.ProductFields) (models.Product, error) {
	product := models.Product{
		Name:         fields.Name,
		Price:        fields.Price,
		Availability: true,
	}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return models.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update overwrites name, price and availability of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, id uint, fields models.ProductFields) (mo.Option[models.Product], error) {
	db := r.db.WithContext(ctx)
	found, err := r.first(db, id)
	if err != nil || found.IsAbsent() {
		return found, err
	}

	product := found.MustGet()
	product.Name = fields.Name
	product.Price = fields.Price
	product.Availability = fields.Availability
	// Selected columns are written even when zero, so availability=false is persisted.
	result := db.Model(&product).Select("name", "price", "availability", "updated_at").Updates(&product)
	if result.Error != nil {
		return mo.None[models.Product](), fmt.Errorf("failed to update product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return mo.None[models.Product](), nil
	}
	return mo.Some(product), nil
}

// ToggleAvailability flips the availability flag of an existing product.
func (r *GORMProductRepository) ToggleAvailability(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	db := r.db.WithContext(ctx)
	found, err := r.first(db, id)
	if err != nil || found.IsAbsent() {
		return found, err
	}

	product := found.MustGet()
	product.Availability = !product.Availability
	result := db.Model(&product).Update("availability", product.Availability)
	if result.Error != nil {
		return mo.None[models.Product](), fmt.Errorf("failed to toggle availability of product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return mo.None[models.Product](), nil
	}
	return mo.Some(product), nil
}

// Delete removes an existing product and returns the removed row.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	db := r.db.WithContext(ctx)
	found, err := r.first(db, id)
	if err != nil || found.IsAbsent() {
		return found, err
	}

	product := found.MustGet()
	result := db.Delete(&product)
	if result.Error != nil {
		return mo.None[models.Product](), fmt.Errorf("failed to delete product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return mo.None[models.Product](), nil
	}
	return mo.Some(product), nil
}

func (r *GORMProductRepository) first(db *gorm.DB, id uint) (mo.Option[models.Product], error) {
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mo.None[models.Product](), nil
		}
		return mo.None[models.Product](), fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return mo.Some(product), nil
}
