package repositories

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"productos/internal/models"

	"github.com/samber/mo"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// FindAll returns up to limit products sorted by the price or id column.
func (r *MemoryProductRepository) FindAll(_ context.Context, limit int, orderBy OrderBy) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		p.CreatedAt, p.UpdatedAt = time.Time{}, time.Time{}
		productList = append(productList, p)
	}
	slices.SortFunc(productList, func(a, b models.Product) int {
		var c int
		if orderBy.Column == "price" {
			c = cmp.Compare(a.Price, b.Price)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if orderBy.Desc {
			return -c
		}
		return c
	})
	if len(productList) > limit {
		productList = productList[:limit]
	}
	return productList, nil
}

// FindByID returns a product by its ID.
func (r *MemoryProductRepository) FindByID(_ context.Context, id uint) (mo.Option[models.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	return mo.TupleToOption(product, ok), nil
}

// Create adds a new, available product.
func (r *MemoryProductRepository) Create(_ context.Context, fields models.ProductFields) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	product := models.Product{
		ID:           r.nextID,
		Name:         fields.Name,
		Price:        fields.Price,
		Availability: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.products[product.ID] = product
	r.nextID++
	return product, nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, id uint, fields models.ProductFields) (mo.Option[models.Product], error) {
	return r.modify(id, func(p *models.Product) {
		p.Name = fields.Name
		p.Price = fields.Price
		p.Availability = fields.Availability
	}), nil
}

// ToggleAvailability flips the availability flag of an existing product.
func (r *MemoryProductRepository) ToggleAvailability(_ context.Context, id uint) (mo.Option[models.Product], error) {
	return r.modify(id, func(p *models.Product) {
		p.Availability = !p.Availability
	}), nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) (mo.Option[models.Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return mo.None[models.Product](), nil
	}
	delete(r.products, id)
	return mo.Some(product), nil
}

func (r *MemoryProductRepository) modify(id uint, apply func(p *models.Product)) mo.Option[models.Product] {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return mo.None[models.Product]()
	}
	apply(&product)
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return mo.Some(product)
}
