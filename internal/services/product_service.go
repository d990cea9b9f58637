package services

import (
	"context"
	"log/slog"
	"time"

	"productos/internal/models"
	"productos/internal/repositories"

	"github.com/samber/mo"
)

// ListLimit caps how many products a listing returns.
const ListLimit = 10

// Product event names.
const (
	EventProductCreated             = "product.created"
	EventProductUpdated             = "product.updated"
	EventProductAvailabilityToggled = "product.availability_toggled"
	EventProductDeleted             = "product.deleted"
)

// ProductEvent is published after every successful mutation.
type ProductEvent struct {
	Event      string         `json:"event"`
	Product    models.Product `json:"product"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// EventPublisher sends product events to a broker. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(payload any) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case no events are sent.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListProducts returns the most expensive products first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAll(ctx, ListLimit, repositories.OrderBy{Column: "price", Desc: true})
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProduct creates a new, available product.
func (s *ProductService) CreateProduct(ctx context.Context, fields models.ProductFields) (models.Product, error) {
	product, err := s.repo.Create(ctx, fields)
	if err != nil {
		return models.Product{}, err
	}
	s.publish(EventProductCreated, product)
	return product, nil
}

// UpdateProduct replaces name, price and availability of a product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, fields models.ProductFields) (mo.Option[models.Product], error) {
	return s.publishIfPresent(EventProductUpdated)(s.repo.Update(ctx, id, fields))
}

// ToggleAvailability flips the availability of a product.
func (s *ProductService) ToggleAvailability(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	return s.publishIfPresent(EventProductAvailabilityToggled)(s.repo.ToggleAvailability(ctx, id))
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (mo.Option[models.Product], error) {
	return s.publishIfPresent(EventProductDeleted)(s.repo.Delete(ctx, id))
}

func (s *ProductService) publishIfPresent(event string) func(mo.Option[models.Product], error) (mo.Option[models.Product], error) {
	return func(result mo.Option[models.Product], err error) (mo.Option[models.Product], error) {
		if err != nil {
			return result, err
		}
		if product, ok := result.Get(); ok {
			s.publish(event, product)
		}
		return result, nil
	}
}

// publish never fails the request; broker trouble is only logged.
func (s *ProductService) publish(event string, product models.Product) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ProductEvent{
		Event:      event,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to publish product event", "event", event, "product_id", product.ID, "error", err)
	}
}
