package repository

import (
	"context"

	"simple-shop/internal/model"

	"go.opentelemetry.io/otel"
)

// ProductRepository is the read side of the catalog.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

// StaticProductRepository serves a list fixed at construction time.
type StaticProductRepository struct {
	products []model.Product
}

// DefaultProducts is the catalog served by the shop.
func DefaultProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Product A", Price: 10},
		{ID: 2, Name: "Product B", Price: 20},
		{ID: 3, Name: "Product C", Price: 30},
	}
}

func NewStaticProductRepository(products []model.Product) *StaticProductRepository {
	owned := make([]model.Product, len(products))
	copy(owned, products)
	return &StaticProductRepository{products: owned}
}

// FindAll returns a copy so callers can never mutate the catalog.
func (r *StaticProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	_, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}
