package service

import (
	"context"

	"simple-shop/internal/model"
	"simple-shop/internal/repository"

	"go.opentelemetry.io/otel"
)

type CatalogService struct {
	repo repository.ProductRepository
}

var CatalogServiceTracer = otel.Tracer("CatalogService")

func NewCatalogService(repo repository.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// ListProducts returns the whole catalog in its fixed order.
func (s *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.repo.FindAll(ctx)
}
