package service

import (
	"context"
	"errors"
	"testing"

	"simple-shop/internal/model"
	"simple-shop/internal/repository"
)

type failingRepo struct{}

func (failingRepo) FindAll(context.Context) ([]model.Product, error) {
	return nil, errors.New("store down")
}

func TestCatalogServiceListProducts(t *testing.T) {
	svc := NewCatalogService(repository.NewStaticProductRepository(repository.DefaultProducts()))

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 3 || products[0].Name != "Product A" || products[2].Price != 30 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestCatalogServicePropagatesRepositoryError(t *testing.T) {
	svc := NewCatalogService(failingRepo{})
	if _, err := svc.ListProducts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCartServiceAlwaysAcknowledges(t *testing.T) {
	svc := NewCartService()
	for _, body := range []string{"", "{}", `{"productId":1,"qty":2}`, `[1,2,3]`} {
		if got := svc.Add(context.Background(), model.CartSubmission(body)); got != "Item added to cart" {
			t.Fatalf("Add(%q) = %q", body, got)
		}
	}
}
