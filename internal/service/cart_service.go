package service

import (
	"context"

	"simple-shop/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const CartAcknowledgement = "Item added to cart"

// CartService is a stub: submissions are acknowledged and dropped.
type CartService struct{}

var CartServiceTracer = otel.Tracer("CartService")

func NewCartService() *CartService {
	return &CartService{}
}

func (s *CartService) Add(ctx context.Context, submission model.CartSubmission) string {
	_, span := CartServiceTracer.Start(ctx, "CartService.Add")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.submission_bytes", len(submission)))

	return CartAcknowledgement
}
