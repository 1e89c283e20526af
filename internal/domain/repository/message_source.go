package repository

import (
	"context"

	"flight-price-tracker/internal/domain/entity"
)

// MessageSource yields notification messages one at a time, in archive order.
// Walk stops at the first error returned by fn.
type MessageSource interface {
	Name() string
	Walk(ctx context.Context, fn func(*entity.Message) error) error
}
