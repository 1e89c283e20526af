package repository

import (
	"context"

	"flight-price-tracker/internal/domain/entity"
)

// ObservationRepository defines the interface for price observation history
type ObservationRepository interface {
	SaveAll(ctx context.Context, observations []entity.PriceObservation) error
	List(ctx context.Context) ([]entity.PriceObservation, error)
	HasMessage(ctx context.Context, messageID string) (bool, error)
}
