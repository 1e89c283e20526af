package usecase

import (
	"context"

	"flight-price-tracker/internal/domain/entity"
)

// Extractor pulls price observations out of one notification variant
type Extractor interface {
	// Variant names the notification shape this extractor understands
	Variant() entity.Variant

	// CanHandle determines if this extractor recognises the message text
	CanHandle(text string) bool

	// Extract returns every observation found, priced or not
	Extract(msg *entity.Message) []entity.PriceObservation
}

// VariantRouter routes message text to the extractor of its variant
type VariantRouter interface {
	// Register appends an extractor; earlier registrations take precedence
	Register(extractor Extractor)

	// GetExtractor returns the first extractor that recognises the text, or nil
	GetExtractor(text string) Extractor
}

// Exporter writes the final record set somewhere a person can read it
type Exporter interface {
	Export(ctx context.Context, records []entity.PriceObservation) error
}
