package router

import (
	"flight-price-tracker/internal/usecase"
	"flight-price-tracker/pkg/logger"
)

// VariantRouter routes message text to the extractor of its notification variant
type VariantRouter struct {
	extractors []usecase.Extractor
	logger     logger.Logger
}

// NewVariantRouter creates a new variant router
func NewVariantRouter(logger logger.Logger) *VariantRouter {
	return &VariantRouter{
		extractors: make([]usecase.Extractor, 0),
		logger:     logger,
	}
}

// Register appends an extractor; the first registered match wins
func (r *VariantRouter) Register(extractor usecase.Extractor) {
	r.extractors = append(r.extractors, extractor)
	r.logger.Debug("Registered extractor", "variant", extractor.Variant())
}

// GetExtractor returns the appropriate extractor for a message text
func (r *VariantRouter) GetExtractor(text string) usecase.Extractor {
	for _, extractor := range r.extractors {
		if extractor.CanHandle(text) {
			return extractor
		}
	}
	return nil
}
