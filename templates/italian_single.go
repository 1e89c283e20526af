package templates

import (
	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"
)

// ItalianSingle extracts the one round trip of an Italian price alert
type ItalianSingle struct {
	profile  config.VariantProfile
	keepDate func(string) bool
	scanner  *utils.TextScanner
	logger   logger.Logger
}

// NewItalianSingle creates a new Italian single-trip extractor
func NewItalianSingle(profile config.Profile, scanner *utils.TextScanner, logger logger.Logger) *ItalianSingle {
	return &ItalianSingle{
		profile:  profile.Variants.ItalianSingle,
		keepDate: italianMonthFilter(profile.TravelMonths),
		scanner:  scanner,
		logger:   logger,
	}
}

// Variant names the layout
func (e *ItalianSingle) Variant() entity.Variant {
	return entity.VariantItalianSingle
}

// CanHandle determines if the text is an Italian price alert
func (e *ItalianSingle) CanHandle(text string) bool {
	return matchesMarkers(text, e.profile.Markers)
}

// Extract finds dates like "gio 23 ott", departure times with their airports, and the
// price next to the first "aumentato"/"diminuito"/"sceso" sentence that has one.
func (e *ItalianSingle) Extract(msg *entity.Message) []entity.PriceObservation {
	lines := utils.SplitLines(msg.Body)
	o := newObservation(msg, e.Variant(), 0)

	dates := e.scanner.FindDates(lines, utils.ItalianDatePattern, e.keepDate)
	times, routes := e.scanner.FindDepartures(lines)
	prices := e.scanner.FindPrices(lines, e.profile.Triggers, utils.ItalianPricePattern)

	if len(prices) > 0 {
		o.Price = prices[0].Value
	}
	fillTrip(&o, dates, times, routes, utils.FirstPair, utils.NormalizeItalianDate)
	labelIfComplete(&o)

	e.logger.Debug("Italian alert parsed",
		"messageId", msg.MessageID,
		"dates", len(dates),
		"times", len(times),
		"routes", len(routes),
		"price", o.Price)

	return []entity.PriceObservation{o}
}
