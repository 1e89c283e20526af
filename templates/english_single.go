package templates

import (
	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"
)

// EnglishSingle extracts the one round trip of an English price alert
type EnglishSingle struct {
	profile  config.VariantProfile
	keepDate func(string) bool
	scanner  *utils.TextScanner
	logger   logger.Logger
}

// NewEnglishSingle creates a new English single-trip extractor
func NewEnglishSingle(profile config.Profile, scanner *utils.TextScanner, logger logger.Logger) *EnglishSingle {
	return &EnglishSingle{
		profile:  profile.Variants.EnglishSingle,
		keepDate: englishMonthFilter(profile.TravelMonths),
		scanner:  scanner,
		logger:   logger,
	}
}

// Variant names the layout
func (e *EnglishSingle) Variant() entity.Variant {
	return entity.VariantEnglishSingle
}

// CanHandle determines if the text is an English single-trip alert
func (e *EnglishSingle) CanHandle(text string) bool {
	return matchesMarkers(text, e.profile.Markers)
}

// Extract finds dates like "Fri, 24 Oct", departure times with their airports, and the
// price near a "gone up"/"gone down" sentence. The last such sentence with a price wins.
func (e *EnglishSingle) Extract(msg *entity.Message) []entity.PriceObservation {
	lines := utils.SplitLines(msg.Body)
	o := newObservation(msg, e.Variant(), 0)

	dates := e.scanner.FindDates(lines, utils.EnglishDatePattern, e.keepDate)
	times, routes := e.scanner.FindDepartures(lines)
	prices := e.scanner.FindPrices(lines, e.profile.Triggers, utils.EnglishPricePattern)

	if len(prices) > 0 {
		o.Price = prices[len(prices)-1].Value
	}
	fillTrip(&o, dates, times, routes, utils.FirstPair, identity)
	labelIfComplete(&o)

	e.logger.Debug("English alert parsed",
		"messageId", msg.MessageID,
		"dates", len(dates),
		"times", len(times),
		"routes", len(routes),
		"price", o.Price)

	return []entity.PriceObservation{o}
}
