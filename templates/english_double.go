package templates

import (
	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/utils"
)

const (
	// used as the split line when there are too few dates to find the second trip
	fallbackMidpoint = 700
	// the second trip also looks this many lines above the split line
	midpointOverlap = 20
)

// EnglishDouble extracts both round trips of a "Price updates for 2 saved flights" alert
type EnglishDouble struct {
	profile  config.VariantProfile
	keepDate func(string) bool
	scanner  *utils.TextScanner
	logger   logger.Logger
}

// NewEnglishDouble creates a new English two-trip extractor
func NewEnglishDouble(profile config.Profile, scanner *utils.TextScanner, logger logger.Logger) *EnglishDouble {
	return &EnglishDouble{
		profile:  profile.Variants.EnglishDouble,
		keepDate: englishMonthFilter(profile.TravelMonths),
		scanner:  scanner,
		logger:   logger,
	}
}

// Variant names the layout
func (e *EnglishDouble) Variant() entity.Variant {
	return entity.VariantEnglishDouble
}

// CanHandle determines if the text is a two-trip alert
func (e *EnglishDouble) CanHandle(text string) bool {
	return matchesMarkers(text, e.profile.Markers)
}

// Extract splits the message at the third date: hits above it belong to the first trip
// (first two of each kind), hits from a little above it onwards to the second trip
// (last two of each kind). Prices are taken in order, one per trip.
func (e *EnglishDouble) Extract(msg *entity.Message) []entity.PriceObservation {
	lines := utils.SplitLines(msg.Body)

	dates := e.scanner.FindDates(lines, utils.EnglishDatePattern, e.keepDate)
	times, routes := e.scanner.FindDepartures(lines)
	prices := e.scanner.FindPrices(lines, e.profile.Triggers, utils.EnglishPricePattern)

	mid := fallbackMidpoint
	if len(dates) >= 4 {
		mid = dates[2].Line
	}

	first := newObservation(msg, e.Variant(), 0)
	fillTrip(&first,
		utils.Before(dates, mid), utils.Before(times, mid), utils.Before(routes, mid),
		utils.FirstPair, utils.NormalizeItalianDate)
	if len(prices) >= 1 {
		first.Price = prices[0].Value
	}

	secondFrom := mid - midpointOverlap
	second := newObservation(msg, e.Variant(), 1)
	fillTrip(&second,
		utils.From(dates, secondFrom), utils.From(times, secondFrom), utils.From(routes, secondFrom),
		utils.LastPair, utils.NormalizeItalianDate)
	if len(prices) >= 2 {
		second.Price = prices[1].Value
	}

	for _, o := range []*entity.PriceObservation{&first, &second} {
		if o.OutboundRoute != "" {
			o.Label = o.FormatLabel()
		}
	}

	e.logger.Debug("Two-trip alert parsed",
		"messageId", msg.MessageID,
		"midpoint", mid,
		"dates", len(dates),
		"prices", len(prices))

	return []entity.PriceObservation{first, second}
}
