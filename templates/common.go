// Package templates holds one extractor per known price-notification layout.
package templates

import (
	"strings"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/pkg/utils"
)

func matchesMarkers(text string, m config.Markers) bool {
	if len(m.Any) == 0 && len(m.All) == 0 {
		return false
	}
	if len(m.Any) > 0 && !utils.ContainsAny(text, m.Any) {
		return false
	}
	return utils.ContainsAll(text, m.All)
}

// englishMonthFilter keeps lines mentioning one of the months, case-sensitively ("Oct")
func englishMonthFilter(months []string) func(string) bool {
	return func(line string) bool {
		return utils.ContainsAny(line, months)
	}
}

// italianMonthFilter keeps lines mentioning one of the months in Italian, any case ("ott")
func italianMonthFilter(months []string) func(string) bool {
	tokens := utils.ItalianMonthTokens(months)
	return func(line string) bool {
		return utils.ContainsAny(strings.ToLower(line), tokens)
	}
}

func newObservation(msg *entity.Message, variant entity.Variant, position int) entity.PriceObservation {
	return entity.PriceObservation{
		MessageID:       msg.MessageID,
		Position:        position,
		Variant:         variant,
		ObservationDate: utils.ObservationDate(msg.Date, msg.Body),
	}
}

type pairFunc func([]utils.LineMatch) (string, string, bool)

// fillTrip copies outbound/return fields from the hits, picking two of each with pick
func fillTrip(o *entity.PriceObservation, dates, times, routes []utils.LineMatch, pick pairFunc, normalize func(string) string) {
	if d1, d2, ok := pick(dates); ok {
		o.OutboundDate, o.ReturnDate = normalize(d1), normalize(d2)
	}
	if t1, t2, ok := pick(times); ok {
		o.OutboundTime, o.ReturnTime = t1, t2
	}
	if r1, r2, ok := pick(routes); ok {
		o.OutboundRoute, o.ReturnRoute = r1, r2
	}
}

func identity(s string) string { return s }

// labelIfComplete labels single-trip observations that have a route and both dates
func labelIfComplete(o *entity.PriceObservation) {
	if o.OutboundRoute != "" && o.OutboundDate != "" && o.ReturnDate != "" {
		o.Label = o.FormatLabel()
	}
}
