package utils

import (
	"regexp"
	"strings"

	"flight-price-tracker/pkg/logger"
)

var (
	departureTimeRe = regexp.MustCompile(`^(\d{1,2}:\d{2})` + spaceClass + `*-` + spaceClass + `*$`)
	originAirportRe = regexp.MustCompile(`^([A-Z]{3})` + spaceClass + `*-` + spaceClass + `*$`)
	destAirportRe   = regexp.MustCompile(`^([A-Z]{3})`)

	// "349 €"
	EnglishPricePattern = regexp.MustCompile(`(\d+)` + spaceClass + `*€`)
	// "€ 349"
	ItalianPricePattern = regexp.MustCompile(`€` + spaceClass + `*(\d+)`)
)

// TextScanner finds flight fields in notification text by their position relative to each other
type TextScanner struct {
	logger logger.Logger
}

// NewTextScanner creates a new text scanner
func NewTextScanner(logger logger.Logger) *TextScanner {
	return &TextScanner{
		logger: logger,
	}
}

// SplitLines splits text into lines. Carriage returns are left in place; the anchored
// patterns run on trimmed lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// FindDates returns the first date on every line that passes keep
func (s *TextScanner) FindDates(lines []string, pattern *regexp.Regexp, keep func(line string) bool) []LineMatch {
	var dates []LineMatch
	for i, line := range lines {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		dates = append(dates, LineMatch{Line: i, Value: match[1]})
	}

	s.logger.Debug("Extracted dates", "count", len(dates))
	return dates
}

// FindDepartures returns every departure time ("10:40 -" alone on a line) and, for each time
// followed closely by an "ZRH -" / "LIS" line pair, the route "ZRH-LIS". Routes are recorded
// at the line of the time they belong to.
func (s *TextScanner) FindDepartures(lines []string) (times []LineMatch, routes []LineMatch) {
	for i, line := range lines {
		timeMatch := departureTimeRe.FindStringSubmatch(strings.TrimSpace(line))
		if timeMatch == nil {
			continue
		}
		times = append(times, LineMatch{Line: i, Value: timeMatch[1]})

		end := min(i+1+AirportLookahead, len(lines))
		for j := i + 1; j < end; j++ {
			origin := originAirportRe.FindStringSubmatch(strings.TrimSpace(lines[j]))
			if origin == nil || j+1 >= len(lines) {
				continue
			}
			dest := destAirportRe.FindStringSubmatch(strings.TrimSpace(lines[j+1]))
			if dest == nil {
				continue
			}
			routes = append(routes, LineMatch{Line: i, Value: origin[1] + "-" + dest[1]})
			break
		}
	}

	s.logger.Debug("Extracted departures", "times", len(times), "routes", len(routes))
	return times, routes
}

// FindPrices returns at most one price per trigger line: the first line inside the
// window around the trigger that matches pattern. Triggers are compared lower-cased.
func (s *TextScanner) FindPrices(lines []string, triggers []string, pattern *regexp.Regexp) []LineMatch {
	var prices []LineMatch
	for i, line := range lines {
		if !ContainsAny(strings.ToLower(line), triggers) {
			continue
		}

		start := max(0, i-PriceWindowBefore)
		end := min(len(lines), i+PriceWindowAfter)
		for j := start; j < end; j++ {
			if match := pattern.FindStringSubmatch(lines[j]); match != nil {
				prices = append(prices, LineMatch{Line: i, Value: match[1]})
				break
			}
		}
	}

	s.logger.Debug("Extracted prices", "count", len(prices))
	return prices
}

// ContainsAny reports whether s contains at least one of the substrings
func ContainsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether s contains every substring
func ContainsAll(s string, substrings []string) bool {
	for _, sub := range substrings {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// CleanPrice strips currency symbols and separators, keeping digits and a decimal point:
// "€ 1.234,50" -> "1.234.50"
func CleanPrice(price string) string {
	var b strings.Builder
	for _, r := range price {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	return b.String()
}
