package utils

// LineMatch is a pattern hit together with the line it was found on
type LineMatch struct {
	Line  int
	Value string
}

// Search windows, in lines
const (
	AirportLookahead  = 4 // airport pair must start within this many lines after a departure time
	PriceWindowBefore = 5
	PriceWindowAfter  = 5
)

// HeaderScanLimit bounds the text searched for a fallback observation date, in characters
const HeaderScanLimit = 500

// Before keeps the matches found strictly above line
func Before(matches []LineMatch, line int) []LineMatch {
	var out []LineMatch
	for _, m := range matches {
		if m.Line < line {
			out = append(out, m)
		}
	}
	return out
}

// From keeps the matches found on or below line
func From(matches []LineMatch, line int) []LineMatch {
	var out []LineMatch
	for _, m := range matches {
		if m.Line >= line {
			out = append(out, m)
		}
	}
	return out
}

// FirstPair returns the values of the first two matches, or ok=false when there are fewer
func FirstPair(matches []LineMatch) (first, second string, ok bool) {
	if len(matches) < 2 {
		return "", "", false
	}
	return matches[0].Value, matches[1].Value, true
}

// LastPair returns the values of the last two matches, or ok=false when there are fewer
func LastPair(matches []LineMatch) (first, second string, ok bool) {
	if len(matches) < 2 {
		return "", "", false
	}
	n := len(matches)
	return matches[n-2].Value, matches[n-1].Value, true
}
