package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"flight-price-tracker/internal/domain/entity"
)

const (
	wordClass  = `[\p{L}\p{N}_]`
	spaceClass = `[\s\p{Zs}]`
)

var (
	// "Fri, 24 Oct"
	EnglishDatePattern = regexp.MustCompile(`(` + wordClass + `+,` + spaceClass + `+\d{1,2}` + spaceClass + `+` + wordClass + `+)`)
	// "gio 23 ott"
	ItalianDatePattern = regexp.MustCompile(`(` + wordClass + `+` + spaceClass + `+\d{1,2}` + spaceClass + `+` + wordClass + `+)`)

	fullDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}` + spaceClass + `+` + wordClass + `+` + spaceClass + `+\d{4})`),
		regexp.MustCompile(`(` + wordClass + `+,` + spaceClass + `+\d{1,2}` + spaceClass + `+` + wordClass + `+` + spaceClass + `+\d{4})`),
	}

	wordRe       = regexp.MustCompile(wordClass + `+`)
	missingComma = regexp.MustCompile(`^(` + wordClass + `{3})` + spaceClass + `+(\d)`)
)

// "mar" is absent: it always reads as March, so Tuesday dates come out as "Mar, 21 Oct".
var italianWeekdays = map[string]string{
	"lun": "Mon",
	"mer": "Wed",
	"gio": "Thu",
	"ven": "Fri",
	"sab": "Sat",
	"dom": "Sun",
}

var italianMonths = map[string]string{
	"gen": "Jan",
	"feb": "Feb",
	"mar": "Mar",
	"apr": "Apr",
	"mag": "May",
	"giu": "Jun",
	"lug": "Jul",
	"ago": "Aug",
	"set": "Sep",
	"ott": "Oct",
	"nov": "Nov",
	"dic": "Dec",
}

// NormalizeItalianDate turns "gio 23 ott" into "Thu, 23 Oct". Strings that already
// contain a comma are taken to be English and returned unchanged.
func NormalizeItalianDate(date string) string {
	if strings.Contains(date, ",") {
		return date
	}

	// The leading word is the weekday
	first := true
	normalized := wordRe.ReplaceAllStringFunc(date, func(word string) string {
		lower := strings.ToLower(word)
		if first {
			first = false
			if day, ok := italianWeekdays[lower]; ok {
				return day
			}
		}
		if month, ok := italianMonths[lower]; ok {
			return month
		}
		return word
	})

	return missingComma.ReplaceAllString(normalized, "$1, $2")
}

// ItalianMonthTokens maps English month abbreviations ("Oct") to the Italian ones ("ott").
// Unknown months are passed through lower-cased.
func ItalianMonthTokens(englishMonths []string) []string {
	reverse := make(map[string]string, len(italianMonths))
	for it, en := range italianMonths {
		reverse[strings.ToLower(en)] = it
	}

	tokens := make([]string, 0, len(englishMonths))
	for _, m := range englishMonths {
		lower := strings.ToLower(strings.TrimSpace(m))
		if len(lower) > 3 {
			lower = lower[:3]
		}
		if it, ok := reverse[lower]; ok {
			tokens = append(tokens, it)
			continue
		}
		tokens = append(tokens, lower)
	}
	return tokens
}

// ObservationDate returns the day a notification was sent. The Date header wins; without it
// the beginning of the text is searched for something that looks like a full date.
func ObservationDate(headerDate time.Time, text string) string {
	if !headerDate.IsZero() {
		return headerDate.Format(entity.ObservationDateLayout)
	}

	head := truncateRunes(text, HeaderScanLimit)
	for _, pattern := range fullDatePatterns {
		if match := pattern.FindStringSubmatch(head); match != nil {
			return match[1]
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
