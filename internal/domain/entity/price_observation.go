package entity

import (
	"fmt"
	"time"
)

// Variant identifies the structural shape of a price notification
type Variant string

const (
	VariantItalianSingle Variant = "italian_single"
	VariantEnglishSingle Variant = "english_single"
	VariantEnglishDouble Variant = "english_double"
)

// ObservationDateLayout is the layout of PriceObservation.ObservationDate
const ObservationDateLayout = "Mon, 02 Jan 2006"

// CSVHeader is the fixed column order of the tabular export
var CSVHeader = []string{"date", "direction1", "date1", "time1", "direction2", "date2", "time2", "price", "label"}

// PriceObservation is one round trip price seen in one message
type PriceObservation struct {
	MessageID string  // source message, not exported
	Position  int     // index of the trip inside the message, not exported
	Variant   Variant // not exported

	ObservationDate string
	OutboundRoute   string // "ZRH-LIS"
	OutboundDate    string
	OutboundTime    string
	ReturnRoute     string
	ReturnDate      string
	ReturnTime      string
	Price           string
	Label           string
}

// HasPrice reports whether the observation is worth keeping
func (o PriceObservation) HasPrice() bool {
	return o.Price != ""
}

// FormatLabel builds the series label shared by all observations of the same trip
func (o PriceObservation) FormatLabel() string {
	return fmt.Sprintf("%s:%s %s - %s :: %s - %s",
		o.OutboundRoute, o.ReturnRoute,
		o.OutboundDate, o.ReturnDate,
		o.OutboundTime, o.ReturnTime)
}

// Row returns the observation in CSVHeader order
func (o PriceObservation) Row() []string {
	return []string{
		o.ObservationDate,
		o.OutboundRoute,
		o.OutboundDate,
		o.OutboundTime,
		o.ReturnRoute,
		o.ReturnDate,
		o.ReturnTime,
		o.Price,
		o.Label,
	}
}

// ObservedAt parses ObservationDate; ok is false when it does not follow ObservationDateLayout
func (o PriceObservation) ObservedAt() (t time.Time, ok bool) {
	t, err := time.Parse(ObservationDateLayout, o.ObservationDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
