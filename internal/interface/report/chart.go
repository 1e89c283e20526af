package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"flight-price-tracker/internal/domain/entity"
	"flight-price-tracker/pkg/utils"
)

// ErrNoPlotData is returned when no record has both a parseable date and price
var ErrNoPlotData = errors.New("no data to plot")

const (
	chartTitle  = "Flight Prices Over Time"
	chartWidth  = 14 * vg.Inch
	chartHeight = 8 * vg.Inch
)

// Series is the price history of one trip
type Series struct {
	Label  string
	Points plotter.XYs // x: unix seconds, y: price
}

// BuildSeries groups records by label in order of first appearance. Records with an
// empty label, an unparseable observation date or a non-numeric price are left out.
func BuildSeries(records []entity.PriceObservation) []Series {
	index := make(map[string]int)
	var series []Series

	for _, r := range records {
		if r.Label == "" {
			continue
		}
		observedAt, ok := r.ObservedAt()
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(utils.CleanPrice(r.Price), 64)
		if err != nil {
			continue
		}

		i, seen := index[r.Label]
		if !seen {
			i = len(series)
			index[r.Label] = i
			series = append(series, Series{Label: r.Label})
		}
		series[i].Points = append(series[i].Points, plotter.XY{X: float64(observedAt.Unix()), Y: price})
	}

	for i := range series {
		points := series[i].Points
		sort.SliceStable(points, func(a, b int) bool { return points[a].X < points[b].X })
	}
	return series
}

// ChartPNG renders one line-with-markers series per trip as a PNG
func ChartPNG(records []entity.PriceObservation) ([]byte, error) {
	series := BuildSeries(records)
	if len(series) == 0 {
		return nil, ErrNoPlotData
	}

	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price (€)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02", Time: plot.UnixTimeIn(time.UTC)}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		line, points, err := plotter.NewLinePoints(s.Points)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)

		p.Add(line, points)
		p.Legend.Add(s.Label, line, points)
	}

	w, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
