// Package chart rasterizes aggregated attendance series into PNG
// buffers for email attachments.
package chart

import (
	"bytes"
	"errors"
	"math/rand"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 800
	height = 400
)

// Category is one bar of a bar chart.
type Category struct {
	Label string
	Value float64
}

// Series is one department's date-indexed line.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// Bar renders one bar per category. Bar colors are randomized per
// render; only the structure is deterministic.
func Bar(title string, categories []Category) ([]byte, error) {
	if len(categories) == 0 {
		return nil, errors.New("no categories to chart")
	}

	bars := make([]chart.Value, 0, len(categories))
	maxVal := 1.0
	for _, c := range categories {
		color := randomColor()
		bars = append(bars, chart.Value{
			Label: c.Label,
			Value: c.Value,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		if c.Value > maxVal {
			maxVal = c.Value
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: 60,
		// Explicit range keeps all-zero days renderable.
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.1},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Lines renders one line per series over time. Single-point series are
// padded with a duplicate point so the x-range never collapses.
func Lines(title string, series []Series) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to chart")
	}

	var rendered []chart.Series
	maxVal := 1.0
	for _, s := range series {
		dates, values := s.Dates, s.Values
		if len(dates) == 0 {
			continue
		}
		if len(dates) == 1 {
			dates = append(dates, dates[0].AddDate(0, 0, 1))
			values = append(values, values[0])
		}
		for _, v := range values {
			if v > maxVal {
				maxVal = v
			}
		}
		rendered = append(rendered, chart.TimeSeries{
			Name:    s.Name,
			XValues: dates,
			YValues: values,
			Style:   chart.Style{StrokeColor: randomColor(), StrokeWidth: 2},
		})
	}
	if len(rendered) == 0 {
		return nil, errors.New("no series to chart")
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.1},
		},
		Series: rendered,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func randomColor() drawing.Color {
	return drawing.Color{
		R: uint8(rand.Intn(200) + 30),
		G: uint8(rand.Intn(200) + 30),
		B: uint8(rand.Intn(200) + 30),
		A: 255,
	}
}
