// Package render draws the spacewalk figure as a static SVG or PNG image for
// clients that cannot run plotly.js.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/scarnyc/spacewalks/pkg/figure"
)

type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

const (
	defaultWidth = 1280
	maxDotWidth  = 14
	minDotWidth  = 2
	rangePadding = 180 * 24 * time.Hour
)

var ErrNoData = errors.New("figure has no data points")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case SVG, PNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (want svg or png)", s)
	}
}

func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}

	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}

	return chart.SVG
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// pointStyle draws markers only. Dot widths follow the trace's marker sizes
// so that the dot area grows with the duration.
func pointStyle(trace figure.Trace, maxSize float64) chart.Style {
	sizes := trace.Marker.Size
	col := color(trace.Marker.Color).WithAlpha(uint8(math.Round(255 * trace.Marker.Opacity)))

	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotColor:    col,
		DotWidth:    minDotWidth,
		DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
			if index >= len(sizes) || maxSize <= 0 {
				return minDotWidth
			}

			return math.Max(minDotWidth, maxDotWidth*math.Sqrt(sizes[index]/maxSize))
		},
	}
}

type bounds struct {
	first, last time.Time
	maxY        float64
}

func (b *bounds) add(t time.Time, y float64) {
	if b.first.IsZero() || t.Before(b.first) {
		b.first = t
	}

	if t.After(b.last) {
		b.last = t
	}

	b.maxY = math.Max(b.maxY, y)
}

func parseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, len(values))

	for i, v := range values {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q in figure: %w", v, err)
		}

		dates[i] = t
	}

	return dates, nil
}

// Chart converts the figure into a go-chart chart.
//
//nolint:funlen
func Chart(fig *figure.Figure) (*chart.Chart, error) {
	var (
		series  []chart.Series
		extents bounds
		maxSize float64
	)

	for _, trace := range fig.Data {
		for _, s := range trace.Marker.Size {
			maxSize = math.Max(maxSize, s)
		}
	}

	for _, trace := range fig.Data {
		if len(trace.X) == 0 {
			continue
		}

		dates, err := parseDates(trace.X)
		if err != nil {
			return nil, err
		}

		for i, d := range dates {
			extents.add(d, trace.Y[i])
		}

		series = append(series, chart.TimeSeries{
			Name:    trace.Name,
			Style:   pointStyle(trace, maxSize),
			XValues: dates,
			YValues: trace.Y,
		})
	}

	if len(series) == 0 {
		return nil, ErrNoData
	}

	labels := chart.AnnotationSeries{
		Style: chart.Style{
			FillColor:   color(figure.BackgroundColor),
			FontColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorWhite,
		},
	}

	for _, a := range fig.Layout.Annotations {
		if !a.ShowArrow {
			continue
		}

		t, err := time.Parse(time.DateOnly, a.X)
		if err != nil {
			return nil, fmt.Errorf("invalid annotation date %q: %w", a.X, err)
		}

		labels.Annotations = append(labels.Annotations, chart.Value2{
			XValue: chart.TimeToFloat64(t),
			YValue: a.Y,
			Label:  a.Text,
		})
	}

	if len(labels.Annotations) > 0 {
		series = append(series, labels)
	}

	bg := color(fig.Layout.PaperBGColor)
	fg := color(fig.Layout.Font.Color)
	axis := chart.Style{FontColor: fg, StrokeColor: color(fig.Layout.XAxis.LineColor)}

	maxY := extents.maxY
	if maxY <= 0 {
		maxY = 1
	}

	title := ""
	if fig.Layout.Title != nil {
		title = fig.Layout.Title.Text
	}

	ch := &chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: fg, FontSize: 16},
		Width:      defaultWidth,
		Height:     fig.Layout.Height,
		Background: chart.Style{
			FillColor: bg,
			Padding:   chart.Box{Top: 48, Left: 24, Right: 24, Bottom: 24},
		},
		Canvas: chart.Style{FillColor: bg},
		XAxis: chart.XAxis{
			Name:           fig.Layout.XAxis.Title.Text,
			NameStyle:      chart.Style{FontColor: fg},
			Style:          axis,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006"),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(extents.first.Add(-rangePadding)),
				Max: chart.TimeToFloat64(extents.last.Add(rangePadding)),
			},
		},
		YAxis: chart.YAxis{
			Name:      fig.Layout.YAxis.Title.Text,
			NameStyle: chart.Style{FontColor: fg},
			Style:     axis,
			Range:     &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: series,
	}

	if ch.Height <= 0 {
		ch.Height = chart.DefaultChartHeight
	}

	ch.Elements = []chart.Renderable{chart.Legend(ch, chart.Style{
		FillColor:   bg,
		FontColor:   fg,
		StrokeColor: fg,
	})}

	return ch, nil
}

// Render writes the figure to w in the given format.
func Render(w io.Writer, fig *figure.Figure, format Format) error {
	ch, err := Chart(fig)
	if err != nil {
		return err
	}

	if err := ch.Render(format.provider(), w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", format, err)
	}

	return nil
}
