package figure

import (
	"fmt"
	"html"
	"time"

	"github.com/scarnyc/spacewalks/pkg/dataset"
)

const (
	FirstEVADate   = "1965-03-15"
	MoonwalkDate   = "1969-07-15"
	LongestEVADate = "2001-03-15"

	FirstEVAText   = "World's 1st EVA"
	MoonwalkText   = "World's 1st Moonwalk"
	LongestEVAText = "Longest EVA on Record"

	subtitleText = "Extravehicular activity (EVA) related to space flight.<br>" +
		"Hover over the data points to learn more about the " +
		"crews and spaceshuttles for each EVA.<br>Use the slider " +
		"below the x-axis to select custom date ranges. <br>Double-click on " +
		"one of the colors on the legend to isolate a country on the plot.<br>"

	// BackgroundColor matches the Darkly page theme.
	BackgroundColor = "#222222"
	fontColor       = "#f2f5fa"
	axisLineColor   = "#506784"
	annotationColor = "white"

	maxMarkerSize = 20
	markerOpacity = 0.9
	arrowHead     = 4
	fontSize      = 20
	subtitleSize  = 15
)

// DarkColorway is the category palette of the plotly_dark template.
var DarkColorway = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

type Options struct {
	Variant Variant
	// Colors maps a country to a fixed color; other countries take the colorway.
	Colors map[string]string
}

func annotations(v Variant) []Annotation {
	marker := func(x string, y float64, text string) Annotation {
		return Annotation{
			X:         x,
			Y:         y,
			Text:      text,
			ShowArrow: true,
			ArrowHead: arrowHead,
			Font:      Font{Color: annotationColor},
		}
	}

	return []Annotation{
		{
			X:         v.SubtitleX,
			Y:         v.SubtitleY,
			Text:      subtitleText,
			ShowArrow: false,
			Align:     "center",
			Font:      Font{Color: annotationColor, Size: subtitleSize},
		},
		marker(FirstEVADate, 20, FirstEVAText),
		marker(MoonwalkDate, 170, MoonwalkText),
		marker(LongestEVADate, 560, LongestEVAText),
	}
}

func colorFor(country string, opts Options, next *int) string {
	if c, ok := opts.Colors[country]; ok {
		return c
	}

	c := DarkColorway[*next%len(DarkColorway)]
	*next++

	return c
}

func hoverTemplate(country string) string {
	return fmt.Sprintf(
		"<b>%%{hovertext}</b><br><br>%s=%s<br>%s=%%{x}<br>%s=%%{y}<br>%s=%%{customdata[0]}<br>%s=%%{customdata[1]}<extra></extra>",
		dataset.ColumnCountry, html.EscapeString(country),
		dataset.ColumnDate, dataset.ColumnDuration, dataset.ColumnCrew, dataset.ColumnPurpose,
	)
}

// Build maps the table onto a scatter figure: one trace per country, marker
// area proportional to duration.
//
//nolint:funlen
func Build(table *dataset.Table, opts Options) *Figure {
	sizeRef := 1.0
	if m := table.MaxDuration(); m > 0 {
		sizeRef = 2 * m / (maxMarkerSize * maxMarkerSize)
	}

	traces := make(map[string]*Trace)
	order := table.Countries()
	next := 0

	for _, country := range order {
		traces[country] = &Trace{
			Type:          "scatter",
			Mode:          "markers",
			Name:          country,
			LegendGroup:   country,
			ShowLegend:    true,
			HoverTemplate: hoverTemplate(country),
			Marker: Marker{
				Color:    colorFor(country, opts, &next),
				SizeMode: "area",
				SizeRef:  sizeRef,
				Symbol:   "circle",
				Opacity:  markerOpacity,
			},
			XAxis: "x",
			YAxis: "y",
		}
	}

	for _, r := range table.Records {
		trace := traces[r.Country]
		trace.X = append(trace.X, r.Date.Format(time.DateOnly))
		trace.Y = append(trace.Y, r.DurationMinutes)
		trace.Marker.Size = append(trace.Marker.Size, r.DurationMinutes)
		trace.HoverText = append(trace.HoverText, r.Vehicle)
		trace.CustomData = append(trace.CustomData, [2]string{r.Crew, r.Purpose})
	}

	data := make([]Trace, 0, len(order))
	for _, country := range order {
		data = append(data, *traces[country])
	}

	var dateRange []string
	if first, last := table.DateRange(); !first.IsZero() {
		dateRange = []string{first.Format(time.DateOnly), last.Format(time.DateOnly)}
	}

	layout := Layout{
		XAxis: Axis{
			Title:     Title{Text: dataset.ColumnDate},
			Type:      "date",
			AutoRange: true,
			Range:     dateRange,
			RangeSlider: &RangeSlider{
				Visible:   true,
				AutoRange: true,
				Range:     dateRange,
			},
			LineColor: axisLineColor,
		},
		YAxis: Axis{
			Title:     Title{Text: dataset.ColumnDuration},
			AutoRange: true,
			LineColor: axisLineColor,
		},
		Legend: Legend{
			Title:         Title{Text: dataset.ColumnCountry},
			TraceGroupGap: 0,
			ItemSizing:    "constant",
		},
		PaperBGColor: BackgroundColor,
		PlotBGColor:  BackgroundColor,
		Height:       opts.Variant.Height,
		Font:         Font{Color: fontColor, Size: fontSize},
		Annotations:  annotations(opts.Variant),
		HoverLabel:   HoverLabel{Font: Font{Size: 14}},
		HoverMode:    "closest",
		ColorWay:     DarkColorway,
	}

	if opts.Variant.Title != "" {
		layout.Title = &Title{Text: opts.Variant.Title}
	}

	return &Figure{Data: data, Layout: layout}
}

// Annotation returns the annotation carrying text, if any.
func (f *Figure) Annotation(text string) (Annotation, bool) {
	for _, a := range f.Layout.Annotations {
		if a.Text == text {
			return a, true
		}
	}

	return Annotation{}, false
}

// CheckAnnotations reports literal annotations that no longer match the data.
func CheckAnnotations(table *dataset.Table) []string {
	var mismatches []string

	if r := table.Earliest(); r != nil && r.Date.Format(time.DateOnly) != FirstEVADate {
		mismatches = append(mismatches, fmt.Sprintf(
			"%q is placed at %s but the earliest record is dated %s",
			FirstEVAText, FirstEVADate, r.Date.Format(time.DateOnly)))
	}

	if r := table.Longest(); r != nil && r.Date.Format(time.DateOnly) != LongestEVADate {
		mismatches = append(mismatches, fmt.Sprintf(
			"%q is placed at %s but the longest record (%g minutes) is dated %s",
			LongestEVAText, LongestEVADate, r.DurationMinutes, r.Date.Format(time.DateOnly)))
	}

	return mismatches
}
