// Package figure builds the plotly figure of the spacewalk scatter plot.
//
// The types mirror the subset of the plotly.js figure schema the dashboard
// uses; they marshal to JSON that Plotly.newPlot accepts directly.
package figure

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Marker struct {
	Color    string    `json:"color"`
	Size     []float64 `json:"size"`
	SizeMode string    `json:"sizemode"`
	SizeRef  float64   `json:"sizeref"`
	Symbol   string    `json:"symbol"`
	Opacity  float64   `json:"opacity"`
}

type Trace struct {
	Type          string      `json:"type"`
	Mode          string      `json:"mode"`
	Name          string      `json:"name"`
	LegendGroup   string      `json:"legendgroup"`
	ShowLegend    bool        `json:"showlegend"`
	X             []string    `json:"x"`
	Y             []float64   `json:"y"`
	HoverText     []string    `json:"hovertext"`
	CustomData    [][2]string `json:"customdata"`
	HoverTemplate string      `json:"hovertemplate"`
	Marker        Marker      `json:"marker"`
	XAxis         string      `json:"xaxis"`
	YAxis         string      `json:"yaxis"`
}

type Font struct {
	Color  string  `json:"color,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Family string  `json:"family,omitempty"`
}

type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

type RangeSlider struct {
	Visible   bool     `json:"visible"`
	AutoRange bool     `json:"autorange"`
	Range     []string `json:"range,omitempty"`
}

type Axis struct {
	Title       Title        `json:"title"`
	Type        string       `json:"type,omitempty"`
	ZeroLine    bool         `json:"zeroline"`
	ShowGrid    bool         `json:"showgrid"`
	AutoRange   bool         `json:"autorange"`
	Range       []string     `json:"range,omitempty"`
	RangeSlider *RangeSlider `json:"rangeslider,omitempty"`
	Color       string       `json:"color,omitempty"`
	LineColor   string       `json:"linecolor,omitempty"`
}

type Legend struct {
	Title          Title   `json:"title"`
	TraceGroupGap  float64 `json:"tracegroupgap"`
	ItemSizing     string  `json:"itemsizing"`
	BackgroundFill string  `json:"bgcolor,omitempty"`
}

type Annotation struct {
	X          string  `json:"x"`
	Y          float64 `json:"y"`
	Text       string  `json:"text"`
	ShowArrow  bool    `json:"showarrow"`
	ArrowHead  int     `json:"arrowhead,omitempty"`
	ArrowColor string  `json:"arrowcolor,omitempty"`
	Align      string  `json:"align,omitempty"`
	Font       Font    `json:"font"`
}

type HoverLabel struct {
	Font Font `json:"font"`
}

type Layout struct {
	Title        *Title       `json:"title,omitempty"`
	XAxis        Axis         `json:"xaxis"`
	YAxis        Axis         `json:"yaxis"`
	Legend       Legend       `json:"legend"`
	PaperBGColor string       `json:"paper_bgcolor"`
	PlotBGColor  string       `json:"plot_bgcolor"`
	Height       int          `json:"height"`
	Font         Font         `json:"font"`
	Annotations  []Annotation `json:"annotations"`
	HoverLabel   HoverLabel   `json:"hoverlabel"`
	HoverMode    string       `json:"hovermode"`
	ColorWay     []string     `json:"colorway"`
}

// Countries returns the legend entries in trace order.
func (f *Figure) Countries() []string {
	names := make([]string, 0, len(f.Data))
	for _, trace := range f.Data {
		if trace.ShowLegend {
			names = append(names, trace.Name)
		}
	}

	return names
}
