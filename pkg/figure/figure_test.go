package figure_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/dataset/datasettest"
	"github.com/scarnyc/spacewalks/pkg/figure"
)

func classic(t *testing.T) figure.Options {
	t.Helper()

	v, ok := figure.LookupVariant(figure.VariantClassic)
	require.True(t, ok)

	return figure.Options{
		Variant: v,
		Colors:  map[string]string{"Russia": "#FF0000", "USA": "#0000FF"},
	}
}

func TestLegendMatchesCountries(t *testing.T) {
	t.Parallel()

	table := datasettest.Table(t)
	fig := figure.Build(table, classic(t))

	if diff := cmp.Diff([]string{"Russia", "USA"}, fig.Countries()); diff != "" {
		t.Errorf("legend mismatch (-want +got):\n%s", diff)
	}

	points := 0
	for _, trace := range fig.Data {
		assert.Equal(t, "scatter", trace.Type)
		assert.Len(t, trace.Y, len(trace.X))
		assert.Len(t, trace.Marker.Size, len(trace.X))
		assert.Len(t, trace.CustomData, len(trace.X))
		assert.InDelta(t, 0.9, trace.Marker.Opacity, 0)
		points += len(trace.X)
	}

	assert.Equal(t, datasettest.Rows, points)
	assert.Equal(t, "#FF0000", fig.Data[0].Marker.Color)
	assert.Equal(t, "#0000FF", fig.Data[1].Marker.Color)
}

func TestUnmappedCountriesTakeColorway(t *testing.T) {
	t.Parallel()

	table := &dataset.Table{Records: []dataset.Record{
		{Country: "USA", Date: time.Date(1965, 6, 3, 0, 0, 0, 0, time.UTC), DurationMinutes: 36},
		{Country: "China", Date: time.Date(2008, 9, 27, 0, 0, 0, 0, time.UTC), DurationMinutes: 22},
	}}

	fig := figure.Build(table, classic(t))

	assert.Equal(t, "#0000FF", fig.Data[0].Marker.Color)
	assert.Equal(t, figure.DarkColorway[0], fig.Data[1].Marker.Color)
}

func TestAnnotationsMatchData(t *testing.T) {
	t.Parallel()

	table := datasettest.Table(t)
	fig := figure.Build(table, classic(t))

	first, ok := fig.Annotation(figure.FirstEVAText)
	require.True(t, ok)
	assert.Equal(t, table.Earliest().Date.Format(time.DateOnly), first.X)
	assert.Equal(t, "1965-03-15", first.X)

	longest, ok := fig.Annotation(figure.LongestEVAText)
	require.True(t, ok)
	assert.Equal(t, table.Longest().Date.Format(time.DateOnly), longest.X)
	assert.True(t, longest.ShowArrow)
	assert.Equal(t, 4, longest.ArrowHead)

	assert.Empty(t, figure.CheckAnnotations(table))
}

func TestCheckAnnotationsReportsDrift(t *testing.T) {
	t.Parallel()

	table := &dataset.Table{Records: []dataset.Record{
		{Country: "USA", Date: time.Date(1965, 6, 3, 0, 0, 0, 0, time.UTC), DurationMinutes: 36},
		{Country: "Russia", Date: time.Date(2013, 8, 16, 0, 0, 0, 0, time.UTC), DurationMinutes: 434},
	}}

	assert.Len(t, figure.CheckAnnotations(table), 2)
}

func TestLayout(t *testing.T) {
	t.Parallel()

	table := datasettest.Table(t)
	fig := figure.Build(table, classic(t))

	assert.Equal(t, 700, fig.Layout.Height)
	assert.Equal(t, "#222222", fig.Layout.PaperBGColor)
	assert.Equal(t, "#222222", fig.Layout.PlotBGColor)
	assert.Equal(t, "date", fig.Layout.XAxis.Type)
	assert.Equal(t, []string{datasettest.Earliest, datasettest.Latest}, fig.Layout.XAxis.Range)
	require.NotNil(t, fig.Layout.XAxis.RangeSlider)
	assert.True(t, fig.Layout.XAxis.RangeSlider.Visible)
	require.NotNil(t, fig.Layout.Title)
	assert.Equal(t, "U.S. & Russian EVAs, according to NASA (1965-2013)", fig.Layout.Title.Text)

	subtitle := fig.Layout.Annotations[0]
	assert.False(t, subtitle.ShowArrow)
	assert.Equal(t, "1970-01-01", subtitle.X)
}

func TestVariants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"classic", "compact", "header"}, figure.VariantNames())

	links := 0
	for _, name := range figure.VariantNames() {
		v, ok := figure.LookupVariant(name)
		require.True(t, ok)
		if v.ShowRepoLink {
			links++
		}
	}
	assert.Equal(t, 2, links)

	header, _ := figure.LookupVariant(figure.VariantHeader)
	fig := figure.Build(datasettest.Table(t), figure.Options{Variant: header})
	assert.Nil(t, fig.Layout.Title)
	assert.Equal(t, header.Height, fig.Layout.Height)

	_, ok := figure.LookupVariant("fancy")
	assert.False(t, ok)
}

func TestJSONKeepsFalseFlags(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(figure.Build(datasettest.Table(t), classic(t)))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	layout := raw["layout"].(map[string]any)
	xaxis := layout["xaxis"].(map[string]any)
	assert.Equal(t, false, xaxis["zeroline"])
	assert.Equal(t, false, xaxis["showgrid"])

	subtitle := layout["annotations"].([]any)[0].(map[string]any)
	assert.Equal(t, false, subtitle["showarrow"])
}

func TestMarshalProto(t *testing.T) {
	t.Parallel()

	b, err := figure.Build(datasettest.Table(t), classic(t)).MarshalProto()
	require.NoError(t, err)

	var s structpb.Struct
	require.NoError(t, proto.Unmarshal(b, &s))

	data := s.GetFields()["data"].GetListValue().GetValues()
	require.Len(t, data, 2)
	assert.Equal(t, "Russia", data[0].GetStructValue().GetFields()["name"].GetStringValue())
}
