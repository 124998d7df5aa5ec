package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/scarnyc/spacewalks/pkg/config"
	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/dataset/datasettest"
	"github.com/scarnyc/spacewalks/pkg/metrics"
	"github.com/scarnyc/spacewalks/pkg/server"
	"github.com/scarnyc/spacewalks/pkg/service"
	"github.com/scarnyc/spacewalks/pkg/store/sql"
)

type staticLoader struct {
	table *dataset.Table
}

func (l staticLoader) Load(context.Context) (*dataset.Table, error) {
	return l.table, nil
}

func newApp(t *testing.T, load bool) *fiber.App {
	t.Helper()

	cfg := config.Default()
	cfg.Version = "1.2.3"

	evaStore, err := sql.NewSQLStore(context.Background(), cfg.Store)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, evaStore.Close())
	})

	m := metrics.New(cfg.Version)
	svc := service.NewEVAService(cfg, staticLoader{table: datasettest.Table(t)}, evaStore, m)

	if load {
		require.NoError(t, svc.Reload(context.Background()))
	}

	app, err := server.NewApp(cfg, svc, m)
	require.NoError(t, err)

	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()

	return do(t, app, httptest.NewRequest(http.MethodGet, target, nil))
}

func requireAPIError(t *testing.T, resp *http.Response, body []byte, status int, code contract.ErrorCode) {
	t.Helper()

	require.Equal(t, status, resp.StatusCode, string(body))

	var payload struct {
		ErrorCode contract.ErrorCode `json:"error_code"`
		Message   string             `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, code, payload.ErrorCode)
	assert.NotEmpty(t, payload.Message)
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}

	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

func byID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	}
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func parsePage(t *testing.T, app *fiber.App, target string) *html.Node {
	t.Helper()

	resp, body := get(t, app, target)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	doc, err := html.Parse(strings.NewReader(string(body)))
	require.NoError(t, err)

	return doc
}

func TestIndexServesChartContainer(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)
	doc := parsePage(t, app, "/")

	require.NotNil(t, findNode(doc, byID("eva-scatter")))

	link := findNode(doc, byID("repo-link"))
	require.NotNil(t, link)
	assert.Equal(t, config.DefaultRepoURL, attr(link, "href"))
	assert.Equal(t, "_blank", attr(link, "target"))
	assert.Equal(t, "Git Repo", link.FirstChild.Data)

	title := findNode(doc, byTag("title"))
	require.NotNil(t, title)
	assert.Equal(t, "U.S. & Russian EVAs, according to NASA (1965-2013)", title.FirstChild.Data)

	assert.Nil(t, findNode(doc, byTag("h1")))

	stylesheet := findNode(doc, byTag("link"))
	require.NotNil(t, stylesheet)
	assert.Contains(t, attr(stylesheet, "href"), "darkly")

	script := findNode(doc, func(n *html.Node) bool {
		return byTag("script")(n) && attr(n, "src") == "" && n.FirstChild != nil
	})
	require.NotNil(t, script)
	assert.Contains(t, script.FirstChild.Data, `"Longest EVA on Record"`)
	assert.Contains(t, script.FirstChild.Data, `Plotly.newPlot("eva-scatter"`)
}

func TestIndexVariants(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	header := parsePage(t, app, "/?variant=header")
	h1 := findNode(header, byTag("h1"))
	require.NotNil(t, h1)
	assert.Equal(t, "U.S. & Russian EVAs, according to NASA (1965-2013)", h1.FirstChild.Data)
	assert.NotNil(t, findNode(header, byID("repo-link")))

	compact := parsePage(t, app, "/?variant=compact")
	assert.NotNil(t, findNode(compact, byID("eva-scatter")))
	assert.Nil(t, findNode(compact, byID("repo-link")))
	assert.Nil(t, findNode(compact, byTag("h1")))

	resp, body := get(t, app, "/?variant=neon")
	requireAPIError(t, resp, body, fiber.StatusBadRequest, contract.ErrorCodeInvalidParameterValue)
}

func TestUnderMaintenanceBeforeLoad(t *testing.T) {
	t.Parallel()

	app := newApp(t, false)

	for _, target := range []string{"/", "/figure.json", "/chart.svg", "/api/1.0/summary", "/api/1.0/evas/search"} {
		resp, body := get(t, app, target)
		requireAPIError(t, resp, body, fiber.StatusServiceUnavailable, contract.ErrorCodeServiceUnderMaintenance)
	}

	resp, body := get(t, app, "/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestFigureEndpoints(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/figure.json")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fig struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Layout struct {
			Height int `json:"height"`
		} `json:"layout"`
	}
	require.NoError(t, json.Unmarshal(body, &fig))
	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Russia", fig.Data[0].Name)
	assert.Equal(t, "USA", fig.Data[1].Name)
	assert.Equal(t, 700, fig.Layout.Height)

	resp, body = get(t, app, "/figure.pb?variant=compact")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-protobuf", resp.Header.Get(fiber.HeaderContentType))

	var s structpb.Struct
	require.NoError(t, proto.Unmarshal(body, &s))
	assert.InDelta(t, 560, s.GetFields()["layout"].GetStructValue().GetFields()["height"].GetNumberValue(), 0)
}

func TestStaticCharts(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/chart.svg")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, string(body), "<svg")

	resp, body = get(t, app, "/chart.png")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "\x89PNG", string(body[:4]))
}

func TestSearchEVAs(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	query := url.Values{}
	query.Set("filter", "country = 'USA' AND duration > 400")
	query.Add("order_by", "duration DESC")
	query.Set("max_results", "2")

	resp, body := get(t, app, "/api/1.0/evas/search?"+query.Encode())
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var page contract.SearchEVAsResponse
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.EVAs, 2)
	assert.Equal(t, datasettest.LongestDate, page.EVAs[0].Date)
	assert.InDelta(t, datasettest.LongestMins, page.EVAs[0].DurationMinutes, 0)
	assert.GreaterOrEqual(t, page.EVAs[0].DurationMinutes, page.EVAs[1].DurationMinutes)

	req := httptest.NewRequest(
		http.MethodPost, "/api/1.0/evas/search",
		strings.NewReader(`{"filter": "country = 'Russia'", "max_results": 100}`),
	)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body = do(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var russia contract.SearchEVAsResponse
	require.NoError(t, json.Unmarshal(body, &russia))
	assert.Len(t, russia.EVAs, datasettest.RussiaRows)
	assert.Nil(t, russia.NextPageToken)

	for _, eva := range russia.EVAs {
		assert.Equal(t, "Russia", eva.Country)
	}
}

func TestSearchEVAsWalksAllPages(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	for _, size := range []string{"7", "10"} {
		seen := make(map[string]struct{})
		token := ""

		for pages := 1; ; pages++ {
			require.LessOrEqual(t, pages, datasettest.Rows, "max_results=%s does not terminate", size)

			query := url.Values{}
			query.Set("max_results", size)

			if token != "" {
				query.Set("page_token", token)
			}

			resp, body := get(t, app, "/api/1.0/evas/search?"+query.Encode())
			require.Equal(t, fiber.StatusOK, resp.StatusCode, "max_results=%s page=%d: %s", size, pages, body)

			var page contract.SearchEVAsResponse
			require.NoError(t, json.Unmarshal(body, &page))

			for _, eva := range page.EVAs {
				seen[eva.ID] = struct{}{}
			}

			if page.NextPageToken == nil {
				break
			}

			token = *page.NextPageToken
		}

		assert.Len(t, seen, datasettest.Rows, "max_results=%s", size)
	}
}

func TestSearchEVAsRejectsBadInput(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	for _, target := range []string{
		"/api/1.0/evas/search?filter=" + url.QueryEscape("color = 'red'"),
		"/api/1.0/evas/search?filter=" + url.QueryEscape("duration LIKE '5%'"),
		"/api/1.0/evas/search?order_by=" + url.QueryEscape("vehicle SIDEWAYS"),
		"/api/1.0/evas/search?max_results=0",
		"/api/1.0/evas/search?max_results=5000",
		"/api/1.0/evas/search?page_token=" + url.QueryEscape("not a token!"),
	} {
		resp, body := get(t, app, target)
		requireAPIError(t, resp, body, fiber.StatusBadRequest, contract.ErrorCodeInvalidParameterValue)
	}

	req := httptest.NewRequest(
		http.MethodPost, "/api/1.0/evas/search",
		strings.NewReader(`{"max_results": "many"}`),
	)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := do(t, app, req)
	requireAPIError(t, resp, body, fiber.StatusBadRequest, contract.ErrorCodeInvalidParameterValue)
	assert.Contains(t, string(body), "Invalid value many for parameter 'max_results'")
}

func TestGetEVA(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/api/1.0/evas/search?max_results=1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var page contract.SearchEVAsResponse
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.EVAs, 1)
	assert.Equal(t, datasettest.Earliest, page.EVAs[0].Date)
	require.NotNil(t, page.NextPageToken)

	resp, body = get(t, app, "/api/1.0/evas/"+page.EVAs[0].ID)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var got contract.GetEVAResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, page.EVAs[0], got.EVA)

	resp, body = get(t, app, "/api/1.0/evas/00000000-0000-0000-0000-000000000000")
	requireAPIError(t, resp, body, fiber.StatusNotFound, contract.ErrorCodeResourceDoesNotExist)

	resp, body = get(t, app, "/api/1.0/evas/voskhod-2")
	requireAPIError(t, resp, body, fiber.StatusBadRequest, contract.ErrorCodeInvalidParameterValue)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/api/1.0/summary")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary contract.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.EqualValues(t, datasettest.Rows, summary.Count)
	assert.Equal(t, datasettest.Earliest, summary.Earliest)
	assert.Equal(t, datasettest.Latest, summary.Latest)
	assert.Equal(t, "fixture", summary.Source)
	require.Len(t, summary.Countries, 2)
	assert.Equal(t, "Russia", summary.Countries[0].Country)
	assert.EqualValues(t, datasettest.USARows, summary.Countries[1].Count)
}

func TestUnknownEndpoint(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/api/1.0/runs/search")
	requireAPIError(t, resp, body, fiber.StatusNotFound, contract.ErrorCodeEndpointNotFound)
}

func TestVersionAndMetrics(t *testing.T) {
	t.Parallel()

	app := newApp(t, true)

	resp, body := get(t, app, "/version")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.2.3", string(body))
	assert.Equal(t, "evadash/1.2.3", resp.Header.Get(fiber.HeaderServer))

	get(t, app, "/api/1.0/summary")

	resp, body = get(t, app, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `evadash_build_info{version="1.2.3"} 1`)
	assert.Contains(t, string(body), `evadash_http_requests_total{code="200",route="/api/1.0/summary"} 1`)
	assert.Contains(t, string(body), `evadash_dataset_rows{country="USA"} 18`)
}
