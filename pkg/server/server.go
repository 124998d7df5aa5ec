package server

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"

	"github.com/scarnyc/spacewalks/pkg/config"
	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/metrics"
	"github.com/scarnyc/spacewalks/pkg/service"
)

//go:embed views
var views embed.FS

const (
	StylesheetURL = "https://cdn.jsdelivr.net/npm/bootswatch@4.5.2/dist/darkly/bootstrap.min.css"
	PlotlyURL     = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

func newViewEngine() (*html.Engine, error) {
	root, err := fs.Sub(views, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded views: %w", err)
	}

	return html.NewFileSystem(http.FS(root), ".html"), nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	e := toContractError(err)

	var fn func(format string, args ...any)

	switch e.StatusCode() {
	case fiber.StatusBadRequest:
		fn = logrus.Infof
	case fiber.StatusServiceUnavailable:
		fn = logrus.Warnf
	case fiber.StatusNotFound:
		fn = logrus.Debugf
	default:
		fn = logrus.Errorf
	}

	fn("Error encountered in %s %s: %s", c.Method(), c.Path(), err)

	return c.Status(e.StatusCode()).JSON(e)
}

func toContractError(err error) *contract.Error {
	var e *contract.Error
	if errors.As(err, &e) {
		return e
	}

	code := contract.ErrorCodeInternal

	var f *fiber.Error
	if errors.As(err, &f) {
		switch f.Code {
		case fiber.StatusBadRequest:
			code = contract.ErrorCodeBadRequest
		case fiber.StatusServiceUnavailable:
			code = contract.ErrorCodeServiceUnderMaintenance
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			code = contract.ErrorCodeEndpointNotFound
		}
	}

	return contract.NewError(code, err.Error())
}

// statusOf reports the status a request will be answered with, including
// requests whose error has not reached the error handler yet.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}

	return toContractError(err).StatusCode()
}

func observeRequests(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		route := c.Route().Path

		var f *fiber.Error
		if errors.As(err, &f) && f.Code == fiber.StatusNotFound {
			route = "unmatched"
		}

		m.ObserveRequest(route, fmt.Sprint(statusOf(c, err)))

		return err
	}
}

// NewApp assembles the dashboard and API routes around the service.
func NewApp(cfg *config.Config, svc *service.EVAService, m *metrics.Metrics) (*fiber.App, error) {
	engine, err := newViewEngine()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             1024 * 1024,
		ReadBufferSize:        16384,
		ReadTimeout:           cfg.Server.ReadTimeout.Duration,
		WriteTimeout:          cfg.Server.WriteTimeout.Duration,
		IdleTimeout:           cfg.Server.IdleTimeout.Duration,
		ServerHeader:          "evadash/" + cfg.Version,
		DisableStartupMessage: true,
		Views:                 engine,
		ErrorHandler:          errorHandler,
	})

	app.Use(compress.New())
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Output: logrus.StandardLogger().Writer(),
	}))
	app.Use(observeRequests(m))

	parser, err := NewHTTPRequestParser()
	if err != nil {
		return nil, err
	}

	h := &handlers{config: cfg, service: svc, parser: parser}

	app.Get("/", h.index)
	app.Get("/figure.json", h.figureJSON)
	app.Get("/figure.pb", h.figureProto)
	app.Get("/chart.svg", h.chart)
	app.Get("/chart.png", h.chart)

	api := app.Group("/api/1.0")
	api.Get("/evas/search", h.searchEVAsQuery)
	api.Post("/evas/search", h.searchEVAsBody)
	api.Get("/evas/:id", h.getEVA)
	api.Get("/summary", h.summary)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.SendString(cfg.Version)
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	return app, nil
}
