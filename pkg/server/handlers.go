package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scarnyc/spacewalks/pkg/config"
	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/render"
	"github.com/scarnyc/spacewalks/pkg/service"
)

type handlers struct {
	config  *config.Config
	service *service.EVAService
	parser  *HTTPRequestParser
}

func (h *handlers) index(c *fiber.Ctx) error {
	fig, variant, err := h.service.Figure(c.Query("variant"))
	if err != nil {
		return err
	}

	figureJSON, jsonErr := json.Marshal(fig)
	if jsonErr != nil {
		return contract.NewErrorWith(contract.ErrorCodeInternal, "failed to encode figure", jsonErr)
	}

	title := variant.Title
	if title == "" {
		title = variant.Header
	}

	return c.Render("index", fiber.Map{
		"Title":         title,
		"Header":        variant.Header,
		"Variant":       variant.Name,
		"ShowRepoLink":  variant.ShowRepoLink,
		"RepoURL":       h.config.Dashboard.RepoURL,
		"StylesheetURL": StylesheetURL,
		"PlotlyURL":     PlotlyURL,
		"Version":       h.config.Version,
		//nolint:gosec
		"Figure": template.JS(figureJSON),
	})
}

func (h *handlers) figureJSON(c *fiber.Ctx) error {
	fig, _, err := h.service.Figure(c.Query("variant"))
	if err != nil {
		return err
	}

	return c.JSON(fig)
}

func (h *handlers) figureProto(c *fiber.Ctx) error {
	fig, _, err := h.service.Figure(c.Query("variant"))
	if err != nil {
		return err
	}

	body, protoErr := fig.MarshalProto()
	if protoErr != nil {
		return contract.NewErrorWith(contract.ErrorCodeInternal, "failed to encode figure", protoErr)
	}

	c.Set(fiber.HeaderContentType, "application/x-protobuf")

	return c.Send(body)
}

func (h *handlers) chart(c *fiber.Ctx) error {
	format, formatErr := render.ParseFormat(strings.TrimPrefix(path.Ext(c.Path()), "."))
	if formatErr != nil {
		return contract.NewError(contract.ErrorCodeBadRequest, formatErr.Error())
	}

	fig, _, err := h.service.Figure(c.Query("variant"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if renderErr := render.Render(&buf, fig, format); renderErr != nil {
		return contract.NewErrorWith(contract.ErrorCodeInternal, "failed to render chart", renderErr)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())

	return c.Send(buf.Bytes())
}

func (h *handlers) searchEVAs(c *fiber.Ctx, input *contract.SearchEVAs) error {
	output, err := h.service.SearchEVAs(c.Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(output)
}

func (h *handlers) searchEVAsQuery(c *fiber.Ctx) error {
	input := &contract.SearchEVAs{}
	if err := h.parser.ParseQuery(c, input); err != nil {
		return err
	}

	return h.searchEVAs(c, input)
}

func (h *handlers) searchEVAsBody(c *fiber.Ctx) error {
	input := &contract.SearchEVAs{}
	if err := h.parser.ParseBody(c, input); err != nil {
		return err
	}

	return h.searchEVAs(c, input)
}

func (h *handlers) getEVA(c *fiber.Ctx) error {
	input := &contract.GetEVA{}
	if err := h.parser.ParseParams(c, input); err != nil {
		return err
	}

	output, err := h.service.GetEVA(c.Context(), input)
	if err != nil {
		return err
	}

	return c.JSON(output)
}

func (h *handlers) summary(c *fiber.Ctx) error {
	output, err := h.service.Summary(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(output)
}
