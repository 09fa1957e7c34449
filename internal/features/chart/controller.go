package chart

import (
	"github.com/gofiber/fiber/v2"
)

type ChartController struct{}

func NewChartController() *ChartController {
	return &ChartController{}
}

type projectRequest struct {
	ChartType ChartType        `json:"chart_type"`
	Rows      []map[string]any `json:"rows"`
	Config    ProjectionConfig `json:"config"`
}

// Project godoc
// Stateless projection of already-fetched rows into a chart encoding.
func (c *ChartController) Project(ctx *fiber.Ctx) error {
	var req projectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	return ctx.JSON(Project(req.ChartType, req.Rows, req.Config))
}
