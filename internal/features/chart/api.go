package chart

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ChartApi struct {
	ChartController *ChartController
	Config          *config.Config
}

func NewChartApi(chartController *ChartController, cfg *config.Config) *ChartApi {
	return &ChartApi{
		ChartController: chartController,
		Config:          cfg,
	}
}

func (api *ChartApi) Setup(app *fiber.App) {
	group := app.Group("/api/charts", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/project", api.ChartController.Project)
}
