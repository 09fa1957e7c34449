package export

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	Controller *ExportController
	Config     *config.Config
}

func NewExportApi(controller *ExportController, cfg *config.Config) *ExportApi {
	return &ExportApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (a *ExportApi) Setup(app *fiber.App) {
	exports := app.Group("/api/export", middleware.AuthMiddleware(a.Config.SkipAuth))
	exports.Get("/reports/:id", a.Controller.Export)
}
