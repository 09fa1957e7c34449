package gateway

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PreviewApi struct {
	PreviewController *PreviewController
	Config            *config.Config
}

func NewPreviewApi(previewController *PreviewController, cfg *config.Config) *PreviewApi {
	return &PreviewApi{
		PreviewController: previewController,
		Config:            cfg,
	}
}

func (api *PreviewApi) Setup(app *fiber.App) {
	group := app.Group("/api/preview", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/run", api.PreviewController.Run)
	group.Post("/edit", api.PreviewController.Edit)
	group.Get("/", api.PreviewController.Snapshot)
}
