package catalog

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CatalogApi struct {
	CatalogController *CatalogController
	Config            *config.Config
}

func NewCatalogApi(catalogController *CatalogController, config *config.Config) *CatalogApi {
	return &CatalogApi{
		CatalogController: catalogController,
		Config:            config,
	}
}

func (api *CatalogApi) Setup(app *fiber.App) {
	group := app.Group("/api/catalog", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.CatalogController.List)
	group.Get("/:source", api.CatalogController.Get)
}
