package catalog

import (
	"github.com/gofiber/fiber/v2"
)

type CatalogController struct {
	Catalog *Catalog
}

func NewCatalogController(catalog *Catalog) *CatalogController {
	return &CatalogController{Catalog: catalog}
}

// List godoc
func (c *CatalogController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(c.Catalog.Sources())
}

// Get godoc
func (c *CatalogController) Get(ctx *fiber.Ctx) error {
	key := ctx.Params("source")
	ds, ok := c.Catalog.Source(key)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Data source not found"})
	}
	return ctx.JSON(ds)
}
