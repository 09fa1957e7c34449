package report

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	Controller *ReportController
	Config     *config.Config
}

func NewReportApi(controller *ReportController, cfg *config.Config) *ReportApi {
	return &ReportApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (a *ReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports", middleware.AuthMiddleware(a.Config.SkipAuth))

	reports.Get("/", a.Controller.List)
	reports.Post("/", a.Controller.Create)
	reports.Get("/:id", a.Controller.Get)
	reports.Put("/:id", a.Controller.Update)
	reports.Delete("/:id", a.Controller.Delete)
	reports.Post("/:id/duplicate", a.Controller.Duplicate)
	reports.Post("/:id/favorite", a.Controller.ToggleFavorite)
	reports.Post("/:id/public", a.Controller.TogglePublic)

	reports.Get("/:id/shares", a.Controller.ListShares)
	reports.Post("/:id/shares", a.Controller.AddShare)
	reports.Put("/:id/shares/:shareId", a.Controller.UpdateShare)
	reports.Delete("/:id/shares/:shareId", a.Controller.RemoveShare)
}
