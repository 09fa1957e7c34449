package audit

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	Controller *AuditController
	Config     *config.Config
}

func NewAuditApi(controller *AuditController, cfg *config.Config) *AuditApi {
	return &AuditApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (a *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(a.Config.SkipAuth))
	audit.Get("/", a.Controller.ListLogs)
}
