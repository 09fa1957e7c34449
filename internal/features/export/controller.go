package export

import (
	"fmt"
	"time"

	common_models "cxtrack/internal/common/models"
	"cxtrack/internal/features/audit"
	"cxtrack/internal/features/gateway"
	"cxtrack/internal/features/report"
	"cxtrack/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ExportController struct {
	Reports  report.ReportService
	Executor gateway.Executor
	Exporter ExportService
	Audit    audit.AuditService
	Logger   *zap.Logger
}

func NewExportController(reports report.ReportService, executor gateway.Executor, exporter ExportService, auditSvc audit.AuditService, logger *zap.Logger) *ExportController {
	return &ExportController{
		Reports:  reports,
		Executor: executor,
		Exporter: exporter,
		Audit:    auditSvc,
		Logger:   logger,
	}
}

// Export godoc
// Runs a saved report and streams it as a file download. Format is selected
// with ?format=csv|pdf|xlsx, defaulting to csv.
func (c *ExportController) Export(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "user claims not found"})
	}
	orgID, err := primitive.ObjectIDFromHex(claims.OrganizationID)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid organization id"})
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		userID = primitive.NilObjectID
	}

	saved, err := c.Reports.Get(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		if err == report.ErrNotFound {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if err == report.ErrForbidden {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	rows, err := c.Executor.Execute(ctx.UserContext(), orgID, saved.ReportConfig)
	if err != nil {
		c.Logger.Error("report execution failed for export",
			zap.String("report_id", ctx.Params("id")),
			zap.Error(err))
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "report execution failed"})
	}

	columns := Columns(saved.ReportConfig, rows)
	format := ctx.Query("format", "csv")

	var payload []byte
	var contentType, ext string
	switch format {
	case "csv":
		payload, err = c.Exporter.ToCSV(columns, rows)
		contentType, ext = "text/csv", "csv"
	case "pdf":
		payload, err = c.Exporter.ToPDF(saved.Name, columns, rows, time.Now())
		contentType, ext = "application/pdf", "pdf"
	case "xlsx":
		payload, err = c.Exporter.ToExcel(columns, rows)
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "format must be csv, pdf or xlsx"})
	}
	if err != nil {
		c.Logger.Error("export generation failed",
			zap.String("report_id", ctx.Params("id")),
			zap.String("format", format),
			zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate export"})
	}

	if auditErr := c.Audit.LogChange(ctx.UserContext(), common_models.AuditActionExport, "report", saved.ID.Hex(), map[string]common_models.Change{
		"format": {Old: nil, New: format},
	}); auditErr != nil {
		c.Logger.Warn("failed to write audit log", zap.Error(auditErr))
	}

	filename := fmt.Sprintf("%s_%s.%s", utils.Slugify(saved.Name), time.Now().Format("2006-01-02"), ext)
	ctx.Set(fiber.HeaderContentType, contentType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(payload)
}
