package gateway

import (
	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/chart"
	"cxtrack/internal/features/report"
	"cxtrack/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PreviewController struct {
	Executor Executor
	Sessions *SessionManager
	Catalog  *catalog.Catalog
	Logger   *zap.Logger
}

func NewPreviewController(executor Executor, sessions *SessionManager, cat *catalog.Catalog, logger *zap.Logger) *PreviewController {
	return &PreviewController{
		Executor: executor,
		Sessions: sessions,
		Catalog:  cat,
		Logger:   logger,
	}
}

type previewRequest struct {
	ReportConfig report.ReportConfig `json:"report_config"`
}

// Run godoc
// Manual preview: executes immediately and responds with rows plus the chart
// projection. Execution failures come back as an empty row set with a
// retrievable error message, not a 500.
func (c *PreviewController) Run(ctx *fiber.Ctx) error {
	var req previewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, orgID, err := callerOrg(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	if len(req.ReportConfig.Metrics) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one metric is required"})
	}

	rows, execErr := c.Executor.Execute(ctx.Context(), orgID, req.ReportConfig)
	if rows == nil {
		rows = []Row{}
	}
	errMsg := ""
	if execErr != nil {
		c.Logger.Warn("report execution failed",
			zap.String("user_id", claims.UserID),
			zap.String("data_source", req.ReportConfig.DataSource),
			zap.Error(execErr))
		errMsg = execErr.Error()
		rows = []Row{}
	}

	return ctx.JSON(fiber.Map{
		"rows":  rows,
		"error": errMsg,
		"chart": chart.Project(req.ReportConfig.ChartType, rows, req.ReportConfig.Projection()),
	})
}

// Edit godoc
// Auto-preview: records a configuration edit; one execution fires after the
// edits settle for the debounce window.
func (c *PreviewController) Edit(ctx *fiber.Ctx) error {
	var req previewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims, orgID, err := callerOrg(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	c.Sessions.Session(claims.UserID).Edit(orgID, req.ReportConfig)
	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "scheduled"})
}

// Snapshot godoc
// Returns the latest settled preview for the caller's editing session.
func (c *PreviewController) Snapshot(ctx *fiber.Ctx) error {
	claims, _, err := callerOrg(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	session := c.Sessions.Session(claims.UserID)
	rows, errMsg, loaded := session.Snapshot()
	if rows == nil {
		rows = []Row{}
	}

	resp := fiber.Map{
		"loaded": loaded,
		"rows":   rows,
		"error":  errMsg,
	}
	if loaded {
		cfg := session.LastConfig()
		resp["chart"] = chart.Project(cfg.ChartType, rows, cfg.Projection())
	}
	return ctx.JSON(resp)
}

func callerOrg(ctx *fiber.Ctx) (*utils.UserClaims, primitive.ObjectID, error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return nil, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "user claims not found")
	}
	orgID, err := primitive.ObjectIDFromHex(claims.OrganizationID)
	if err != nil {
		return nil, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "invalid organization id")
	}
	return claims, orgID, nil
}
