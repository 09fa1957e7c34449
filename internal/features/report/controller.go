package report

import (
	"errors"

	"cxtrack/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReportController struct {
	Service ReportService
	Logger  *zap.Logger
}

func NewReportController(service ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{
		Service: service,
		Logger:  logger,
	}
}

func (c *ReportController) Create(ctx *fiber.Ctx) error {
	var input CreateReportInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.Create(ctx.UserContext(), orgID, userID, input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

func (c *ReportController) Get(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(report)
}

// List godoc
// Supports ?q= substring search, ?source= data source filter and
// ?sort=newest|name|favorites.
func (c *ReportController) List(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	sortBy := SortBy(ctx.Query("sort", string(SortByNewest)))
	reports, err := c.Service.List(ctx.UserContext(), orgID, userID, ctx.Query("q"), ctx.Query("source"), sortBy)
	if err != nil {
		return respondError(ctx, err)
	}
	if reports == nil {
		reports = []CustomReport{}
	}
	return ctx.JSON(fiber.Map{"reports": reports, "total": len(reports)})
}

func (c *ReportController) Update(ctx *fiber.Ctx) error {
	var input UpdateReportInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.Update(ctx.UserContext(), ctx.Params("id"), orgID, userID, input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(report)
}

func (c *ReportController) Duplicate(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.Duplicate(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

func (c *ReportController) ToggleFavorite(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.ToggleFavorite(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(report)
}

func (c *ReportController) TogglePublic(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := c.Service.TogglePublic(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(report)
}

func (c *ReportController) Delete(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.Delete(ctx.UserContext(), ctx.Params("id"), orgID, userID); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Report deleted successfully"})
}

func (c *ReportController) AddShare(ctx *fiber.Ctx) error {
	var input ShareInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	share, err := c.Service.AddShare(ctx.UserContext(), ctx.Params("id"), orgID, userID, input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(share)
}

func (c *ReportController) UpdateShare(ctx *fiber.Ctx) error {
	var input struct {
		Permission Permission `json:"permission"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.UpdateShare(ctx.UserContext(), ctx.Params("id"), ctx.Params("shareId"), orgID, userID, input.Permission); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Share updated successfully"})
}

func (c *ReportController) RemoveShare(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.RemoveShare(ctx.UserContext(), ctx.Params("id"), ctx.Params("shareId"), orgID, userID); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"message": "Share removed successfully"})
}

func (c *ReportController) ListShares(ctx *fiber.Ctx) error {
	orgID, userID, err := caller(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	shares, err := c.Service.ListShares(ctx.UserContext(), ctx.Params("id"), orgID, userID)
	if err != nil {
		return respondError(ctx, err)
	}
	if shares == nil {
		shares = []ReportShare{}
	}
	return ctx.JSON(fiber.Map{"shares": shares})
}

func caller(ctx *fiber.Ctx) (orgID, userID primitive.ObjectID, err error) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "user claims not found")
	}
	orgID, err = primitive.ObjectIDFromHex(claims.OrganizationID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fiber.NewError(fiber.StatusUnauthorized, "invalid organization id")
	}
	userID, err = primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		// Dev tokens carry a non-ObjectID user id
		userID = primitive.NilObjectID
		err = nil
	}
	return orgID, userID, nil
}

func respondError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrSelfShare), errors.Is(err, ErrAlreadyShared):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
