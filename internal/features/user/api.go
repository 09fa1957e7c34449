package user

import (
	"cxtrack/internal/config"
	"cxtrack/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	Controller *UserController
	Config     *config.Config
}

func NewUserApi(controller *UserController, cfg *config.Config) *UserApi {
	return &UserApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (a *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(a.Config.SkipAuth))
	users.Get("/", a.Controller.List)
	users.Get("/:id", a.Controller.Get)
}
