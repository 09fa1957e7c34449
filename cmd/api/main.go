package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "cxtrack/internal/common/api"
	"cxtrack/internal/config"
	"cxtrack/internal/database"
	"cxtrack/internal/features/audit"
	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/chart"
	"cxtrack/internal/features/export"
	"cxtrack/internal/features/gateway"
	"cxtrack/internal/features/maintenance"
	"cxtrack/internal/features/report"
	"cxtrack/internal/features/user"
	"cxtrack/internal/logger"
	"cxtrack/internal/middleware"
	"cxtrack/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, reportRepo report.ReportRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := reportRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure report indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// NewSQLExecutor opens the external Postgres source when configured. A nil
// executor means external catalog entries are unavailable.
func NewSQLExecutor(cfg *config.Config, cat *catalog.Catalog) (*gateway.SQLExecutor, error) {
	if cfg.PostgresURI == "" {
		return nil, nil
	}
	return gateway.NewSQLExecutor(cfg.PostgresURI, cat)
}

func NewSessionManager(exec gateway.Executor, cfg *config.Config) *gateway.SessionManager {
	return gateway.NewSessionManager(exec, cfg.PreviewDebounce)
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Data source catalog
			catalog.New,

			// Initialize Repository
			report.NewReportRepository,
			report.NewShareRepository,
			user.NewUserRepository,
			audit.NewAuditRepository,

			// Execution gateway
			gateway.NewMongoExecutor,
			NewSQLExecutor,
			gateway.NewDispatcher,
			NewSessionManager,

			audit.NewAuditService,
			user.NewUserService,
			report.NewReportService,
			export.NewExportService,
			maintenance.NewScheduler,

			// Interface adapters
			func(r user.UserRepository) audit.UserFinder { return r },
			func(d *gateway.Dispatcher) gateway.Executor { return d },

			// Initialize Controller
			catalog.NewCatalogController,
			report.NewReportController,
			gateway.NewPreviewController,
			chart.NewChartController,
			export.NewExportController,
			audit.NewAuditController,
			user.NewUserController,

			// Initialize API Routes
			AsRoute(catalog.NewCatalogApi),
			AsRoute(report.NewReportApi),
			AsRoute(gateway.NewPreviewApi),
			AsRoute(chart.NewChartApi),
			AsRoute(export.NewExportApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(user.NewUserApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, scheduler *maintenance.Scheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return scheduler.Start()
					},
					OnStop: func(ctx context.Context) error {
						scheduler.Stop()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
