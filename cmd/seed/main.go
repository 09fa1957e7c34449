package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	common_models "cxtrack/internal/common/models"
	"cxtrack/internal/config"
	"cxtrack/internal/database"
	"cxtrack/internal/features/chart"
	"cxtrack/internal/features/report"
	"cxtrack/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var (
	invoiceStatuses = []string{"draft", "sent", "paid", "overdue"}
	taskStatuses    = []string{"open", "in_progress", "done"}
	pipelineStages  = []string{"lead", "qualified", "proposal", "negotiation", "won", "lost"}
	industries      = []string{"Software", "Manufacturing", "Retail", "Healthcare", "Finance"}
	firstNames      = []string{"Ava", "Liam", "Mia", "Noah", "Zoe", "Eli", "Ivy", "Max"}
	lastNames       = []string{"Carter", "Nguyen", "Patel", "Kim", "Lopez", "Weber", "Sato", "Ali"}
)

// Seed fills the development database with demo records for every internal
// data source plus a couple of saved reports.
func Seed(
	lc fx.Lifecycle,
	db *database.MongodbDB,
	reportRepo report.ReportRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding demo data...")

				rng := rand.New(rand.NewSource(42))
				orgID, _ := primitive.ObjectIDFromHex("000000000000000000000000")
				now := time.Now()

				// Demo users
				users := make([]interface{}, 0, 5)
				userIDs := make([]primitive.ObjectID, 0, 5)
				for i := 0; i < 5; i++ {
					id := primitive.NewObjectID()
					userIDs = append(userIDs, id)
					name := firstNames[i] + " " + lastNames[i]
					users = append(users, common_models.User{
						ID:             id,
						OrganizationID: orgID,
						Username:       fmt.Sprintf("demo%d", i+1),
						Email:          fmt.Sprintf("demo%d@example.com", i+1),
						FullName:       name,
						CreatedAt:      now,
						UpdatedAt:      now,
					})
				}
				if _, err := db.DB.Collection("users").InsertMany(ctx, users); err != nil {
					logger.Warn("Failed to seed users", zap.Error(err))
				}

				// Customers
				customers := make([]interface{}, 0, 40)
				for i := 0; i < 40; i++ {
					customers = append(customers, bson.M{
						"_id":             primitive.NewObjectID(),
						"organization_id": orgID,
						"name":            fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))]),
						"industry":        industries[rng.Intn(len(industries))],
						"status":          []string{"active", "churned", "prospect"}[rng.Intn(3)],
						"owner_name":      firstNames[rng.Intn(len(firstNames))],
						"lifetime_value":  float64(rng.Intn(90000) + 1000),
						"created_at":      now.AddDate(0, 0, -rng.Intn(365)),
					})
				}
				if _, err := db.DB.Collection("customers").InsertMany(ctx, customers); err != nil {
					logger.Warn("Failed to seed customers", zap.Error(err))
				}

				// Invoices
				invoices := make([]interface{}, 0, 120)
				for i := 0; i < 120; i++ {
					issued := now.AddDate(0, 0, -rng.Intn(180))
					total := float64(rng.Intn(9500) + 500)
					invoices = append(invoices, bson.M{
						"_id":             primitive.NewObjectID(),
						"organization_id": orgID,
						"invoice_number":  fmt.Sprintf("INV-%04d", i+1),
						"customer_name":   fmt.Sprintf("%s %s", firstNames[rng.Intn(len(firstNames))], lastNames[rng.Intn(len(lastNames))]),
						"status":          invoiceStatuses[rng.Intn(len(invoiceStatuses))],
						"total_amount":    total,
						"amount_paid":     total * float64(rng.Intn(101)) / 100,
						"issue_date":      issued,
						"due_date":        issued.AddDate(0, 1, 0),
					})
				}
				if _, err := db.DB.Collection("invoices").InsertMany(ctx, invoices); err != nil {
					logger.Warn("Failed to seed invoices", zap.Error(err))
				}

				// Pipeline items
				items := make([]interface{}, 0, 60)
				for i := 0; i < 60; i++ {
					items = append(items, bson.M{
						"_id":             primitive.NewObjectID(),
						"organization_id": orgID,
						"title":           fmt.Sprintf("Deal %d", i+1),
						"stage":           pipelineStages[rng.Intn(len(pipelineStages))],
						"deal_value":      float64(rng.Intn(50000) + 1000),
						"probability":     float64(rng.Intn(100)),
						"owner_name":      firstNames[rng.Intn(len(firstNames))],
						"expected_close":  now.AddDate(0, 0, rng.Intn(90)),
						"created_at":      now.AddDate(0, 0, -rng.Intn(120)),
					})
				}
				if _, err := db.DB.Collection("pipeline_items").InsertMany(ctx, items); err != nil {
					logger.Warn("Failed to seed pipeline items", zap.Error(err))
				}

				// Tasks
				tasks := make([]interface{}, 0, 80)
				for i := 0; i < 80; i++ {
					tasks = append(tasks, bson.M{
						"_id":              primitive.NewObjectID(),
						"organization_id":  orgID,
						"title":            fmt.Sprintf("Task %d", i+1),
						"status":           taskStatuses[rng.Intn(len(taskStatuses))],
						"priority":         []string{"low", "medium", "high"}[rng.Intn(3)],
						"assignee_name":    firstNames[rng.Intn(len(firstNames))],
						"duration_minutes": float64(rng.Intn(240) + 15),
						"due_date":         now.AddDate(0, 0, rng.Intn(60)-30),
						"created_at":       now.AddDate(0, 0, -rng.Intn(90)),
					})
				}
				if _, err := db.DB.Collection("tasks").InsertMany(ctx, tasks); err != nil {
					logger.Warn("Failed to seed tasks", zap.Error(err))
				}

				// Saved demo reports
				demo := &report.CustomReport{
					OrganizationID: orgID,
					CreatedBy:      userIDs[0],
					Name:           "Revenue by Status",
					ReportConfig: report.ReportConfig{
						DataSource: "invoices",
						ChartType:  chart.ChartTypeBar,
						Metrics: []report.Metric{
							{Field: "total_amount", Aggregate: report.AggregateSum, Label: "Total Amount Sum"},
						},
						Dimensions: []report.Dimension{
							{Field: "status", Type: report.DimensionCategory, Label: "Status"},
						},
					},
					IsPublic: true,
				}
				if err := reportRepo.Create(ctx, demo); err != nil {
					logger.Warn("Failed to seed demo report", zap.Error(err))
				}

				logger.Info("Demo data seeded")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			report.NewReportRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
