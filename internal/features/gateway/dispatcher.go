package gateway

import (
	"context"
	"fmt"

	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dispatcher routes an execution to the right backend: catalog entries
// flagged External go to PostgreSQL, everything else to Mongo. SQL may be
// nil when no Postgres URI is configured.
type Dispatcher struct {
	Mongo   *MongoExecutor
	SQL     *SQLExecutor
	Catalog *catalog.Catalog
}

func NewDispatcher(mongo *MongoExecutor, sql *SQLExecutor, cat *catalog.Catalog) *Dispatcher {
	return &Dispatcher{
		Mongo:   mongo,
		SQL:     sql,
		Catalog: cat,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, orgID primitive.ObjectID, cfg report.ReportConfig) ([]Row, error) {
	ds, ok := d.Catalog.Source(cfg.DataSource)
	if !ok {
		return []Row{}, fmt.Errorf("unknown data source: %s", cfg.DataSource)
	}
	if ds.External {
		if d.SQL == nil {
			return []Row{}, fmt.Errorf("data source %s requires an external database which is not configured", cfg.DataSource)
		}
		return d.SQL.Execute(ctx, orgID, cfg)
	}
	return d.Mongo.Execute(ctx, orgID, cfg)
}
