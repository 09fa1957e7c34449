package gateway

import (
	"context"
	"fmt"

	"cxtrack/internal/database"
	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Row is one flat result row; keys are the configured dimension/metric labels.
type Row = map[string]any

// Executor submits a report configuration to the backing aggregation engine
// and returns a flat table of rows. Implementations never return nil rows:
// no data and absorbed backend errors both come back as an empty slice.
type Executor interface {
	Execute(ctx context.Context, orgID primitive.ObjectID, cfg report.ReportConfig) ([]Row, error)
}

// MongoExecutor translates a configuration into a single aggregation
// pipeline and runs it server-side. All filtering, grouping and aggregation
// happen inside MongoDB; this type only builds the pipeline and normalizes
// the result.
type MongoExecutor struct {
	DB      *mongo.Database
	Catalog *catalog.Catalog
}

func NewMongoExecutor(mongodb *database.MongodbDB, cat *catalog.Catalog) *MongoExecutor {
	return &MongoExecutor{DB: mongodb.DB, Catalog: cat}
}

func (e *MongoExecutor) Execute(ctx context.Context, orgID primitive.ObjectID, cfg report.ReportConfig) ([]Row, error) {
	ds, ok := e.Catalog.Source(cfg.DataSource)
	if !ok {
		return []Row{}, fmt.Errorf("unknown data source: %s", cfg.DataSource)
	}

	pipeline := BuildPipeline(orgID, cfg)

	cursor, err := e.DB.Collection(ds.Collection).Aggregate(ctx, pipeline)
	if err != nil {
		return []Row{}, err
	}
	defer cursor.Close(ctx)

	var rows []Row
	if err := cursor.All(ctx, &rows); err != nil {
		return []Row{}, err
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// BuildPipeline assembles the match/group/project/sort/limit stages for a
// configuration. Exported so the translation is testable without a database.
func BuildPipeline(orgID primitive.ObjectID, cfg report.ReportConfig) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	match := bson.M{"organization_id": orgID}
	for _, f := range cfg.Filters {
		applyFilter(match, f)
	}
	if dr := cfg.DateRange; dr != nil {
		match[dr.Field] = bson.M{"$gte": dr.Start, "$lte": dr.End}
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})

	groupID := bson.M{}
	for i, d := range cfg.Dimensions {
		groupID[dimKey(i)] = dimensionExpr(d)
	}
	group := bson.D{{Key: "_id", Value: groupID}}
	for i, m := range cfg.Metrics {
		group = append(group, bson.E{Key: metricKey(i), Value: accumulator(m)})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: group}})

	project := bson.D{{Key: "_id", Value: 0}}
	for i, d := range cfg.Dimensions {
		project = append(project, bson.E{Key: d.Label, Value: "$_id." + dimKey(i)})
	}
	for i, m := range cfg.Metrics {
		project = append(project, bson.E{Key: m.Label, Value: "$" + metricKey(i)})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: project}})

	sortField := ""
	sortDir := 1
	if cfg.Sort != nil && cfg.Sort.Field != "" {
		sortField = cfg.Sort.Field
		if cfg.Sort.Direction == "desc" {
			sortDir = -1
		}
	} else if len(cfg.Dimensions) > 0 {
		sortField = cfg.Dimensions[0].Label
	}
	if sortField != "" {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: sortField, Value: sortDir}}}})
	}

	limit := cfg.Limit
	if limit <= 0 || limit > report.MaxLimit {
		limit = report.MaxLimit
	}
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})

	return pipeline
}

func applyFilter(match bson.M, f report.Filter) {
	switch f.Operator {
	case report.OperatorEq:
		match[f.Field] = f.Value
	case report.OperatorNeq:
		match[f.Field] = bson.M{"$ne": f.Value}
	case report.OperatorGt:
		match[f.Field] = bson.M{"$gt": f.Value}
	case report.OperatorGte:
		match[f.Field] = bson.M{"$gte": f.Value}
	case report.OperatorLt:
		match[f.Field] = bson.M{"$lt": f.Value}
	case report.OperatorLte:
		match[f.Field] = bson.M{"$lte": f.Value}
	case report.OperatorIn:
		match[f.Field] = bson.M{"$in": f.Value}
	case report.OperatorLike:
		match[f.Field] = bson.M{"$regex": fmt.Sprintf("%v", f.Value), "$options": "i"}
	default:
		match[f.Field] = f.Value
	}
}

// dimensionExpr buckets date dimensions with $dateToString; categories group
// on the raw value.
func dimensionExpr(d report.Dimension) any {
	field := "$" + d.Field
	switch d.Type {
	case report.DimensionDateDay:
		return dateToString("%Y-%m-%d", field)
	case report.DimensionDateWeek:
		return dateToString("%Y-%U", field)
	case report.DimensionDateMonth:
		return dateToString("%Y-%m", field)
	case report.DimensionDateQuarter:
		// $dateToString has no quarter token, so the quarter is computed
		return bson.M{"$concat": bson.A{
			dateToString("%Y", field),
			"-Q",
			bson.M{"$toString": bson.M{"$ceil": bson.M{"$divide": bson.A{bson.M{"$month": field}, 3}}}},
		}}
	case report.DimensionDateYear:
		return dateToString("%Y", field)
	default:
		return field
	}
}

func dateToString(format, field string) bson.M {
	return bson.M{"$dateToString": bson.M{"format": format, "date": field}}
}

func accumulator(m report.Metric) bson.M {
	switch m.Aggregate {
	case report.AggregateCount:
		return bson.M{"$sum": 1}
	case report.AggregateSum:
		return bson.M{"$sum": "$" + m.Field}
	case report.AggregateAvg:
		return bson.M{"$avg": "$" + m.Field}
	case report.AggregateMin:
		return bson.M{"$min": "$" + m.Field}
	case report.AggregateMax:
		return bson.M{"$max": "$" + m.Field}
	default:
		return bson.M{"$sum": 1}
	}
}

func dimKey(i int) string {
	return fmt.Sprintf("d%d", i)
}

func metricKey(i int) string {
	return fmt.Sprintf("m%d", i)
}
