package gateway

import (
	"strings"
	"testing"
	"time"

	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func stageValue(t *testing.T, pipeline []bson.D, stage string) any {
	t.Helper()
	for _, s := range pipeline {
		if s[0].Key == stage {
			return s[0].Value
		}
	}
	t.Fatalf("pipeline has no %s stage: %v", stage, pipeline)
	return nil
}

func TestBuildPipelineMatch(t *testing.T) {
	orgID := primitive.NewObjectID()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	cfg := report.ReportConfig{
		DataSource: "invoices",
		Metrics:    []report.Metric{{Field: "total_amount", Aggregate: report.AggregateSum, Label: "Total Amount Sum"}},
		Filters: []report.Filter{
			{Field: "status", Operator: report.OperatorEq, Value: "paid"},
			{Field: "total_amount", Operator: report.OperatorGte, Value: 100},
		},
		DateRange: &report.DateRange{Field: "issue_date", Start: start, End: end},
	}

	pipeline := BuildPipeline(orgID, cfg)
	match := stageValue(t, pipeline, "$match").(bson.M)

	if match["organization_id"] != orgID {
		t.Errorf("org filter = %v", match["organization_id"])
	}
	if match["status"] != "paid" {
		t.Errorf("eq filter = %v", match["status"])
	}
	gte, ok := match["total_amount"].(bson.M)
	if !ok || gte["$gte"] != 100 {
		t.Errorf("gte filter = %v", match["total_amount"])
	}
	dr, ok := match["issue_date"].(bson.M)
	if !ok || dr["$gte"] != start || dr["$lte"] != end {
		t.Errorf("date range = %v", match["issue_date"])
	}
}

func TestBuildPipelineGroupAndProject(t *testing.T) {
	cfg := report.ReportConfig{
		DataSource: "invoices",
		Metrics: []report.Metric{
			{Field: "total_amount", Aggregate: report.AggregateSum, Label: "Total Amount Sum"},
			{Field: "total_amount", Aggregate: report.AggregateCount, Label: "Total Amount Count"},
		},
		Dimensions: []report.Dimension{
			{Field: "status", Type: report.DimensionCategory, Label: "Status"},
		},
	}

	pipeline := BuildPipeline(primitive.NewObjectID(), cfg)

	group := stageValue(t, pipeline, "$group").(bson.D)
	groupID := group[0].Value.(bson.M)
	if groupID["d0"] != "$status" {
		t.Errorf("group id = %v", groupID)
	}
	if group[1].Key != "m0" {
		t.Errorf("first accumulator key = %q", group[1].Key)
	}
	sum := group[1].Value.(bson.M)
	if sum["$sum"] != "$total_amount" {
		t.Errorf("sum accumulator = %v", sum)
	}
	count := group[2].Value.(bson.M)
	if count["$sum"] != 1 {
		t.Errorf("count accumulator = %v", count)
	}

	project := stageValue(t, pipeline, "$project").(bson.D)
	got := map[string]any{}
	for _, e := range project {
		got[e.Key] = e.Value
	}
	if got["Status"] != "$_id.d0" {
		t.Errorf("dimension projection = %v", got["Status"])
	}
	if got["Total Amount Sum"] != "$m0" || got["Total Amount Count"] != "$m1" {
		t.Errorf("metric projections = %v", got)
	}
}

func TestBuildPipelineDateBuckets(t *testing.T) {
	tests := []struct {
		typ  report.DimensionType
		want string
	}{
		{report.DimensionDateDay, "%Y-%m-%d"},
		{report.DimensionDateWeek, "%Y-%U"},
		{report.DimensionDateMonth, "%Y-%m"},
		{report.DimensionDateYear, "%Y"},
	}

	for _, tt := range tests {
		cfg := report.ReportConfig{
			Metrics:    []report.Metric{{Field: "total_amount", Aggregate: report.AggregateCount, Label: "Count"}},
			Dimensions: []report.Dimension{{Field: "issue_date", Type: tt.typ, Label: "Issue Date"}},
		}
		pipeline := BuildPipeline(primitive.NewObjectID(), cfg)
		group := stageValue(t, pipeline, "$group").(bson.D)
		expr := group[0].Value.(bson.M)["d0"].(bson.M)
		inner := expr["$dateToString"].(bson.M)
		if inner["format"] != tt.want {
			t.Errorf("%s: format = %v, want %q", tt.typ, inner["format"], tt.want)
		}
		if inner["date"] != "$issue_date" {
			t.Errorf("%s: date = %v", tt.typ, inner["date"])
		}
	}

	// Quarter has no format token and is assembled from parts.
	cfg := report.ReportConfig{
		Metrics:    []report.Metric{{Field: "total_amount", Aggregate: report.AggregateCount, Label: "Count"}},
		Dimensions: []report.Dimension{{Field: "issue_date", Type: report.DimensionDateQuarter, Label: "Issue Date"}},
	}
	pipeline := BuildPipeline(primitive.NewObjectID(), cfg)
	group := stageValue(t, pipeline, "$group").(bson.D)
	expr := group[0].Value.(bson.M)["d0"].(bson.M)
	if _, ok := expr["$concat"]; !ok {
		t.Errorf("quarter expr = %v, want $concat", expr)
	}
}

func TestBuildPipelineSortAndLimit(t *testing.T) {
	base := report.ReportConfig{
		Metrics:    []report.Metric{{Field: "total_amount", Aggregate: report.AggregateSum, Label: "Total"}},
		Dimensions: []report.Dimension{{Field: "status", Type: report.DimensionCategory, Label: "Status"}},
	}

	// Default: first dimension ascending.
	pipeline := BuildPipeline(primitive.NewObjectID(), base)
	sortStage := stageValue(t, pipeline, "$sort").(bson.D)
	if sortStage[0].Key != "Status" || sortStage[0].Value != 1 {
		t.Errorf("default sort = %v", sortStage)
	}

	// Explicit sort wins.
	withSort := base
	withSort.Sort = &report.Sort{Field: "Total", Direction: "desc"}
	pipeline = BuildPipeline(primitive.NewObjectID(), withSort)
	sortStage = stageValue(t, pipeline, "$sort").(bson.D)
	if sortStage[0].Key != "Total" || sortStage[0].Value != -1 {
		t.Errorf("explicit sort = %v", sortStage)
	}

	// Limit is capped and defaulted.
	if got := stageValue(t, pipeline, "$limit"); got != report.MaxLimit {
		t.Errorf("default limit = %v", got)
	}
	withLimit := base
	withLimit.Limit = 50
	pipeline = BuildPipeline(primitive.NewObjectID(), withLimit)
	if got := stageValue(t, pipeline, "$limit"); got != 50 {
		t.Errorf("limit = %v", got)
	}
	over := base
	over.Limit = report.MaxLimit * 2
	pipeline = BuildPipeline(primitive.NewObjectID(), over)
	if got := stageValue(t, pipeline, "$limit"); got != report.MaxLimit {
		t.Errorf("over-cap limit = %v", got)
	}
}

func TestBuildQuery(t *testing.T) {
	orgID := primitive.NewObjectID()
	cfg := report.ReportConfig{
		DataSource: "payments",
		Metrics: []report.Metric{
			{Field: "amount", Aggregate: report.AggregateSum, Label: "Amount Sum"},
		},
		Dimensions: []report.Dimension{
			{Field: "method", Type: report.DimensionCategory, Label: "Payment Method"},
			{Field: "paid_at", Type: report.DimensionDateMonth, Label: "Payment Date"},
		},
		Filters: []report.Filter{
			{Field: "status", Operator: report.OperatorEq, Value: "settled"},
			{Field: "method", Operator: report.OperatorLike, Value: "card"},
		},
		Limit: 25,
	}

	query, args := BuildQuery("payments", orgID, cfg)

	for _, want := range []string{
		`"method" AS "Payment Method"`,
		`to_char("paid_at", 'YYYY-MM') AS "Payment Date"`,
		`SUM("amount") AS "Amount Sum"`,
		`FROM "payments"`,
		`organization_id = $1`,
		`"status" = $2`,
		`"method" ILIKE $3`,
		`GROUP BY "method", to_char("paid_at", 'YYYY-MM')`,
		`ORDER BY 1 ASC`,
		`LIMIT 25`,
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}

	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
	if args[0] != orgID.Hex() || args[1] != "settled" || args[2] != "%card%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildQueryCountAndExplicitSort(t *testing.T) {
	cfg := report.ReportConfig{
		Metrics:    []report.Metric{{Field: "amount", Aggregate: report.AggregateCount, Label: "Count"}},
		Dimensions: []report.Dimension{{Field: "status", Type: report.DimensionCategory, Label: "Status"}},
		Sort:       &report.Sort{Field: "Count", Direction: "desc"},
	}

	query, _ := BuildQuery("payments", primitive.NewObjectID(), cfg)
	if !strings.Contains(query, `COUNT(*) AS "Count"`) {
		t.Errorf("count select missing:\n%s", query)
	}
	if !strings.Contains(query, `ORDER BY "Count" DESC`) {
		t.Errorf("sort missing:\n%s", query)
	}
	if !strings.Contains(query, "LIMIT 10000") {
		t.Errorf("default limit missing:\n%s", query)
	}
}
