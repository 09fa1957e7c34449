package report

import (
	"time"

	"cxtrack/internal/features/chart"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Aggregate string

const (
	AggregateCount Aggregate = "count"
	AggregateSum   Aggregate = "sum"
	AggregateAvg   Aggregate = "avg"
	AggregateMin   Aggregate = "min"
	AggregateMax   Aggregate = "max"
)

// AggregateLabels drives metric label derivation: "<field label> <aggregate label>".
var AggregateLabels = map[Aggregate]string{
	AggregateCount: "Count",
	AggregateSum:   "Sum",
	AggregateAvg:   "Average",
	AggregateMin:   "Min",
	AggregateMax:   "Max",
}

type DimensionType string

const (
	DimensionCategory    DimensionType = "category"
	DimensionDateDay     DimensionType = "date_day"
	DimensionDateWeek    DimensionType = "date_week"
	DimensionDateMonth   DimensionType = "date_month"
	DimensionDateQuarter DimensionType = "date_quarter"
	DimensionDateYear    DimensionType = "date_year"
)

type Operator string

const (
	OperatorEq   Operator = "eq"
	OperatorNeq  Operator = "neq"
	OperatorGt   Operator = "gt"
	OperatorGte  Operator = "gte"
	OperatorLt   Operator = "lt"
	OperatorLte  Operator = "lte"
	OperatorIn   Operator = "in"
	OperatorLike Operator = "like"
)

// MaxLimit is the server-enforced row cap for a single execution.
const MaxLimit = 10000

type Metric struct {
	Field     string    `json:"field" bson:"field"`
	Aggregate Aggregate `json:"aggregate" bson:"aggregate"`
	Label     string    `json:"label" bson:"label"`
}

type Dimension struct {
	Field string        `json:"field" bson:"field"`
	Type  DimensionType `json:"type" bson:"type"`
	Label string        `json:"label" bson:"label"`
}

type Filter struct {
	Field    string   `json:"field" bson:"field"`
	Operator Operator `json:"operator" bson:"operator"`
	Value    any      `json:"value" bson:"value"`
}

type DateRange struct {
	Field string    `json:"field" bson:"field"`
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

type Sort struct {
	Field     string `json:"field" bson:"field"`
	Direction string `json:"direction" bson:"direction"` // "asc" or "desc"
}

// ReportConfig is a serializable description of what data to fetch and how
// to shape it. It is a value: builder operations return a new config rather
// than mutating in place.
type ReportConfig struct {
	DataSource string          `json:"data_source" bson:"data_source"`
	ChartType  chart.ChartType `json:"chart_type" bson:"chart_type"`
	Metrics    []Metric        `json:"metrics" bson:"metrics"`
	Dimensions []Dimension     `json:"dimensions" bson:"dimensions"`
	Filters    []Filter        `json:"filters" bson:"filters"`
	DateRange  *DateRange      `json:"date_range,omitempty" bson:"date_range,omitempty"`
	Sort       *Sort           `json:"sort,omitempty" bson:"sort,omitempty"`
	Limit      int             `json:"limit,omitempty" bson:"limit,omitempty"`
	Colors     []string        `json:"colors,omitempty" bson:"colors,omitempty"`
}

// Projection extracts the pieces of a config the chart layer needs.
func (c ReportConfig) Projection() chart.ProjectionConfig {
	p := chart.ProjectionConfig{Colors: c.Colors}
	for _, d := range c.Dimensions {
		p.DimensionLabels = append(p.DimensionLabels, d.Label)
	}
	for _, m := range c.Metrics {
		p.MetricLabels = append(p.MetricLabels, m.Label)
	}
	return p
}

type Permission string

const (
	PermissionViewer Permission = "viewer"
	PermissionEditor Permission = "editor"
)

// CustomReport is a saved report configuration with sharing metadata.
type CustomReport struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	CreatedBy      primitive.ObjectID `json:"created_by" bson:"created_by"`
	Name           string             `json:"name" bson:"name"`
	Description    *string            `json:"description" bson:"description"`
	ReportConfig   ReportConfig       `json:"report_config" bson:"report_config"`
	IsPublic       bool               `json:"is_public" bson:"is_public"`
	IsFavorite     bool               `json:"is_favorite" bson:"is_favorite"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportShare grants one user viewer or editor access to one report. Its
// lifecycle is independent of the report itself.
type ReportShare struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReportID   primitive.ObjectID `json:"report_id" bson:"report_id"`
	UserID     primitive.ObjectID `json:"user_id" bson:"user_id"`
	Permission Permission         `json:"permission" bson:"permission"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`

	// Populated from the users collection when listing shares
	UserName  string `json:"user_name,omitempty" bson:"-"`
	UserEmail string `json:"user_email,omitempty" bson:"-"`
}
