package chart

type ChartType string

const (
	ChartTypeBar        ChartType = "bar"
	ChartTypeLine       ChartType = "line"
	ChartTypePie        ChartType = "pie"
	ChartTypeArea       ChartType = "area"
	ChartTypeDonut      ChartType = "donut"
	ChartTypeStackedBar ChartType = "stacked_bar"
	ChartTypeScatter    ChartType = "scatter"
	ChartTypeFunnel     ChartType = "funnel"
	ChartTypeTable      ChartType = "table"
)

// ChartState tags the outcome of a projection. Degraded states are not
// errors: an empty row set or an unsupported chart type still produces a
// renderable value.
type ChartState string

const (
	StateOK              ChartState = "ok"
	StateNoData          ChartState = "no_data"
	StateNeedsTwoMetrics ChartState = "needs_two_metrics"
	StateUnsupported     ChartState = "unsupported"
)

// DefaultPalette is cycled by series index when a config carries no colors.
var DefaultPalette = []string{
	"#6366f1", "#22c55e", "#f59e0b", "#ef4444",
	"#06b6d4", "#a855f7", "#ec4899", "#84cc16",
}

// ProjectionConfig carries the parts of a report configuration the
// projection needs: configured labels in order, plus the palette override.
type ProjectionConfig struct {
	DimensionLabels []string `json:"dimension_labels"`
	MetricLabels    []string `json:"metric_labels"`
	Colors          []string `json:"colors,omitempty"`
}

// Series is one plotted measure: a named sequence of (dimension, value)
// points sharing a color.
type Series struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	StackID string   `json:"stack_id,omitempty"`
	Fill    *Fill    `json:"fill,omitempty"`
	Points  []Point  `json:"points"`
}

type Point struct {
	Label   string  `json:"label"`   // Axis label, truncated
	Tooltip string  `json:"tooltip"` // Full dimension value
	Value   float64 `json:"value"`
}

// Fill describes the area-chart gradient under a series.
type Fill struct {
	FromColor   string  `json:"from_color"`
	FromOpacity float64 `json:"from_opacity"`
	ToOpacity   float64 `json:"to_opacity"`
}

// Slice is one pie/donut wedge.
type Slice struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"` // "<name> <pct>%"
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
	Color   string  `json:"color"`
}

// ScatterPoint pairs the first two metrics per row.
type ScatterPoint struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// FunnelBar is one horizontal funnel segment; width is a percentage of the
// maximum value in the set.
type FunnelBar struct {
	Label        string  `json:"label"`
	Tooltip      string  `json:"tooltip"`
	Value        float64 `json:"value"`
	WidthPercent float64 `json:"width_percent"`
	Color        string  `json:"color"`
}

// Table is the verbatim grid encoding.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ChartData is the result of projecting rows into a visual encoding.
// Exactly one of the encoding fields is populated, selected by Type;
// State describes degraded renders (no data, unsupported type, scatter
// precondition).
type ChartData struct {
	Type         ChartType      `json:"type"`
	State        ChartState     `json:"state"`
	Message      string         `json:"message,omitempty"`
	DimensionKey string         `json:"dimension_key,omitempty"`
	MetricKeys   []string       `json:"metric_keys,omitempty"`
	Series       []Series       `json:"series,omitempty"`
	Slices       []Slice        `json:"slices,omitempty"`
	Scatter      []ScatterPoint `json:"scatter,omitempty"`
	Funnel       []FunnelBar    `json:"funnel,omitempty"`
	Table        *Table         `json:"table,omitempty"`
	InnerRadius  float64        `json:"inner_radius,omitempty"` // Fraction of chart height; donut only
}
