package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const tableRowCap = 100

// Project maps a flat result-row set into the visual encoding for a chart
// type. It is a pure function of (chartType, rows, cfg) and is re-run per
// call; nothing is cached. Degraded inputs (no rows, unsupported type, too
// few metrics for a scatter) produce tagged states, never errors.
func Project(chartType ChartType, rows []map[string]any, cfg ProjectionConfig) ChartData {
	if len(rows) == 0 {
		return ChartData{Type: chartType, State: StateNoData, Message: "No data to display"}
	}

	dimKey, metricKeys := InferColumns(rows, cfg)
	palette := cfg.Colors
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	data := ChartData{Type: chartType, State: StateOK, DimensionKey: dimKey, MetricKeys: metricKeys}

	switch chartType {
	case ChartTypeBar, ChartTypeStackedBar, ChartTypeLine, ChartTypeArea:
		data.Series = buildSeries(chartType, rows, dimKey, metricKeys, palette)
	case ChartTypePie, ChartTypeDonut:
		data.Slices = buildSlices(rows, dimKey, metricKeys, palette)
		if chartType == ChartTypeDonut {
			data.InnerRadius = 0.15
		}
	case ChartTypeScatter:
		if len(cfg.MetricLabels) < 2 || len(metricKeys) < 2 {
			return ChartData{Type: chartType, State: StateNeedsTwoMetrics, Message: "Scatter charts need at least 2 metrics"}
		}
		data.Scatter = buildScatter(rows, dimKey, metricKeys)
	case ChartTypeFunnel:
		data.Funnel = buildFunnel(rows, dimKey, metricKeys, palette)
	case ChartTypeTable:
		data.Table = buildTable(rows)
	default:
		return ChartData{Type: chartType, State: StateUnsupported, Message: fmt.Sprintf("Unsupported chart type: %s", chartType)}
	}

	return data
}

// InferColumns decides which result column is the dimension and which are
// metrics. The dimension key is the first configured dimension label present
// on the first row, falling back to the first row key, then to "". Metric
// keys are the configured metric labels present on the first row in
// configured order, falling back to every non-dimension key.
func InferColumns(rows []map[string]any, cfg ProjectionConfig) (string, []string) {
	keys := rowKeys(rows[0])

	dimKey := ""
	for _, label := range cfg.DimensionLabels {
		if _, ok := rows[0][label]; ok {
			dimKey = label
			break
		}
	}
	if dimKey == "" && len(keys) > 0 {
		dimKey = keys[0]
	}

	var metricKeys []string
	for _, label := range cfg.MetricLabels {
		if _, ok := rows[0][label]; ok {
			metricKeys = append(metricKeys, label)
		}
	}
	if len(metricKeys) == 0 {
		for _, k := range keys {
			if k != dimKey {
				metricKeys = append(metricKeys, k)
			}
		}
	}

	return dimKey, metricKeys
}

// rowKeys returns the property names of a row in a deterministic order.
// Go maps are unordered, so sorted order stands in for insertion order on
// the fallback paths.
func rowKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildSeries(chartType ChartType, rows []map[string]any, dimKey string, metricKeys []string, palette []string) []Series {
	series := make([]Series, 0, len(metricKeys))
	for i, mk := range metricKeys {
		color := palette[i%len(palette)]
		s := Series{Name: mk, Color: color}
		if chartType == ChartTypeStackedBar {
			s.StackID = "stack"
		}
		if chartType == ChartTypeArea {
			s.Fill = &Fill{FromColor: color, FromOpacity: 0.3, ToOpacity: 0}
		}
		for _, row := range rows {
			name := stringify(row[dimKey])
			s.Points = append(s.Points, Point{
				Label:   TruncateLabel(name),
				Tooltip: name,
				Value:   toFloat(row[mk]),
			})
		}
		series = append(series, s)
	}
	return series
}

// buildSlices uses only the first metric key; each row becomes one slice
// labeled with its share of the total rounded to a whole percent.
func buildSlices(rows []map[string]any, dimKey string, metricKeys []string, palette []string) []Slice {
	if len(metricKeys) == 0 {
		return nil
	}
	mk := metricKeys[0]

	total := 0.0
	for _, row := range rows {
		total += toFloat(row[mk])
	}

	slices := make([]Slice, 0, len(rows))
	for i, row := range rows {
		v := toFloat(row[mk])
		pct := 0
		if total > 0 {
			pct = int(v/total*100 + 0.5)
		}
		name := stringify(row[dimKey])
		slices = append(slices, Slice{
			Name:    name,
			Label:   fmt.Sprintf("%s %d%%", name, pct),
			Value:   v,
			Percent: pct,
			Color:   palette[i%len(palette)],
		})
	}
	return slices
}

func buildScatter(rows []map[string]any, dimKey string, metricKeys []string) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, ScatterPoint{
			Name: stringify(row[dimKey]),
			X:    toFloat(row[metricKeys[0]]),
			Y:    toFloat(row[metricKeys[1]]),
		})
	}
	return points
}

// buildFunnel sorts rows descending by the first metric and sizes each bar
// relative to the maximum value, with a 5% floor so near-zero bars stay
// visible.
func buildFunnel(rows []map[string]any, dimKey string, metricKeys []string, palette []string) []FunnelBar {
	if len(metricKeys) == 0 {
		return nil
	}
	mk := metricKeys[0]

	sorted := make([]map[string]any, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return toFloat(sorted[i][mk]) > toFloat(sorted[j][mk])
	})

	max := toFloat(sorted[0][mk])

	bars := make([]FunnelBar, 0, len(sorted))
	for i, row := range sorted {
		v := toFloat(row[mk])
		width := 5.0
		if max > 0 {
			width = v / max * 100
			if width < 5 {
				width = 5
			}
		}
		name := stringify(row[dimKey])
		bars = append(bars, FunnelBar{
			Label:        TruncateLabel(name),
			Tooltip:      name,
			Value:        v,
			WidthPercent: width,
			Color:        palette[i%len(palette)],
		})
	}
	return bars
}

// buildTable renders up to the first 100 rows verbatim; numbers get
// thousands separators, nil renders empty.
func buildTable(rows []map[string]any) *Table {
	columns := rowKeys(rows[0])

	capped := rows
	if len(capped) > tableRowCap {
		capped = capped[:tableRowCap]
	}

	out := make([][]string, 0, len(capped))
	for _, row := range capped {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		out = append(out, cells)
	}
	return &Table{Columns: columns, Rows: out}
}

// FormatValue is the tooltip/axis number convention: values >= 1000 render
// as "<v/1000 to 1 decimal>k", smaller values with 0 decimals if integral
// else 2.
func FormatValue(v float64) string {
	if v >= 1000 {
		return strconv.FormatFloat(v/1000, 'f', 1, 64) + "k"
	}
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// TruncateLabel shortens axis/funnel labels longer than 16 characters to 14
// plus an ellipsis. Tooltips keep the full text.
func TruncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= 16 {
		return s
	}
	return string(runes[:14]) + "…"
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	switch n := v.(type) {
	case float64, float32, int, int32, int64:
		f := toFloat(v)
		if f == float64(int64(f)) {
			return thousands(int64(f))
		}
		whole := int64(f)
		frac := strconv.FormatFloat(math.Abs(f-float64(whole)), 'f', 2, 64)
		sign := ""
		if f < 0 && whole == 0 {
			sign = "-"
		}
		return sign + thousands(whole) + strings.TrimPrefix(frac, "0")
	default:
		_ = n
		return stringify(v)
	}
}

func thousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
