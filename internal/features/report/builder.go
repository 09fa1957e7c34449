package report

import (
	"fmt"
	"strings"
	"time"

	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/chart"
)

// Builder operations are pure: each takes a config value plus the catalog
// and returns a new config. Field references in a config are only meaningful
// relative to its data source, so switching sources cascades a full reset.

// NewConfig returns the default configuration for a data source.
func NewConfig(cat *catalog.Catalog, source string) ReportConfig {
	return SetDataSource(ReportConfig{ChartType: chart.ChartTypeBar}, cat, source)
}

// SetDataSource replaces the data source and resets metrics, dimensions,
// filters and date range to source-appropriate defaults. Stale references
// from the prior source never survive.
func SetDataSource(cfg ReportConfig, cat *catalog.Catalog, source string) ReportConfig {
	cfg.DataSource = source
	cfg.Metrics = nil
	cfg.Dimensions = nil
	cfg.Filters = nil
	cfg.DateRange = nil
	cfg.Sort = nil

	ds, ok := cat.Source(source)
	if !ok {
		return cfg
	}

	if f, ok := ds.FirstAggregatable(); ok {
		cfg.Metrics = []Metric{{
			Field:     f.Key,
			Aggregate: AggregateCount,
			Label:     metricLabel(f, AggregateCount),
		}}
	}
	if f, ok := ds.FirstGroupable(); ok {
		cfg.Dimensions = []Dimension{{
			Field: f.Key,
			Type:  defaultDimensionType(f),
			Label: f.Label,
		}}
	}
	return cfg
}

// AddMetric appends a metric defaulting to the first aggregatable field of
// the current source. No-op when the source has no aggregatable fields.
func AddMetric(cfg ReportConfig, cat *catalog.Catalog) ReportConfig {
	ds, ok := cat.Source(cfg.DataSource)
	if !ok {
		return cfg
	}
	f, ok := ds.FirstAggregatable()
	if !ok {
		return cfg
	}
	cfg.Metrics = append(cloneMetrics(cfg.Metrics), Metric{
		Field:     f.Key,
		Aggregate: AggregateCount,
		Label:     metricLabel(f, AggregateCount),
	})
	return cfg
}

// MetricPatch is a partial metric update; nil fields are left unchanged.
type MetricPatch struct {
	Field     *string
	Aggregate *Aggregate
}

// UpdateMetric merges the patch into the metric at index. Whenever the field
// or aggregate changes the label is recomputed as
// "<field label> <aggregate label>".
func UpdateMetric(cfg ReportConfig, cat *catalog.Catalog, index int, patch MetricPatch) ReportConfig {
	if index < 0 || index >= len(cfg.Metrics) {
		return cfg
	}
	metrics := cloneMetrics(cfg.Metrics)
	m := metrics[index]

	changed := false
	if patch.Field != nil && *patch.Field != m.Field {
		m.Field = *patch.Field
		changed = true
	}
	if patch.Aggregate != nil && *patch.Aggregate != m.Aggregate {
		m.Aggregate = *patch.Aggregate
		changed = true
	}
	if changed {
		m.Label = metricLabelFor(cat, cfg.DataSource, m.Field, m.Aggregate)
	}

	metrics[index] = m
	cfg.Metrics = metrics
	return cfg
}

// RemoveMetric drops the metric at index.
func RemoveMetric(cfg ReportConfig, index int) ReportConfig {
	if index < 0 || index >= len(cfg.Metrics) {
		return cfg
	}
	metrics := cloneMetrics(cfg.Metrics)
	cfg.Metrics = append(metrics[:index], metrics[index+1:]...)
	return cfg
}

// AddDimension appends a dimension defaulting to the first groupable field
// of the current source. No-op when the source has no groupable fields.
func AddDimension(cfg ReportConfig, cat *catalog.Catalog) ReportConfig {
	ds, ok := cat.Source(cfg.DataSource)
	if !ok {
		return cfg
	}
	f, ok := ds.FirstGroupable()
	if !ok {
		return cfg
	}
	cfg.Dimensions = append(cloneDimensions(cfg.Dimensions), Dimension{
		Field: f.Key,
		Type:  defaultDimensionType(f),
		Label: f.Label,
	})
	return cfg
}

// DimensionPatch is a partial dimension update; nil fields are left unchanged.
type DimensionPatch struct {
	Field *string
	Type  *DimensionType
}

// UpdateDimension merges the patch into the dimension at index. A field
// change re-derives the bucket type (date fields move off the plain category
// default onto date_month, non-date fields fall back to category) and the
// label.
func UpdateDimension(cfg ReportConfig, cat *catalog.Catalog, index int, patch DimensionPatch) ReportConfig {
	if index < 0 || index >= len(cfg.Dimensions) {
		return cfg
	}
	dims := cloneDimensions(cfg.Dimensions)
	d := dims[index]

	if patch.Field != nil && *patch.Field != d.Field {
		d.Field = *patch.Field
		d.Label = *patch.Field
		if ds, ok := cat.Source(cfg.DataSource); ok {
			if f, ok := ds.Field(d.Field); ok {
				d.Label = f.Label
				if f.Type == catalog.FieldTypeDate {
					if d.Type == DimensionCategory {
						d.Type = DimensionDateMonth
					}
				} else {
					d.Type = DimensionCategory
				}
			}
		}
	}
	if patch.Type != nil {
		d.Type = *patch.Type
	}

	dims[index] = d
	cfg.Dimensions = dims
	return cfg
}

// RemoveDimension drops the dimension at index.
func RemoveDimension(cfg ReportConfig, index int) ReportConfig {
	if index < 0 || index >= len(cfg.Dimensions) {
		return cfg
	}
	dims := cloneDimensions(cfg.Dimensions)
	cfg.Dimensions = append(dims[:index], dims[index+1:]...)
	return cfg
}

// AddFilter appends a filter row.
func AddFilter(cfg ReportConfig, f Filter) ReportConfig {
	if f.Operator == "" {
		f.Operator = OperatorEq
	}
	cfg.Filters = append(cloneFilters(cfg.Filters), f)
	return cfg
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Field    *string
	Operator *Operator
	Value    *any
}

// UpdateFilter merges the patch into the filter at index.
func UpdateFilter(cfg ReportConfig, index int, patch FilterPatch) ReportConfig {
	if index < 0 || index >= len(cfg.Filters) {
		return cfg
	}
	filters := cloneFilters(cfg.Filters)
	f := filters[index]
	if patch.Field != nil {
		f.Field = *patch.Field
	}
	if patch.Operator != nil {
		f.Operator = *patch.Operator
	}
	if patch.Value != nil {
		f.Value = *patch.Value
	}
	filters[index] = f
	cfg.Filters = filters
	return cfg
}

// RemoveFilter drops the filter at index.
func RemoveFilter(cfg ReportConfig, index int) ReportConfig {
	if index < 0 || index >= len(cfg.Filters) {
		return cfg
	}
	filters := cloneFilters(cfg.Filters)
	cfg.Filters = append(filters[:index], filters[index+1:]...)
	return cfg
}

// SetDateRange confines results to a trailing 30-day window ending now on
// the given date field. An empty field clears the range.
func SetDateRange(cfg ReportConfig, field string, now time.Time) ReportConfig {
	if field == "" {
		cfg.DateRange = nil
		return cfg
	}
	cfg.DateRange = &DateRange{
		Field: field,
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}
	return cfg
}

// DatePresets maps quick-preset keys to trailing day counts.
var DatePresets = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"6mo": 180,
	"1yr": 365,
}

// ApplyDatePreset recomputes the range as "now − N days .. now", preserving
// the chosen field. Unknown presets and a missing range are no-ops.
func ApplyDatePreset(cfg ReportConfig, preset string, now time.Time) ReportConfig {
	days, ok := DatePresets[preset]
	if !ok || cfg.DateRange == nil {
		return cfg
	}
	cfg.DateRange = &DateRange{
		Field: cfg.DateRange.Field,
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
	return cfg
}

// Validate gates persistence and execution: a report needs a name and at
// least one metric, every field reference must belong to the selected data
// source, and the row limit is capped.
func Validate(name string, cfg ReportConfig, cat *catalog.Catalog) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("report name is required")
	}
	if len(cfg.Metrics) == 0 {
		return fmt.Errorf("at least one metric is required")
	}
	ds, ok := cat.Source(cfg.DataSource)
	if !ok {
		return fmt.Errorf("unknown data source: %s", cfg.DataSource)
	}
	for _, m := range cfg.Metrics {
		f, ok := ds.Field(m.Field)
		if !ok {
			return fmt.Errorf("metric field %q does not belong to %s", m.Field, cfg.DataSource)
		}
		if !f.Aggregatable {
			return fmt.Errorf("metric field %q is not aggregatable", m.Field)
		}
	}
	for _, d := range cfg.Dimensions {
		f, ok := ds.Field(d.Field)
		if !ok {
			return fmt.Errorf("dimension field %q does not belong to %s", d.Field, cfg.DataSource)
		}
		if !f.Groupable {
			return fmt.Errorf("dimension field %q is not groupable", d.Field)
		}
	}
	for _, fl := range cfg.Filters {
		if _, ok := ds.Field(fl.Field); !ok {
			return fmt.Errorf("filter field %q does not belong to %s", fl.Field, cfg.DataSource)
		}
	}
	if cfg.DateRange != nil {
		f, ok := ds.Field(cfg.DateRange.Field)
		if !ok || f.Type != catalog.FieldTypeDate {
			return fmt.Errorf("date range field %q is not a date field of %s", cfg.DateRange.Field, cfg.DataSource)
		}
	}
	if cfg.Limit < 0 || cfg.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	}
	return nil
}

func metricLabel(f catalog.FieldMeta, agg Aggregate) string {
	return f.Label + " " + AggregateLabels[agg]
}

func metricLabelFor(cat *catalog.Catalog, source, field string, agg Aggregate) string {
	if ds, ok := cat.Source(source); ok {
		if f, ok := ds.Field(field); ok {
			return metricLabel(f, agg)
		}
	}
	return field + " " + AggregateLabels[agg]
}

func defaultDimensionType(f catalog.FieldMeta) DimensionType {
	if f.Type == catalog.FieldTypeDate {
		return DimensionDateMonth
	}
	return DimensionCategory
}

func cloneMetrics(in []Metric) []Metric {
	out := make([]Metric, len(in))
	copy(out, in)
	return out
}

func cloneDimensions(in []Dimension) []Dimension {
	out := make([]Dimension, len(in))
	copy(out, in)
	return out
}

func cloneFilters(in []Filter) []Filter {
	out := make([]Filter, len(in))
	copy(out, in)
	return out
}
