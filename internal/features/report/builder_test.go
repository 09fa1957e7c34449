package report

import (
	"strings"
	"testing"
	"time"

	"cxtrack/internal/features/catalog"
)

func TestSetDataSourceResetsEverything(t *testing.T) {
	cat := catalog.New()

	cfg := NewConfig(cat, "invoices")
	cfg = AddMetric(cfg, cat)
	cfg = AddFilter(cfg, Filter{Field: "status", Operator: OperatorEq, Value: "paid"})
	cfg = SetDateRange(cfg, "issue_date", time.Now())

	cfg = SetDataSource(cfg, cat, "tasks")

	if cfg.DataSource != "tasks" {
		t.Fatalf("DataSource = %q, want tasks", cfg.DataSource)
	}
	if len(cfg.Filters) != 0 {
		t.Errorf("filters survived source switch: %v", cfg.Filters)
	}
	if cfg.DateRange != nil {
		t.Errorf("date range survived source switch: %v", cfg.DateRange)
	}
	if cfg.Sort != nil {
		t.Errorf("sort survived source switch: %v", cfg.Sort)
	}

	// Defaults come from the new source's catalog entry.
	if len(cfg.Metrics) != 1 {
		t.Fatalf("metrics = %d, want 1 default", len(cfg.Metrics))
	}
	if cfg.Metrics[0].Field != "duration_minutes" || cfg.Metrics[0].Aggregate != AggregateCount {
		t.Errorf("default metric = %+v", cfg.Metrics[0])
	}
	if len(cfg.Dimensions) != 1 || cfg.Dimensions[0].Field != "status" {
		t.Fatalf("default dimension = %+v", cfg.Dimensions)
	}

	// Every field reference must belong to the new source.
	ds, _ := cat.Source("tasks")
	for _, m := range cfg.Metrics {
		if _, ok := ds.Field(m.Field); !ok {
			t.Errorf("metric field %q not in tasks", m.Field)
		}
	}
	for _, d := range cfg.Dimensions {
		if _, ok := ds.Field(d.Field); !ok {
			t.Errorf("dimension field %q not in tasks", d.Field)
		}
	}
}

func TestMetricLabelDerivation(t *testing.T) {
	cat := catalog.New()
	cfg := NewConfig(cat, "invoices")

	if got := cfg.Metrics[0].Label; got != "Total Amount Count" {
		t.Errorf("default label = %q, want %q", got, "Total Amount Count")
	}

	agg := AggregateSum
	cfg = UpdateMetric(cfg, cat, 0, MetricPatch{Aggregate: &agg})
	if got := cfg.Metrics[0].Label; got != "Total Amount Sum" {
		t.Errorf("label after aggregate change = %q, want %q", got, "Total Amount Sum")
	}

	field := "amount_paid"
	cfg = UpdateMetric(cfg, cat, 0, MetricPatch{Field: &field})
	if got := cfg.Metrics[0].Label; got != "Amount Paid Sum" {
		t.Errorf("label after field change = %q, want %q", got, "Amount Paid Sum")
	}

	avg := AggregateAvg
	cfg = UpdateMetric(cfg, cat, 0, MetricPatch{Aggregate: &avg})
	if got := cfg.Metrics[0].Label; got != "Amount Paid Average" {
		t.Errorf("label = %q, want %q", got, "Amount Paid Average")
	}
}

func TestUpdateMetricNoChangeKeepsLabel(t *testing.T) {
	cat := catalog.New()
	cfg := NewConfig(cat, "invoices")
	cfg.Metrics[0].Label = "Custom"

	same := cfg.Metrics[0].Field
	cfg = UpdateMetric(cfg, cat, 0, MetricPatch{Field: &same})
	if cfg.Metrics[0].Label != "Custom" {
		t.Errorf("label recomputed without a real change: %q", cfg.Metrics[0].Label)
	}
}

func TestUpdateDimensionFieldChange(t *testing.T) {
	cat := catalog.New()
	cfg := NewConfig(cat, "invoices")

	// Category field to date field: bucket moves to date_month.
	field := "issue_date"
	cfg = UpdateDimension(cfg, cat, 0, DimensionPatch{Field: &field})
	if cfg.Dimensions[0].Type != DimensionDateMonth {
		t.Errorf("type = %q, want date_month", cfg.Dimensions[0].Type)
	}
	if cfg.Dimensions[0].Label != "Issue Date" {
		t.Errorf("label = %q, want Issue Date", cfg.Dimensions[0].Label)
	}

	// Date field to non-date field: bucket falls back to category.
	field = "customer_name"
	cfg = UpdateDimension(cfg, cat, 0, DimensionPatch{Field: &field})
	if cfg.Dimensions[0].Type != DimensionCategory {
		t.Errorf("type = %q, want category", cfg.Dimensions[0].Type)
	}
}

func TestAddRemoveOperationsOutOfRange(t *testing.T) {
	cat := catalog.New()
	cfg := NewConfig(cat, "invoices")

	before := len(cfg.Metrics)
	cfg = RemoveMetric(cfg, 5)
	cfg = RemoveMetric(cfg, -1)
	if len(cfg.Metrics) != before {
		t.Errorf("out of range remove changed metrics")
	}

	cfg = UpdateMetric(cfg, cat, 99, MetricPatch{})
	cfg = UpdateDimension(cfg, cat, 99, DimensionPatch{})
	cfg = UpdateFilter(cfg, 99, FilterPatch{})
	if len(cfg.Metrics) != before {
		t.Errorf("out of range update changed metrics")
	}
}

func TestDateRangeAndPresets(t *testing.T) {
	cat := catalog.New()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	cfg := NewConfig(cat, "invoices")
	cfg = SetDateRange(cfg, "issue_date", now)

	if cfg.DateRange == nil {
		t.Fatal("date range not set")
	}
	if got := cfg.DateRange.Start; !got.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("default window start = %v", got)
	}

	for preset, days := range DatePresets {
		out := ApplyDatePreset(cfg, preset, now)
		if out.DateRange.Field != "issue_date" {
			t.Errorf("%s: field changed to %q", preset, out.DateRange.Field)
		}
		if !out.DateRange.Start.Equal(now.AddDate(0, 0, -days)) {
			t.Errorf("%s: start = %v, want now-%dd", preset, out.DateRange.Start, days)
		}
		if !out.DateRange.End.Equal(now) {
			t.Errorf("%s: end = %v, want now", preset, out.DateRange.End)
		}
	}

	// Unknown preset is a no-op.
	out := ApplyDatePreset(cfg, "2d", now)
	if !out.DateRange.Start.Equal(cfg.DateRange.Start) {
		t.Errorf("unknown preset changed the range")
	}

	// Empty field clears.
	cfg = SetDateRange(cfg, "", now)
	if cfg.DateRange != nil {
		t.Errorf("empty field did not clear the range")
	}
}

func TestValidate(t *testing.T) {
	cat := catalog.New()
	valid := NewConfig(cat, "invoices")

	tests := []struct {
		name    string
		cfgName string
		mutate  func(ReportConfig) ReportConfig
		wantErr string
	}{
		{
			name:    "valid config",
			cfgName: "Revenue",
			mutate:  func(c ReportConfig) ReportConfig { return c },
		},
		{
			name:    "empty name",
			cfgName: "   ",
			mutate:  func(c ReportConfig) ReportConfig { return c },
			wantErr: "name is required",
		},
		{
			name:    "no metrics",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.Metrics = nil
				return c
			},
			wantErr: "at least one metric",
		},
		{
			name:    "unknown source",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.DataSource = "unicorns"
				return c
			},
			wantErr: "unknown data source",
		},
		{
			name:    "foreign metric field",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.Metrics = []Metric{{Field: "mrr", Aggregate: AggregateSum}}
				return c
			},
			wantErr: "does not belong",
		},
		{
			name:    "non aggregatable metric",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.Metrics = []Metric{{Field: "status", Aggregate: AggregateSum}}
				return c
			},
			wantErr: "not aggregatable",
		},
		{
			name:    "date range on non-date field",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.DateRange = &DateRange{Field: "status"}
				return c
			},
			wantErr: "not a date field",
		},
		{
			name:    "limit over cap",
			cfgName: "Revenue",
			mutate: func(c ReportConfig) ReportConfig {
				c.Limit = MaxLimit + 1
				return c
			},
			wantErr: "limit must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfgName, tt.mutate(valid), cat)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuilderPurity(t *testing.T) {
	cat := catalog.New()
	original := NewConfig(cat, "invoices")
	snapshot := original.Metrics[0]

	agg := AggregateMax
	_ = UpdateMetric(original, cat, 0, MetricPatch{Aggregate: &agg})
	_ = RemoveMetric(original, 0)
	_ = AddFilter(original, Filter{Field: "status"})

	if original.Metrics[0] != snapshot {
		t.Errorf("builder mutated its input: %+v", original.Metrics[0])
	}
}
