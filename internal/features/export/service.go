package export

import (
	"fmt"
	"sort"
	"time"

	"cxtrack/internal/features/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportService turns an already-fetched row set into a downloadable
// document. Exports are pure projections: no re-querying, no row caps
// beyond what the execution itself applied.
type ExportService interface {
	ToCSV(columns []string, rows []map[string]any) ([]byte, error)
	ToPDF(title string, columns []string, rows []map[string]any, generatedAt time.Time) ([]byte, error)
	ToExcel(columns []string, rows []map[string]any) ([]byte, error)
}

type ExportServiceImpl struct{}

func NewExportService() ExportService {
	return &ExportServiceImpl{}
}

// Columns derives the export column order from a configuration: dimension
// labels then metric labels. Falls back to the first row's keys when the
// config carries no labels.
func Columns(cfg report.ReportConfig, rows []map[string]any) []string {
	var cols []string
	for _, d := range cfg.Dimensions {
		cols = append(cols, d.Label)
	}
	for _, m := range cfg.Metrics {
		cols = append(cols, m.Label)
	}
	if len(cols) > 0 {
		return cols
	}
	if len(rows) > 0 {
		for k := range rows[0] {
			cols = append(cols, k)
		}
		sort.Strings(cols)
	}
	return cols
}

// exportValue renders one cell for CSV/PDF/Excel text output.
func exportValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}
