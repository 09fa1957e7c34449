package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cxtrack/internal/features/catalog"
	"cxtrack/internal/features/report"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SQLExecutor runs the same config→aggregation translation against an
// external PostgreSQL source. Used for catalog entries flagged External when
// a Postgres URI is configured.
type SQLExecutor struct {
	DB      *sql.DB
	Catalog *catalog.Catalog
}

func NewSQLExecutor(uri string, cat *catalog.Catalog) (*SQLExecutor, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}
	return &SQLExecutor{DB: db, Catalog: cat}, nil
}

func (e *SQLExecutor) Execute(ctx context.Context, orgID primitive.ObjectID, cfg report.ReportConfig) ([]Row, error) {
	ds, ok := e.Catalog.Source(cfg.DataSource)
	if !ok {
		return []Row{}, fmt.Errorf("unknown data source: %s", cfg.DataSource)
	}

	query, args := BuildQuery(ds.Collection, orgID, cfg)

	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return []Row{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return []Row{}, err
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return []Row{}, err
		}
		row := Row{}
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BuildQuery assembles the GROUP BY statement for a configuration. Exported
// so the translation is testable without a database.
func BuildQuery(table string, orgID primitive.ObjectID, cfg report.ReportConfig) (string, []any) {
	var selects []string
	var groups []string

	for _, d := range cfg.Dimensions {
		expr := sqlDimensionExpr(d)
		selects = append(selects, fmt.Sprintf("%s AS %s", expr, quoteIdent(d.Label)))
		groups = append(groups, expr)
	}
	for _, m := range cfg.Metrics {
		selects = append(selects, fmt.Sprintf("%s AS %s", sqlAggregateExpr(m), quoteIdent(m.Label)))
	}

	var args []any
	conds := []string{fmt.Sprintf("organization_id = $%d", len(args)+1)}
	args = append(args, orgID.Hex())

	for _, f := range cfg.Filters {
		cond, filterArgs := sqlFilterCond(f, len(args))
		if cond == "" {
			continue
		}
		conds = append(conds, cond)
		args = append(args, filterArgs...)
	}
	if dr := cfg.DateRange; dr != nil {
		conds = append(conds, fmt.Sprintf("%s BETWEEN $%d AND $%d", quoteIdent(dr.Field), len(args)+1, len(args)+2))
		args = append(args, dr.Start, dr.End)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s", strings.Join(selects, ", "), quoteIdent(table), strings.Join(conds, " AND "))
	if len(groups) > 0 {
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(groups, ", "))
	}

	if cfg.Sort != nil && cfg.Sort.Field != "" {
		dir := "ASC"
		if cfg.Sort.Direction == "desc" {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", quoteIdent(cfg.Sort.Field), dir)
	} else if len(cfg.Dimensions) > 0 {
		fmt.Fprintf(&b, " ORDER BY 1 ASC")
	}

	limit := cfg.Limit
	if limit <= 0 || limit > report.MaxLimit {
		limit = report.MaxLimit
	}
	fmt.Fprintf(&b, " LIMIT %d", limit)

	return b.String(), args
}

func sqlDimensionExpr(d report.Dimension) string {
	col := quoteIdent(d.Field)
	switch d.Type {
	case report.DimensionDateDay:
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	case report.DimensionDateWeek:
		return fmt.Sprintf("to_char(%s, 'IYYY-\"W\"IW')", col)
	case report.DimensionDateMonth:
		return fmt.Sprintf("to_char(%s, 'YYYY-MM')", col)
	case report.DimensionDateQuarter:
		return fmt.Sprintf("to_char(%s, 'YYYY-\"Q\"Q')", col)
	case report.DimensionDateYear:
		return fmt.Sprintf("to_char(%s, 'YYYY')", col)
	default:
		return col
	}
}

func sqlAggregateExpr(m report.Metric) string {
	col := quoteIdent(m.Field)
	switch m.Aggregate {
	case report.AggregateCount:
		return "COUNT(*)"
	case report.AggregateSum:
		return fmt.Sprintf("SUM(%s)", col)
	case report.AggregateAvg:
		return fmt.Sprintf("AVG(%s)", col)
	case report.AggregateMin:
		return fmt.Sprintf("MIN(%s)", col)
	case report.AggregateMax:
		return fmt.Sprintf("MAX(%s)", col)
	default:
		return "COUNT(*)"
	}
}

func sqlFilterCond(f report.Filter, argOffset int) (string, []any) {
	col := quoteIdent(f.Field)
	next := argOffset + 1
	switch f.Operator {
	case report.OperatorEq:
		return fmt.Sprintf("%s = $%d", col, next), []any{f.Value}
	case report.OperatorNeq:
		return fmt.Sprintf("%s <> $%d", col, next), []any{f.Value}
	case report.OperatorGt:
		return fmt.Sprintf("%s > $%d", col, next), []any{f.Value}
	case report.OperatorGte:
		return fmt.Sprintf("%s >= $%d", col, next), []any{f.Value}
	case report.OperatorLt:
		return fmt.Sprintf("%s < $%d", col, next), []any{f.Value}
	case report.OperatorLte:
		return fmt.Sprintf("%s <= $%d", col, next), []any{f.Value}
	case report.OperatorIn:
		return fmt.Sprintf("%s = ANY($%d)", col, next), []any{f.Value}
	case report.OperatorLike:
		return fmt.Sprintf("%s ILIKE $%d", col, next), []any{fmt.Sprintf("%%%v%%", f.Value)}
	default:
		return "", nil
	}
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
