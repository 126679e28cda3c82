// Package ddl builds the DuckDB statements used to stage and join CSV tables.
package ddl

import (
	"fmt"
	"strings"
)

// Reserved staging columns. Data columns are staged positionally as c0, c1, ...
const (
	OrdinalColumn = "__ord"
	KeyColumn     = "__key"
	RankColumn    = "__rank"
)

// DataColumn returns the staging name of the i-th data column.
func DataColumn(i int) string {
	return fmt.Sprintf("c%d", i)
}

// CreateStagingTable returns a DuckDB DDL statement:
// CREATE TABLE "<table>" ("__ord" BIGINT, "__key" VARCHAR, "__rank" BIGINT, "c0" VARCHAR, ...).
func CreateStagingTable(table string, width int) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if width < 1 {
		return "", fmt.Errorf("at least one column is required")
	}
	cols := []string{
		QuoteIdentifier(OrdinalColumn) + " BIGINT",
		QuoteIdentifier(KeyColumn) + " VARCHAR",
		QuoteIdentifier(RankColumn) + " BIGINT",
	}
	for i := 0; i < width; i++ {
		cols = append(cols, QuoteIdentifier(DataColumn(i))+" VARCHAR")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(cols, ", ")), nil
}

// DropTable returns a DuckDB DDL statement: DROP TABLE IF EXISTS "<table>".
func DropTable(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "DROP TABLE IF EXISTS " + QuoteIdentifier(table), nil
}

// JoinOutput is one projected column of a full outer join. Left and Right are
// data column positions in the staged tables, or -1 when the side has none.
type JoinOutput struct {
	Name  string
	Left  int
	Right int
}

// FullOuterJoin returns a SELECT joining two staging tables on their key
// column. Null keys match each other. Rows are ordered by the staged key rank
// (null keys last), then by left and right input order.
func FullOuterJoin(left, right string, outputs []JoinOutput) (string, error) {
	if err := ValidateIdentifier(left); err != nil {
		return "", fmt.Errorf("invalid left table name: %w", err)
	}
	if err := ValidateIdentifier(right); err != nil {
		return "", fmt.Errorf("invalid right table name: %w", err)
	}
	if len(outputs) == 0 {
		return "", fmt.Errorf("at least one output column is required")
	}

	projections := make([]string, 0, len(outputs))
	for _, o := range outputs {
		var expr string
		switch {
		case o.Left >= 0 && o.Right >= 0:
			expr = fmt.Sprintf("COALESCE(l.%s, r.%s)", QuoteIdentifier(DataColumn(o.Left)), QuoteIdentifier(DataColumn(o.Right)))
		case o.Left >= 0:
			expr = "l." + QuoteIdentifier(DataColumn(o.Left))
		case o.Right >= 0:
			expr = "r." + QuoteIdentifier(DataColumn(o.Right))
		default:
			return "", fmt.Errorf("output column %q has no source", o.Name)
		}
		projections = append(projections, expr+" AS "+QuoteIdentifier(o.Name))
	}

	key := QuoteIdentifier(KeyColumn)
	rank := QuoteIdentifier(RankColumn)
	ord := QuoteIdentifier(OrdinalColumn)

	return fmt.Sprintf(
		"SELECT %s FROM %s AS l FULL OUTER JOIN %s AS r ON l.%s IS NOT DISTINCT FROM r.%s ORDER BY COALESCE(l.%s, r.%s) NULLS LAST, l.%s NULLS LAST, r.%s NULLS LAST",
		strings.Join(projections, ", "),
		QuoteIdentifier(left),
		QuoteIdentifier(right),
		key, key,
		rank, rank,
		ord, ord,
	), nil
}
