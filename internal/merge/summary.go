package merge

import "csvmerge/internal/domain"

// DistinctCount returns the number of distinct non-null values in column.
func DistinctCount(tbl *domain.Table, column string) (int, error) {
	c := tbl.Column(column)
	if c == nil {
		return 0, domain.ErrMissingColumn(column, "column %q not found in merged table (columns: %v)", column, tbl.ColumnNames())
	}
	seen := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v.Valid {
			seen[v.String] = struct{}{}
		}
	}
	return len(seen), nil
}
