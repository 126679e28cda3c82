package merge

import "csvmerge/internal/domain"

// Input is a loaded table together with the location it came from.
type Input struct {
	Source string
	Table  *domain.Table
}

// RequireColumn fails with a SchemaError when tbl has no column named column.
func RequireColumn(tbl *domain.Table, column, source string) error {
	if tbl.HasColumn(column) {
		return nil
	}
	return domain.ErrSchema(column, "No %s column exists in one of the provided files (%s)", column, source)
}

// ValidateInputs checks every input carries the key column. All inputs are
// checked before any merge work begins; the first failure is returned.
func ValidateInputs(key string, inputs ...Input) error {
	for _, in := range inputs {
		if err := RequireColumn(in.Table, key, in.Source); err != nil {
			return err
		}
	}
	return nil
}
