package merge_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"csvmerge/internal/csvio"
	"csvmerge/internal/domain"
)

// mustTable parses csv text into a table.
func mustTable(t *testing.T, text string) *domain.Table {
	t.Helper()
	tbl, err := csvio.Read(strings.NewReader(text), "test.csv")
	require.NoError(t, err)
	return tbl
}

// render serializes tbl back to csv text.
func render(t *testing.T, tbl *domain.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, csvio.Write(&buf, tbl))
	return buf.String()
}
