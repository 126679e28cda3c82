package merge_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvmerge/internal/domain"
	"csvmerge/internal/merge"
)

var ctx = context.Background()

func newMerger() *merge.HashMerger {
	return merge.NewHashMerger(slog.New(slog.DiscardHandler))
}

func TestHashMerger_CompanyScenario(t *testing.T) {
	left := mustTable(t, "CompanyID,CompanyName\n1,Acme\n2,Globex\n")
	right := mustTable(t, "CompanyID,Revenue\n1,100\n3,50\n")

	out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
	require.NoError(t, err)

	assert.Equal(t, "CompanyID,CompanyName,Revenue\n1,Acme,100\n2,Globex,\n3,,50\n", render(t, out))

	n, err := merge.DistinctCount(out, domain.SummaryColumn)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestHashMerger_RowCount(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		want  int
	}{
		{
			name:  "disjoint",
			left:  "CompanyID,a\n1,x\n2,y\n",
			right: "CompanyID,b\n3,z\n",
			want:  3,
		},
		{
			name:  "duplicates cross product",
			left:  "CompanyID,a\n1,x\n1,y\n2,z\n",
			right: "CompanyID,b\n1,p\n1,q\n1,r\n4,s\n",
			// 2*3 matched + 1 unmatched left + 1 unmatched right
			want: 8,
		},
		{
			name:  "all matched",
			left:  "CompanyID,a\n1,x\n2,y\n",
			right: "CompanyID,b\n2,q\n1,p\n",
			want:  2,
		},
		{
			name:  "empty right",
			left:  "CompanyID,a\n1,x\n",
			right: "CompanyID,b\n",
			want:  1,
		},
		{
			name:  "adjacent integers beyond float64 precision",
			left:  "CompanyID,a\n9007199254740992,x\n",
			right: "CompanyID,b\n9007199254740993,y\n",
			want:  2,
		},
		{
			name:  "19-digit ids",
			left:  "CompanyID,a\n1234567890123456789,x\n1234567890123456780,y\n",
			right: "CompanyID,b\n1234567890123456788,p\n1234567890123456789,q\n",
			// 1 matched + 1 unmatched left + 1 unmatched right
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newMerger().Merge(ctx, mustTable(t, tt.left), mustTable(t, tt.right), domain.IdentifierColumn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Height())
		})
	}
}

func TestHashMerger_CrossProductOrder(t *testing.T) {
	left := mustTable(t, "CompanyID,a\n1,x\n1,y\n")
	right := mustTable(t, "CompanyID,b\n1,p\n1,q\n")

	out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
	require.NoError(t, err)
	assert.Equal(t, "CompanyID,a,b\n1,x,p\n1,x,q\n1,y,p\n1,y,q\n", render(t, out))
}

func TestHashMerger_IdentifierOnlyEmptyTable(t *testing.T) {
	left := mustTable(t, "CompanyName,CompanyID,Revenue\nAcme,3,10\nGlobex,1,\nInitech,2,5\n")
	empty := mustTable(t, "CompanyID\n")

	out, err := newMerger().Merge(ctx, left, empty, domain.IdentifierColumn)
	require.NoError(t, err)
	assert.Equal(t, left.ColumnNames(), out.ColumnNames())
	assert.Equal(t, "CompanyName,CompanyID,Revenue\nGlobex,1,\nInitech,2,5\nAcme,3,10\n", render(t, out))

	out, err = newMerger().Merge(ctx, empty, left, domain.IdentifierColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"CompanyID", "CompanyName", "Revenue"}, out.ColumnNames())
	assert.Equal(t, 3, out.Height())
}

func TestHashMerger_SharedColumnsGetSuffixes(t *testing.T) {
	left := mustTable(t, "CompanyID,CompanyName,City\n1,Acme,Oslo\n")
	right := mustTable(t, "CompanyName,CompanyID\nACME Corp,1\n")

	out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
	require.NoError(t, err)
	assert.Equal(t, "CompanyID,CompanyName_x,City,CompanyName_y\n1,Acme,Oslo,ACME Corp\n", render(t, out))

	_, err = merge.DistinctCount(out, domain.SummaryColumn)
	var missing *domain.MissingColumnError
	require.ErrorAs(t, err, &missing)
}

func TestHashMerger_KeyOrdering(t *testing.T) {
	t.Run("numeric keys sort by value and normalize", func(t *testing.T) {
		left := mustTable(t, "CompanyID,a\n10,x\n2,y\n1.0,z\n")
		right := mustTable(t, "CompanyID,b\n1,p\n9,q\n")

		out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
		require.NoError(t, err)
		assert.Equal(t, "CompanyID,a,b\n1.0,z,p\n2,y,\n9,,q\n10,x,\n", render(t, out))
	})

	t.Run("text keys sort lexically", func(t *testing.T) {
		left := mustTable(t, "CompanyID,a\nb,x\nB,y\n")
		right := mustTable(t, "CompanyID,b\na,p\n")

		out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
		require.NoError(t, err)
		assert.Equal(t, "CompanyID,a,b\nB,y,\na,,p\nb,x,\n", render(t, out))
	})

	t.Run("null keys match each other and sort last", func(t *testing.T) {
		left := mustTable(t, "CompanyID,a\n,x\n2,y\n")
		right := mustTable(t, "CompanyID,b\n,p\n1,q\n")

		out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
		require.NoError(t, err)
		assert.Equal(t, "CompanyID,a,b\n1,,q\n2,y,\n,x,p\n", render(t, out))
	})
}

func TestHashMerger_KeyCanonicalization(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		want  string
	}{
		{
			name:  "large integers stay distinct and ordered",
			left:  "CompanyID,a\n9007199254740993,x\n1234567890123456789,y\n",
			right: "CompanyID,b\n9007199254740992,p\n1234567890123456788,q\n",
			want: "CompanyID,a,b\n9007199254740992,,p\n9007199254740993,x,\n" +
				"1234567890123456788,,q\n1234567890123456789,y,\n",
		},
		{
			name:  "exponent matches plain integer",
			left:  "CompanyID,a\n1e3,x\n",
			right: "CompanyID,b\n1000,p\n",
			want:  "CompanyID,a,b\n1e3,x,p\n",
		},
		{
			name:  "leading zeros match",
			left:  "CompanyID,a\n007,x\n",
			right: "CompanyID,b\n7,p\n70,q\n",
			want:  "CompanyID,a,b\n007,x,p\n70,,q\n",
		},
		{
			name:  "fractions compare exactly",
			left:  "CompanyID,a\n0.1,x\n0.30000000000000004,y\n",
			right: "CompanyID,b\n0.3,p\n0.10,q\n",
			want:  "CompanyID,a,b\n0.1,x,q\n0.3,,p\n0.30000000000000004,y,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newMerger().Merge(ctx, mustTable(t, tt.left), mustTable(t, tt.right), domain.IdentifierColumn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, render(t, out))
		})
	}
}

func TestHashMerger_MissingValueKeys(t *testing.T) {
	left := mustTable(t, "CompanyID,CompanyName\n1,Acme\nNULL,Globex\n")
	right := mustTable(t, "CompanyID,Revenue\n1,100\n2,50\n3,NA\n")

	out, err := newMerger().Merge(ctx, left, right, domain.IdentifierColumn)
	require.NoError(t, err)
	assert.Equal(t, "CompanyID,CompanyName,Revenue\n1,Acme,100\n2,,50\n3,,\n,Globex,\n", render(t, out))
}

func TestHashMerger_Failures(t *testing.T) {
	tests := []struct {
		name    string
		left    string
		right   string
		wantErr string
	}{
		{
			name:    "incompatible key kinds",
			left:    "CompanyID,a\n1,x\n",
			right:   "CompanyID,b\nACME-1,y\n",
			wantErr: `cannot merge on numeric and text columns for key "CompanyID"`,
		},
		{
			name:    "suffix collision",
			left:    "CompanyID,v,v_x\n1,a,b\n",
			right:   "CompanyID,v\n1,c\n",
			wantErr: `produce duplicate column "v_x"`,
		},
		{
			name:    "missing key",
			left:    "CompanyID,a\n1,x\n",
			right:   "Other,b\n1,y\n",
			wantErr: `key column "CompanyID" missing from merge input`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			m := merge.NewHashMerger(slog.New(slog.NewTextHandler(&logs, nil)))

			_, err := m.Merge(ctx, mustTable(t, tt.left), mustTable(t, tt.right), domain.IdentifierColumn)
			require.Error(t, err)
			var mergeErr *domain.MergeError
			require.ErrorAs(t, err, &mergeErr)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, logs.String(), merge.FailureMessage)
			assert.Contains(t, logs.String(), "level=ERROR")
		})
	}
}

func TestHashMerger_CanceledContext(t *testing.T) {
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := newMerger().Merge(cctx, mustTable(t, "CompanyID\n1\n"), mustTable(t, "CompanyID\n1\n"), domain.IdentifierColumn)
	require.ErrorIs(t, err, context.Canceled)
}
