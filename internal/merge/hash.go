package merge

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"

	"csvmerge/internal/domain"
)

// Compile-time check.
var _ domain.Merger = (*HashMerger)(nil)

// HashMerger joins two in-memory tables with a hash join.
type HashMerger struct {
	logger *slog.Logger
}

// NewHashMerger creates a HashMerger that reports failures to logger.
func NewHashMerger(logger *slog.Logger) *HashMerger {
	return &HashMerger{logger: logger}
}

type group struct {
	key   sql.NullString
	left  []int
	right []int
}

// Merge returns the full outer join of left and right on key. Keys are emitted
// in ascending order with null keys last; within a key, every left row is
// paired with every right row, both in input order.
func (m *HashMerger) Merge(ctx context.Context, left, right *domain.Table, key string) (*domain.Table, error) {
	plan, err := NewPlan(left, right, key)
	if err != nil {
		return nil, Fail(m.logger, err)
	}

	groups := make(map[sql.NullString]*group)
	var order []*group
	bucket := func(cell sql.NullString) *group {
		k := plan.CanonicalKey(cell)
		g, ok := groups[k]
		if !ok {
			g = &group{key: k}
			groups[k] = g
			order = append(order, g)
		}
		return g
	}
	for i, cell := range left.Column(key).Values {
		g := bucket(cell)
		g.left = append(g.left, i)
	}
	for i, cell := range right.Column(key).Values {
		g := bucket(cell)
		g.right = append(g.right, i)
	}
	ranks := plan.KeyRanks(left, right)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i].key, order[j].key
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return ranks[a.String] < ranks[b.String]
	})

	out, err := domain.NewTable(plan.Columns...)
	if err != nil {
		return nil, Fail(m.logger, err)
	}
	for _, g := range order {
		if err := ctx.Err(); err != nil {
			return nil, Fail(m.logger, err)
		}
		lrows, rrows := g.left, g.right
		if len(lrows) == 0 {
			lrows = []int{-1}
		}
		if len(rrows) == 0 {
			rrows = []int{-1}
		}
		for _, li := range lrows {
			var lrow []sql.NullString
			if li >= 0 {
				lrow = left.Row(li)
			}
			for _, ri := range rrows {
				var rrow []sql.NullString
				if ri >= 0 {
					rrow = right.Row(ri)
				}
				if err := out.AppendRow(plan.Row(lrow, rrow)); err != nil {
					return nil, Fail(m.logger, err)
				}
			}
		}
	}
	return out, nil
}

// Row assembles one output row from a left and a right source row.
// A nil side did not match and contributes nulls.
func (p *Plan) Row(lrow, rrow []sql.NullString) []sql.NullString {
	row := make([]sql.NullString, len(p.Columns))
	for j := range p.Columns {
		switch {
		case lrow != nil && p.LeftIndex[j] >= 0:
			row[j] = lrow[p.LeftIndex[j]]
		case rrow != nil && p.RightIndex[j] >= 0:
			row[j] = rrow[p.RightIndex[j]]
		}
	}
	return row
}
