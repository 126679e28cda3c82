// Package merge implements full outer joins of domain tables on a key column.
package merge

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"sort"

	"csvmerge/internal/domain"
)

// Suffixes applied to non-key columns that appear in both inputs.
const (
	LeftSuffix  = "_x"
	RightSuffix = "_y"
)

// FailureMessage is logged whenever a join fails.
const FailureMessage = "Error when attempting to combine CSV files"

// Plan describes the output layout of an outer join. For each output column,
// LeftIndex and RightIndex give the source column position, or -1.
// The key column has both set; its value is taken from whichever side matched.
type Plan struct {
	Key        string
	Columns    []string
	LeftIndex  []int
	RightIndex []int
	KeyPos     int
	Numeric    bool
}

// NewPlan computes the output columns for joining left and right on key and
// checks that the key columns can be compared.
func NewPlan(left, right *domain.Table, key string) (*Plan, error) {
	lk := left.Column(key)
	rk := right.Column(key)
	if lk == nil || rk == nil {
		return nil, fmt.Errorf("key column %q missing from merge input", key)
	}
	lkind, rkind := domain.InferKeyKind(lk), domain.InferKeyKind(rk)
	if !lkind.CompatibleWith(rkind) {
		return nil, fmt.Errorf("cannot merge on %s and %s columns for key %q", lkind, rkind, key)
	}

	shared := make(map[string]bool)
	for _, name := range right.ColumnNames() {
		if name != key && left.HasColumn(name) {
			shared[name] = true
		}
	}

	p := &Plan{
		Key:     key,
		KeyPos:  left.ColumnIndex(key),
		Numeric: lkind == domain.KindNumeric || rkind == domain.KindNumeric,
	}
	for i, name := range left.ColumnNames() {
		ri := -1
		switch {
		case name == key:
			ri = right.ColumnIndex(key)
		case shared[name]:
			name += LeftSuffix
		}
		p.add(name, i, ri)
	}
	for i, name := range right.ColumnNames() {
		if name == key {
			continue
		}
		if shared[name] {
			name += RightSuffix
		}
		p.add(name, -1, i)
	}

	seen := make(map[string]bool, len(p.Columns))
	for _, name := range p.Columns {
		if seen[name] {
			return nil, fmt.Errorf("suffixes %q and %q produce duplicate column %q", LeftSuffix, RightSuffix, name)
		}
		seen[name] = true
	}
	return p, nil
}

func (p *Plan) add(name string, li, ri int) {
	p.Columns = append(p.Columns, name)
	p.LeftIndex = append(p.LeftIndex, li)
	p.RightIndex = append(p.RightIndex, ri)
}

// CanonicalKey returns the value used to match keys. Numeric keys are
// reduced to their exact rational form, so "1", "1.0", "007" and "1e0" match
// while 9007199254740992 and 9007199254740993 do not.
func (p *Plan) CanonicalKey(cell sql.NullString) sql.NullString {
	if !cell.Valid || !p.Numeric {
		return cell
	}
	r, ok := domain.ParseNumber(cell.String)
	if !ok {
		return cell
	}
	return domain.Value(r.RatString())
}

// KeyRanks returns the ascending position of every distinct non-null
// canonical key of left and right. Numeric keys are ranked by exact value,
// text keys bytewise. The null key has no rank and sorts after all others.
func (p *Plan) KeyRanks(left, right *domain.Table) map[string]int64 {
	type rankedKey struct {
		key string
		num *big.Rat
	}
	seen := make(map[string]bool)
	var keys []rankedKey
	for _, tbl := range []*domain.Table{left, right} {
		for _, cell := range tbl.Column(p.Key).Values {
			k := p.CanonicalKey(cell)
			if !k.Valid || seen[k.String] {
				continue
			}
			seen[k.String] = true
			rk := rankedKey{key: k.String}
			if p.Numeric {
				rk.num, _ = new(big.Rat).SetString(k.String)
			}
			keys = append(keys, rk)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if p.Numeric {
			return keys[i].num.Cmp(keys[j].num) < 0
		}
		return keys[i].key < keys[j].key
	})

	ranks := make(map[string]int64, len(keys))
	for i, rk := range keys {
		ranks[rk.key] = int64(i)
	}
	return ranks
}

// Fail logs the static failure message and returns err as a MergeError.
func Fail(logger *slog.Logger, err error) error {
	logger.Error(FailureMessage, "error", err)
	if me, ok := err.(*domain.MergeError); ok {
		return me
	}
	return domain.ErrMerge(err, "combine CSV files")
}
