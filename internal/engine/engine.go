// Package engine runs merges inside an embedded DuckDB database.
package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"csvmerge/internal/ddl"
	"csvmerge/internal/domain"
	"csvmerge/internal/merge"
)

// Compile-time check.
var _ domain.Merger = (*DuckDBMerger)(nil)

// DuckDBMerger stages both tables into DuckDB with the appender API and
// evaluates the outer join as a single SQL statement. Its output matches
// merge.HashMerger row for row.
type DuckDBMerger struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDBMerger creates a DuckDBMerger on an open DuckDB handle.
func NewDuckDBMerger(db *sql.DB, logger *slog.Logger) *DuckDBMerger {
	return &DuckDBMerger{db: db, logger: logger}
}

// Merge returns the full outer join of left and right on key.
func (m *DuckDBMerger) Merge(ctx context.Context, left, right *domain.Table, key string) (*domain.Table, error) {
	plan, err := merge.NewPlan(left, right, key)
	if err != nil {
		return nil, merge.Fail(m.logger, err)
	}
	out, err := m.join(ctx, plan, left, right)
	if err != nil {
		return nil, merge.Fail(m.logger, err)
	}
	return out, nil
}

func (m *DuckDBMerger) join(ctx context.Context, plan *merge.Plan, left, right *domain.Table) (*domain.Table, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire duckdb connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ranks := plan.KeyRanks(left, right)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	lname, rname := "stage_l_"+suffix, "stage_r_"+suffix
	for _, s := range []struct {
		name string
		tbl  *domain.Table
	}{{lname, left}, {rname, right}} {
		defer dropStaging(conn, s.name, m.logger)
		if err := stage(ctx, conn, s.name, s.tbl, plan, ranks); err != nil {
			return nil, err
		}
	}

	outputs := make([]ddl.JoinOutput, len(plan.Columns))
	for i, name := range plan.Columns {
		outputs[i] = ddl.JoinOutput{Name: name, Left: plan.LeftIndex[i], Right: plan.RightIndex[i]}
	}
	query, err := ddl.FullOuterJoin(lname, rname, outputs)
	if err != nil {
		return nil, fmt.Errorf("build join: %w", err)
	}
	m.logger.Debug("duckdb merge", "sql", query)

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute join: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out, err := domain.NewTable(plan.Columns...)
	if err != nil {
		return nil, err
	}
	cells := make([]sql.NullString, len(plan.Columns))
	dest := make([]any, len(cells))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan joined row: %w", err)
		}
		if err := out.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read joined rows: %w", err)
	}
	return out, nil
}

// stage creates a staging table for tbl and bulk-loads it: input order,
// canonical key, key rank, then every data column positionally.
func stage(ctx context.Context, conn *sql.Conn, name string, tbl *domain.Table, plan *merge.Plan, ranks map[string]int64) error {
	create, err := ddl.CreateStagingTable(name, tbl.Width())
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := conn.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create staging table %q: %w", name, err)
	}

	keyIdx := tbl.ColumnIndex(plan.Key)
	return conn.Raw(func(raw any) error {
		driverConn, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected raw conn type %T", raw)
		}
		appender, err := duckdb.NewAppenderFromConn(driverConn, "", name)
		if err != nil {
			return fmt.Errorf("create appender for %q: %w", name, err)
		}
		values := make([]driver.Value, tbl.Width()+3)
		for i := 0; i < tbl.Height(); i++ {
			row := tbl.Row(i)
			key := plan.CanonicalKey(row[keyIdx])
			values[0] = int64(i)
			values[1] = nullable(key)
			values[2] = nil
			if key.Valid {
				values[2] = ranks[key.String]
			}
			for j, cell := range row {
				values[j+3] = nullable(cell)
			}
			if err := appender.AppendRow(values...); err != nil {
				_ = appender.Close()
				return fmt.Errorf("append row %d to %q: %w", i, name, err)
			}
		}
		if err := appender.Close(); err != nil {
			return fmt.Errorf("flush appender for %q: %w", name, err)
		}
		return nil
	})
}

func dropStaging(conn *sql.Conn, name string, logger *slog.Logger) {
	stmt, err := ddl.DropTable(name)
	if err != nil {
		return
	}
	if _, err := conn.ExecContext(context.Background(), stmt); err != nil {
		logger.Warn("drop staging table", "table", name, "error", err)
	}
}

func nullable(cell sql.NullString) driver.Value {
	if !cell.Valid {
		return nil
	}
	return cell.String
}
