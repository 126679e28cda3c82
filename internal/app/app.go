// Package app wires the csvmerge pipeline: load, validate, merge, summarize, write.
package app

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"csvmerge/internal/config"
	"csvmerge/internal/csvio"
	"csvmerge/internal/domain"
	"csvmerge/internal/engine"
	"csvmerge/internal/merge"
	"csvmerge/internal/storage"
)

// Deps holds the collaborators a Runner needs.
type Deps struct {
	Store    domain.Store
	Merger   domain.Merger
	Reporter Reporter
	Logger   *slog.Logger
}

// Options names the inputs and output of one run.
type Options struct {
	File1   string
	File2   string
	Outfile string
	// Key and SummaryColumn default to domain.IdentifierColumn and domain.SummaryColumn.
	Key           string
	SummaryColumn string
}

// Result describes a completed run.
type Result struct {
	Outfile       string   `json:"outfile"`
	Rows          int      `json:"rows"`
	Columns       []string `json:"columns"`
	SummaryColumn string   `json:"summary_column"`
	DistinctCount int      `json:"distinct_count"`
}

// Runner executes the pipeline once per Run call.
type Runner struct {
	store    domain.Store
	merger   domain.Merger
	reporter Reporter
	logger   *slog.Logger
}

// New creates a Runner. A nil Reporter discards progress messages.
func New(deps Deps) *Runner {
	r := &Runner{
		store:    deps.Store,
		merger:   deps.Merger,
		reporter: deps.Reporter,
		logger:   deps.Logger,
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Run loads both inputs, checks each has the key column, outer-joins them,
// reports the distinct count of the summary column and writes the result.
// Nothing is written unless every earlier stage succeeds.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	key := opts.Key
	if key == "" {
		key = domain.IdentifierColumn
	}
	summaryCol := opts.SummaryColumn
	if summaryCol == "" {
		summaryCol = domain.SummaryColumn
	}
	outfile := opts.Outfile
	if outfile == "" {
		outfile = config.DefaultOutfile
	}

	inputs := make([]merge.Input, 0, 2)
	for _, loc := range []string{opts.File1, opts.File2} {
		tbl, err := r.load(ctx, loc)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, merge.Input{Source: loc, Table: tbl})
	}

	if err := merge.ValidateInputs(key, inputs...); err != nil {
		return nil, err
	}

	merged, err := r.merger.Merge(ctx, inputs[0].Table, inputs[1].Table, key)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("merged tables", "rows", merged.Height(), "columns", merged.Width())

	distinct, err := merge.DistinctCount(merged, summaryCol)
	if err != nil {
		return nil, err
	}
	r.reporter.Summary(summaryCol, distinct)

	if err := r.write(ctx, merged, outfile); err != nil {
		return nil, err
	}
	r.reporter.Written(outfile)

	return &Result{
		Outfile:       outfile,
		Rows:          merged.Height(),
		Columns:       merged.ColumnNames(),
		SummaryColumn: summaryCol,
		DistinctCount: distinct,
	}, nil
}

func (r *Runner) load(ctx context.Context, location string) (*domain.Table, error) {
	rc, err := r.store.Open(ctx, location)
	if err != nil {
		return nil, domain.ErrFileRead(location, err, "read %s", location)
	}
	defer func() { _ = rc.Close() }()

	tbl, err := csvio.Read(rc, location)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded table", "source", location, "rows", tbl.Height(), "columns", tbl.Width())
	return tbl, nil
}

func (r *Runner) write(ctx context.Context, tbl *domain.Table, location string) error {
	var buf bytes.Buffer
	if err := csvio.Write(&buf, tbl); err != nil {
		return domain.ErrFileWrite(location, err, "serialize %s", location)
	}
	if err := r.store.Put(ctx, location, bytes.NewReader(buf.Bytes())); err != nil {
		return domain.ErrFileWrite(location, err, "write %s", location)
	}
	return nil
}

// NewStore builds the storage router for cfg. S3 locations are only
// available when S3 credentials are configured.
func NewStore(cfg *config.Config) (*storage.Router, error) {
	if !cfg.S3.Configured() {
		return storage.NewRouter(nil), nil
	}
	s3store, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("configure S3: %w", err)
	}
	return storage.NewRouter(s3store), nil
}

// NewMerger builds the merge engine named by cfg.Engine. The returned closer
// releases engine resources and must be called when the merger is done.
func NewMerger(cfg *config.Config, logger *slog.Logger) (domain.Merger, io.Closer, error) {
	switch cfg.Engine {
	case config.EngineNative, "":
		return merge.NewHashMerger(logger), nopCloser{}, nil
	case config.EngineDuckDB:
		db, err := sql.Open("duckdb", "")
		if err != nil {
			return nil, nil, fmt.Errorf("open duckdb: %w", err)
		}
		return engine.NewDuckDBMerger(db, logger), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported engine %q", cfg.Engine)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
