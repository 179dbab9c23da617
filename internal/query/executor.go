package query

import (
	"context"
	"database/sql"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/ecomagent-backend/pkg/errors"
	"github.com/angelmondragon/ecomagent-backend/pkg/logger"
	"github.com/angelmondragon/ecomagent-backend/pkg/metrics"
)

type Status string

const (
	StatusOK       Status = "ok"
	StatusEmpty    Status = "empty"
	StatusFailed   Status = "failed"
	StatusRejected Status = "rejected"
)

// Result is the outcome of one statement. Rows is never nil.
type Result struct {
	SQL       string
	Columns   []string
	Rows      []map[string]any
	Truncated bool
	Err       error
}

// Status distinguishes "executed, no rows" from "execution failed".
func (r Result) Status() Status {
	switch {
	case pkgerrors.HasCode(r.Err, pkgerrors.CodeQueryRejected):
		return StatusRejected
	case r.Err != nil:
		return StatusFailed
	case len(r.Rows) == 0:
		return StatusEmpty
	default:
		return StatusOK
	}
}

// Queryer is satisfied by *sql.DB.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Options struct {
	ReadOnly bool
	MaxRows  int
}

// Executor runs arbitrary statements and returns rows as column maps.
type Executor struct {
	db      Queryer
	opts    Options
	logg    *logger.Logger
	metrics *metrics.AskMetrics
}

func NewExecutor(db Queryer, opts Options, logg *logger.Logger, m *metrics.AskMetrics) *Executor {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Executor{db: db, opts: opts, logg: logg, metrics: m}
}

// Execute never returns an error directly; failures are carried on Result.
func (e *Executor) Execute(ctx context.Context, statement string) Result {
	res := e.execute(ctx, statement)
	e.metrics.IncQuery(string(res.Status()))
	return res
}

func (e *Executor) execute(ctx context.Context, statement string) Result {
	res := Result{SQL: statement, Rows: []map[string]any{}}
	ctx = e.logg.WithField(ctx, "sql", statement)

	if e.opts.ReadOnly {
		if err := CheckReadOnly(statement); err != nil {
			e.logg.Warn(ctx, "query rejected: "+pkgerrors.As(err).Message())
			res.Err = err
			return res
		}
	}

	rows, err := e.db.QueryContext(ctx, strings.TrimSpace(statement))
	if err != nil {
		res.Err = pkgerrors.Wrap(pkgerrors.CodeQueryFailed, err, "query failed")
		e.logg.Error(ctx, "query execution failed", err)
		return res
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		res.Err = pkgerrors.Wrap(pkgerrors.CodeQueryFailed, err, "query failed")
		e.logg.Error(ctx, "query execution failed", err)
		return res
	}
	res.Columns = columns

	for rows.Next() {
		if e.opts.MaxRows > 0 && len(res.Rows) >= e.opts.MaxRows {
			res.Truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			res.Rows = []map[string]any{}
			res.Err = pkgerrors.Wrap(pkgerrors.CodeQueryFailed, err, "query failed")
			e.logg.Error(ctx, "query execution failed", err)
			return res
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		res.Rows = []map[string]any{}
		res.Err = pkgerrors.Wrap(pkgerrors.CodeQueryFailed, err, "query failed")
		e.logg.Error(ctx, "query execution failed", err)
		return res
	}

	if res.Truncated {
		e.logg.Warn(e.logg.WithField(ctx, "max_rows", e.opts.MaxRows), "query result truncated")
	}
	return res
}

// normalizeValue makes driver values JSON-safe: bytes become strings and
// non-finite floats their text form ("+Inf", "NaN").
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
	}
	return v
}
