// Package verify runs read-only data-quality checks against a loaded store and
// renders them as terminal tables.
package verify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/ipksa-ingest/internal/data/repos"
	"github.com/yungbote/ipksa-ingest/internal/data/store"
	"github.com/yungbote/ipksa-ingest/internal/domain/ingesterr"
	"github.com/yungbote/ipksa-ingest/internal/observability"
	"github.com/yungbote/ipksa-ingest/internal/platform/dbctx"
	"github.com/yungbote/ipksa-ingest/internal/platform/logger"
)

type Status string

const (
	StatusPass    Status = "pass"
	StatusWarn    Status = "warn"
	StatusFail    Status = "fail"
	StatusInfo    Status = "info"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one check. Scalar checks fill Count, tabular checks
// fill Headers and Rows.
type Outcome struct {
	Name    string
	Title   string
	Status  Status
	Count   int64
	Headers []string
	Rows    [][]string
	Detail  string
	Err     error
}

type checkFunc func(ctx context.Context, out *Outcome) error

type check struct {
	name  string
	title string
	run   checkFunc
}

// DefaultSampleIDs spreads the sample across the corpus.
var DefaultSampleIDs = []int64{1, 1000, 10000, 20000, 30000, 40000}

type Reporter struct {
	db        *gorm.DB
	hadiths   repos.HadithRepo
	markers   repos.MarkerRepo
	log       *logger.Logger
	sampleIDs []int64
	checks    []check
}

func NewReporter(db *gorm.DB, hadiths repos.HadithRepo, markers repos.MarkerRepo, baseLog *logger.Logger) *Reporter {
	r := &Reporter{
		db:        db,
		hadiths:   hadiths,
		markers:   markers,
		log:       baseLog.With("component", "VerificationReporter"),
		sampleIDs: DefaultSampleIDs,
	}
	r.checks = r.defaultChecks()
	return r
}

// Names lists the checks in run order.
func (r *Reporter) Names() []string {
	out := make([]string, 0, len(r.checks))
	for _, c := range r.checks {
		out = append(out, c.name)
	}
	return out
}

// Run executes every check. A failing or panicking check yields a fail
// outcome and never stops the others.
func (r *Reporter) Run(ctx context.Context) []Outcome {
	ctx, span := observability.StartSpan(ctx, "verify.run", attribute.Int("verify.checks", len(r.checks)))
	defer span.End()

	r.log.Info("Running verification checks", "count", len(r.checks))
	outcomes := make([]Outcome, 0, len(r.checks))
	for _, c := range r.checks {
		outcomes = append(outcomes, r.runCheck(ctx, c))
	}
	failed := Failed(outcomes)
	span.SetAttributes(attribute.Int("verify.failed", len(failed)))
	if len(failed) > 0 {
		r.log.Warn("Verification finished with failed checks", "failed", failed)
	} else {
		r.log.Info("Verification finished")
	}
	return outcomes
}

func (r *Reporter) runCheck(ctx context.Context, c check) (out Outcome) {
	ctx, span := observability.StartSpan(ctx, "verify."+c.name)
	out = Outcome{Name: c.name, Title: c.title}
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = ingesterr.NewError(ingesterr.CodeStorage, "verify."+c.name, fmt.Sprintf("panic: %v", p), nil)
		}
		if err != nil {
			out.Status = StatusFail
			out.Err = err
			out.Detail = err.Error()
			r.log.Error("Verification check failed", "check", c.name, "error", err)
		}
		span.SetAttributes(attribute.String("verify.status", string(out.Status)))
		observability.EndSpan(span, err)
	}()
	err = c.run(ctx, &out)
	return out
}

// Failed returns the names of checks that could not run.
func Failed(outcomes []Outcome) []string {
	var out []string
	for _, o := range outcomes {
		if o.Status == StatusFail {
			out = append(out, o.Name)
		}
	}
	return out
}

func (r *Reporter) dbc(ctx context.Context) dbctx.Context {
	return dbctx.Context{Ctx: ctx}
}

func (r *Reporter) scalar(ctx context.Context, op, query string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw(query).Scan(&n).Error; err != nil {
		return 0, store.Classify(op, err)
	}
	return n, nil
}

// zeroExpected reports pass when the query counts nothing and warn otherwise.
func (r *Reporter) zeroExpected(query string) checkFunc {
	return func(ctx context.Context, out *Outcome) error {
		n, err := r.scalar(ctx, "verify."+out.Name, query)
		if err != nil {
			return err
		}
		out.Count = n
		out.Status = StatusPass
		if n != 0 {
			out.Status = StatusWarn
		}
		return nil
	}
}
