package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/exportkit/errors"
)

// Outcomes recorded for provider calls.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeAmbiguous = "ambiguous"
	OutcomeError     = "error"
)

// Operation tracks one traced provider call.
type Operation struct {
	Name      string
	Contract  string
	StartTime time.Time
	Metrics   *Metrics

	ctx  context.Context
	span trace.Span
}

// StartOperation starts a span named spanName for the call. If metrics is
// nil, metric recording is skipped.
func StartOperation(ctx context.Context, spanName, operation, contract string, metrics *Metrics) *Operation {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrOperation, operation),
		attribute.String(AttrContract, contract),
	)
	return &Operation{
		Name:      operation,
		Contract:  contract,
		StartTime: time.Now(),
		Metrics:   metrics,
		ctx:       ctx,
		span:      span,
	}
}

// Context returns the context carrying the operation span.
func (op *Operation) Context() context.Context { return op.ctx }

// SetMatches records how many exports matched the query.
func (op *Operation) SetMatches(n int) {
	op.span.SetAttributes(attribute.Int(AttrMatches, n))
}

// End ends the span and records the call.
func (op *Operation) End(err error) {
	outcome := Outcome(err)
	if err != nil {
		op.span.RecordError(err)
		if appErr, ok := errors.AsAppError(err); ok {
			op.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
			if op.Metrics != nil {
				op.Metrics.RecordError(op.ctx, string(appErr.Code), op.Name)
			}
		} else if op.Metrics != nil {
			op.Metrics.RecordError(op.ctx, string(errors.ErrCodeInternal), op.Name)
		}
	}
	op.span.SetAttributes(attribute.String(AttrOutcome, outcome))
	op.span.End()

	if op.Metrics != nil {
		op.Metrics.RecordResolution(op.ctx, op.Name, op.Contract, outcome, time.Since(op.StartTime))
	}
}

// Outcome classifies err for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.HasCode(err, errors.ErrCodeExportNotFound):
		return OutcomeNotFound
	case errors.HasCode(err, errors.ErrCodeAmbiguousExport):
		return OutcomeAmbiguous
	default:
		return OutcomeError
	}
}
