package mongodb

import (
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"devevent/internal/domain"
)

var tracer = otel.GetTracerProvider().Tracer("devevent/internal/repository/mongodb")

func spanErr(span trace.Span, err error) error {
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
