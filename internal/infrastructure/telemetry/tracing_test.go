package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)
	invoiceID := uuid.New()

	ctx, span := telemetry.StartSpan(context.Background(), "invoice.record_payment",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID),
		telemetry.WithAttribute(telemetry.SpanAttrAssetsAffected, 3),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	assert.NotEmpty(t, telemetry.GetSpanID(ctx))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.record_payment", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	v, ok := attrValue(spans[0].Attributes(), telemetry.SpanAttrInvoiceID)
	require.True(t, ok)
	assert.Equal(t, invoiceID.String(), v.AsString())
	v, _ = attrValue(spans[0].Attributes(), telemetry.SpanAttrAssetsAffected)
	assert.Equal(t, int64(3), v.AsInt64())
}

func TestStartServiceSpan_Name(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "contract", "activate")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "contract.activate", sr.Ended()[0].Name())
}

func TestEndSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, ok := telemetry.StartSpan(context.Background(), "ok")
	telemetry.EndSpan(ok, nil)
	_, failed := telemetry.StartSpan(context.Background(), "failed")
	telemetry.EndSpan(failed, errors.New("period overlap"))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "period overlap", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestSetAttributesAndEvents(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "contract.terminate")
	telemetry.SetAttributes(span, telemetry.SpanAttrToStatus, "TERMINATED", "dangling")
	telemetry.AddEvent(span, "assets_released", "count", 2)
	telemetry.RecordError(span, nil)
	span.End()

	s := sr.Ended()[0]
	v, ok := attrValue(s.Attributes(), telemetry.SpanAttrToStatus)
	require.True(t, ok)
	assert.Equal(t, "TERMINATED", v.AsString())
	_, ok = attrValue(s.Attributes(), "dangling")
	assert.False(t, ok)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "assets_released", s.Events()[0].Name)
	assert.Equal(t, codes.Unset, s.Status().Code)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))
}
