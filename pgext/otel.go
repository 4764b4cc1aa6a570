package pgext

import (
	"context"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-pg/entmap"
	"github.com/go-pg/entmap/orm"
)

const instrumentationName = "github.com/go-pg/entmap"

// OpenTelemetryHook is a entmap.QueryHook that adds OpenTelemetry instrumentation.
// Commands are only traced when the context already carries a recording span.
type OpenTelemetryHook struct {
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

var _ entmap.QueryHook = (*OpenTelemetryHook)(nil)

func (h OpenTelemetryHook) tracer() trace.Tracer {
	tp := h.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(instrumentationName)
}

func (h OpenTelemetryHook) BeforeQuery(ctx context.Context, evt *entmap.QueryEvent) (context.Context, error) {
	if !trace.SpanFromContext(ctx).IsRecording() {
		return ctx, nil
	}

	ctx, _ = h.tracer().Start(ctx, evt.Command.Operation(), trace.WithSpanKind(trace.SpanKindClient))
	return ctx, nil
}

func (h OpenTelemetryHook) AfterQuery(ctx context.Context, evt *entmap.QueryEvent) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	defer span.End()

	// Inserted values may be large or sensitive.
	var query string
	if evt.Command.Operation() == orm.InsertOp {
		query = evt.UnformattedQuery()
	} else {
		query = evt.FormattedQuery()
	}

	const queryLimit = 2000
	if len(query) > queryLimit {
		query = query[:queryLimit]
	}

	fn, file, line := funcFileLine(instrumentationName)

	attrs := make([]attribute.KeyValue, 0, 10)
	attrs = append(attrs,
		attribute.String("db.system", evt.DB.Dialect().Name()),
		attribute.String("db.statement", query),
		attribute.String("db.operation", evt.Command.Operation()),
		attribute.String("db.sql.table", evt.Command.Table),

		attribute.String("code.function", fn),
		attribute.String("code.filepath", file),
		attribute.Int("code.lineno", line),
	)

	if evt.Err != nil {
		switch evt.Err {
		case entmap.ErrNoRows, entmap.ErrMultiRows:
		default:
			span.RecordError(evt.Err)
			span.SetStatus(codes.Error, evt.Err.Error())
		}
	} else if evt.Result != nil {
		if n, err := evt.Result.RowsAffected(); err == nil {
			attrs = append(attrs, attribute.Int64("db.rows_affected", n))
		}
	}

	span.SetAttributes(attrs...)

	return nil
}

func funcFileLine(pkg string) (string, string, int) {
	const depth = 16
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	ff := runtime.CallersFrames(pcs[:n])

	var fn, file string
	var line int
	for {
		f, ok := ff.Next()
		if !ok {
			break
		}
		fn, file, line = f.Function, f.File, f.Line
		if !strings.Contains(fn, pkg) {
			break
		}
	}

	if ind := strings.LastIndexByte(fn, '/'); ind != -1 {
		fn = fn[ind+1:]
	}

	return fn, file, line
}
