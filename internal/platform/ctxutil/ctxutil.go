package ctxutil

import (
	"context"

	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type traceDataKey struct{}
type callerKey struct{}

// TraceData carries request correlation ids for logs and error responses.
type TraceData struct {
	TraceID   string
	SpanID    string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// WithCaller stores the authenticated caller. Services still receive the
// caller as an explicit argument; this is only the handoff from middleware.
func WithCaller(ctx context.Context, c *org.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func GetCaller(ctx context.Context) *org.Caller {
	if ctx == nil {
		return nil
	}
	if c, ok := ctx.Value(callerKey{}).(*org.Caller); ok {
		return c
	}
	return nil
}
