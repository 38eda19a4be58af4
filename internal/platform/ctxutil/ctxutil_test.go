package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

func TestCallerRoundTrip(t *testing.T) {
	ctx := context.Background()
	if GetCaller(ctx) != nil {
		t.Fatalf("expected no caller on empty context")
	}
	c := &org.Caller{UserID: uuid.New(), Username: "ann"}
	got := GetCaller(WithCaller(ctx, c))
	if got != c {
		t.Fatalf("caller not returned: %+v", got)
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	td := &TraceData{TraceID: "t", RequestID: "r"}
	got := GetTraceData(WithTraceData(context.Background(), td))
	if got == nil || got.RequestID != "r" {
		t.Fatalf("trace data not returned: %+v", got)
	}
}
