package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("FromContext() without logger should return Default()")
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if TraceIDFromContext(ctx) != "" || SubgraphFromContext(ctx) != "" {
		t.Fatal("empty context should carry no values")
	}

	ctx = WithTraceID(ctx, "gdrt-01J0000000000000000000000")
	ctx = WithSubgraph(ctx, "products")

	if got := TraceIDFromContext(ctx); got != "gdrt-01J0000000000000000000000" {
		t.Errorf("TraceIDFromContext() = %q", got)
	}
	if got := SubgraphFromContext(ctx); got != "products" {
		t.Errorf("SubgraphFromContext() = %q", got)
	}
}

func TestL_Enriches(t *testing.T) {
	var buf bytes.Buffer
	base, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithLogger(context.Background(), base)
	ctx = WithTraceID(ctx, "gdrt-abc")
	ctx = WithSubgraph(ctx, "reviews")

	L(ctx).Info("sent")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["trace_id"] != "gdrt-abc" {
		t.Errorf("trace_id = %v", entry["trace_id"])
	}
	if entry["subgraph"] != "reviews" {
		t.Errorf("subgraph = %v", entry["subgraph"])
	}
}

func TestL_NoEnrichment(t *testing.T) {
	var buf bytes.Buffer
	base, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	L(WithLogger(context.Background(), base)).Info("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id should be absent")
	}
}
