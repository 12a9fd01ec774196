package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	t.Parallel()

	t.Run("set_and_get", func(t *testing.T) {
		t.Parallel()
		ctx := SetTraceID(context.Background())
		traceID := GetTraceID(ctx)
		assert.Len(t, traceID, traceIDLength*2, "trace IDs are hex-encoded")
		assert.NotEqual(t, "", traceID)
	})

	t.Run("unset_context_returns_empty", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", GetTraceID(context.Background()))
	})

	t.Run("non_string_value_returns_empty", func(t *testing.T) {
		t.Parallel()
		ctx := context.WithValue(context.Background(), TraceIDKey, 12345)
		assert.Equal(t, "", GetTraceID(ctx))
	})

	t.Run("ids_are_unique", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := GetTraceID(SetTraceID(context.Background()))
			assert.False(t, seen[id], "duplicate trace ID generated")
			seen[id] = true
		}
	})
}
