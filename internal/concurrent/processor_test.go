package concurrent

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/moneyview/internal/logging"
)

func TestNewProcessor_Defaults(t *testing.T) {
	p := NewProcessor(nil, 0, -1)
	assert.Equal(t, runtime.NumCPU(), p.Workers())
	assert.Equal(t, DefaultSequentialThreshold, p.threshold)
	assert.NotNil(t, p.logger)
}

func TestMap_PreservesOrder(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		threshold int
		n         int
	}{
		{"sequential below threshold", 4, 100, 50},
		{"parallel above threshold", 4, 10, 1000},
		{"single worker", 1, 0, 200},
		{"more workers than items", 32, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(logging.NewMockLogger(), tt.workers, tt.threshold)
			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}

			out, err := Map(context.Background(), p, "square", items, func(v int) int { return v * v })
			require.NoError(t, err)
			require.Len(t, out, tt.n)
			for i, v := range out {
				assert.Equal(t, i*i, v)
			}
		})
	}
}

func TestMap_EveryItemProcessedOnce(t *testing.T) {
	p := NewProcessor(nil, 8, 0)
	var calls atomic.Int64
	items := make([]string, 500)

	_, err := Map(context.Background(), p, "count", items, func(string) struct{} {
		calls.Add(1)
		return struct{}{}
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), calls.Load())
}

func TestMap_Empty(t *testing.T) {
	out, err := Map(context.Background(), NewProcessor(nil, 2, 0), "empty", []int(nil), func(v int) int { return v })
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, threshold := range []int{0, 1000} {
		p := NewProcessor(nil, 4, threshold)
		_, err := Map(ctx, p, "cancelled", make([]int, 100), func(v int) int { return v })
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestMap_LogsParallelStage(t *testing.T) {
	logger := logging.NewMockLogger()
	p := NewProcessor(logger, 2, 0)

	_, err := Map(context.Background(), p, "preprocess", []int{1, 2, 3}, func(v int) int { return v })
	require.NoError(t, err)

	entries := logger.GetEntriesByLevel("DEBUG")
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Fields, logging.Field{Key: logging.FieldStage, Value: "preprocess"})
}
