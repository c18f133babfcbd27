package executor

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/chunkmaster/internal/planner"
)

func specs(n int) []planner.ChunkSpec {
	out := make([]planner.ChunkSpec, n)
	for i := range out {
		out[i] = planner.ChunkSpec{Index: i, Start: float64(i) * 30, Length: 30}
	}
	return out
}

func TestRunAll_PreservesChunkOrder(t *testing.T) {
	// Workers finish in random order; results must still land by index.
	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
		return Result{
			Index:      spec.Index,
			SourcePath: fmt.Sprintf("chunk_%03d.ts", spec.Index),
			OutputPath: fmt.Sprintf("converted_%03d.mp4", spec.Index),
			OK:         true,
		}
	}

	results, err := RunAll(context.Background(), specs(8), 4, encode)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, fmt.Sprintf("converted_%03d.mp4", i), r.OutputPath)
		assert.True(t, r.OK)
	}
}

func TestRunAll_FailedChunkFailsRun(t *testing.T) {
	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		return Result{Index: spec.Index, OK: spec.Index != 3}
	}

	results, err := RunAll(context.Background(), specs(5), 2, encode)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 3")
	assert.Nil(t, results)
}

func TestRunAll_FailureStopsNewDispatches(t *testing.T) {
	var started atomic.Int64
	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		started.Add(1)
		return Result{Index: spec.Index, OK: false}
	}

	_, err := RunAll(context.Background(), specs(100), 1, encode)
	require.Error(t, err)
	// Single worker, first chunk fails; the remaining 99 are never started.
	assert.Less(t, started.Load(), int64(100))
}

func TestRunAll_RespectsWorkerLimit(t *testing.T) {
	var mu sync.Mutex
	var inFlight, peak int

	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return Result{Index: spec.Index, OK: true}
	}

	_, err := RunAll(context.Background(), specs(12), 3, encode)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 3)
}

func TestRunAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int64
	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		called.Add(1)
		return Result{Index: spec.Index, OK: true}
	}

	_, err := RunAll(ctx, specs(4), 2, encode)
	assert.Error(t, err)
	assert.Zero(t, called.Load())
}

func TestRunAll_FloorsWorkersAtOne(t *testing.T) {
	encode := func(ctx context.Context, spec planner.ChunkSpec) Result {
		return Result{Index: spec.Index, OK: true}
	}
	results, err := RunAll(context.Background(), specs(2), 0, encode)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
