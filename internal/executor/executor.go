// Package executor fans the chunk encoder out over a bounded worker pool and
// collects results in chunk-index order. A conversion is all-or-nothing
// across its chunks: one failed encode fails the whole run and no further
// chunks are dispatched.
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/chunkmaster/internal/planner"
)

// Result is the outcome for one chunk.
type Result struct {
	Index      int
	SourcePath string // Extracted chunk (temporary).
	OutputPath string // Encoded chunk (temporary).
	OK         bool
}

// EncodeFunc encodes one chunk. Implementations report failure through
// Result.OK rather than an error, matching the encoder's boolean contract.
type EncodeFunc func(ctx context.Context, spec planner.ChunkSpec) Result

// RunAll encodes every chunk with at most workers concurrent invocations.
// Results are returned indexed by chunk order regardless of completion
// order; each worker writes only its own slot. The first failed chunk stops
// new dispatches and fails the run — in-flight encodes finish, but their
// outputs are never used.
func RunAll(ctx context.Context, chunks []planner.ChunkSpec, workers int, encode EncodeFunc) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, spec := range chunks {
		spec := spec
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := encode(gctx, spec)
			results[spec.Index] = r
			if !r.OK {
				return fmt.Errorf("chunk %d failed to encode", spec.Index)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A parent cancellation that lands before any dispatch leaves the group
	// empty; surface it rather than returning zero-value results.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
