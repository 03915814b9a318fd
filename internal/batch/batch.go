// Package batch refines many meshes in parallel, one Refiner per mesh.
package batch

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshrefine/internal/config"
	"github.com/Faultbox/meshrefine/internal/pipeline"
)

// Summary aggregates the stats of a batch run.
type Summary struct {
	Meshes         int
	Faces          int
	OutputVertices int
	Splits         int
	Submeshes      int
	OversizedFaces int
	RefineTime     time.Duration // Summed over meshes
}

// Run refines sources with at most cfg.Batch.Workers meshes in flight.
// Results keep the order of sources. The first error cancels the remaining
// work and is returned.
func Run(ctx context.Context, sources []*pipeline.Source, cfg *config.Config, log *zap.Logger) ([]*pipeline.Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Batch.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*pipeline.Result, len(sources))
	var processed atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := pipeline.Run(ctx, src, cfg, log)
			if err != nil {
				return err
			}
			results[i] = res
			n := processed.Add(1)
			log.Debug("mesh refined",
				zap.String("mesh", src.Name),
				zap.Int64("done", n),
				zap.Int("total", len(sources)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("batch complete",
		zap.Int("meshes", len(sources)),
		zap.Int("workers", workers),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// Summarize totals the stats of results.
func Summarize(results []*pipeline.Result) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Meshes++
		s.Faces += r.Stats.Faces
		s.OutputVertices += r.Stats.OutputVertices
		s.Splits += r.Stats.Splits
		s.Submeshes += r.Stats.Submeshes
		s.OversizedFaces += r.Stats.OversizedFaces
		s.RefineTime += r.Duration
	}
	return s
}
