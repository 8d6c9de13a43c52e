package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/meshscreen/internal/catalog"
	"github.com/Faultbox/meshscreen/internal/fetch"
	"github.com/Faultbox/meshscreen/internal/texmeta"
	"github.com/Faultbox/meshscreen/internal/validate"
)

// sidecarName is the texture metadata file written next to the exported mesh.
const sidecarName = "pbr_textures.json"

// Options configures a pipeline run.
type Options struct {
	OutputRoot string
	Workers    int
}

// Result is the outcome of one run. The per-asset slice preserves the
// catalog order; the aggregates are commutative sums over it.
type Result struct {
	RunID         string
	Assets        []Asset
	ValidBySource map[string]int
	Elapsed       time.Duration
}

// ExportedCount returns the number of assets that reached Exported.
func (r *Result) ExportedCount() int {
	n := 0
	for _, a := range r.Assets {
		if a.Status == StatusExported {
			n++
		}
	}
	return n
}

// CountByStatus returns how many assets finished in each status.
func (r *Result) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, a := range r.Assets {
		counts[a.Status]++
	}
	return counts
}

// Pipeline screens catalogued assets: fetch, load, validate, export.
type Pipeline struct {
	opts      Options
	fetcher   fetch.Fetcher
	loader    *Loader
	validator *validate.Validator
	log       *zap.Logger
}

// New builds a Pipeline. An unset worker count sizes the pool to the
// available CPUs.
func New(opts Options, fetcher fetch.Fetcher, validator *validate.Validator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	return &Pipeline{
		opts:      opts,
		fetcher:   fetcher,
		loader:    NewLoader(log),
		validator: validator,
		log:       log,
	}
}

// Run screens every entry to completion and returns the aggregated
// result. Assets are isolated from each other: one asset's failure never
// affects another, and a failed asset leaves no output directory behind.
// Cancelling ctx stops scheduling new work; assets already in flight
// still clean up after themselves.
func (p *Pipeline) Run(ctx context.Context, entries []catalog.Entry) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	p.log.Info("starting screening run",
		zap.String("run_id", runID),
		zap.Int("assets", len(entries)),
		zap.Int("workers", p.opts.Workers))

	assets := make([]Asset, len(entries))
	for i, e := range entries {
		name := path.Base(e.Source)
		if name == "." || name == "/" || name == "" {
			name = "model.glb"
		}
		dir := filepath.Join(p.opts.OutputRoot, sanitizeID(e.ID))
		assets[i] = Asset{
			ID:        e.ID,
			Source:    e.Source,
			Dir:       dir,
			LocalPath: filepath.Join(dir, name),
			Status:    StatusPending,
		}
	}

	// Stage 1: acquisition. Each worker owns the assets it is handed, so
	// the slice needs no locking.
	p.forEach(ctx, assets, p.acquire)

	// Stage 2: validation and export for everything acquired.
	p.forEach(ctx, assets, p.screen)

	res := &Result{
		RunID:         runID,
		Assets:        assets,
		ValidBySource: make(map[string]int),
		Elapsed:       time.Since(start),
	}
	for _, a := range assets {
		if a.Status == StatusExported {
			res.ValidBySource[path.Dir(a.Source)]++
		}
	}

	p.log.Info("screening run finished",
		zap.String("run_id", runID),
		zap.Int("exported", res.ExportedCount()),
		zap.Int("total", len(assets)),
		zap.Duration("elapsed", res.Elapsed))

	return res, ctx.Err()
}

// forEach runs fn over every asset using the configured worker pool.
func (p *Pipeline) forEach(ctx context.Context, assets []Asset, fn func(ctx context.Context, a *Asset)) {
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, &assets[i])
			}
		}()
	}

	for i := range assets {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Unscheduled assets fail in place; their directories were
			// never created.
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

// acquire fetches one asset into its output directory.
func (p *Pipeline) acquire(ctx context.Context, a *Asset) {
	if a.Status.Terminal() {
		return
	}
	if err := ctx.Err(); err != nil {
		p.abandon(a, StatusAcquisitionFailed, fmt.Sprintf("acquisition cancelled: %v", err))
		return
	}

	if err := p.fetcher.Fetch(ctx, a.Source, a.LocalPath); err != nil {
		p.log.Warn("acquisition failed",
			zap.String("asset", a.ID),
			zap.Error(err))
		p.abandon(a, StatusAcquisitionFailed, fmt.Sprintf("acquisition failed: %v", err))
		return
	}

	a.advance(StatusAcquired)
}

// screen loads, validates, and exports one acquired asset.
func (p *Pipeline) screen(ctx context.Context, a *Asset) {
	if a.Status != StatusAcquired {
		return
	}
	if err := ctx.Err(); err != nil {
		p.abandon(a, StatusInvalid, fmt.Sprintf("screening cancelled: %v", err))
		return
	}

	doc, m, err := p.loader.Load(a.LocalPath)
	if err != nil {
		p.log.Info("asset rejected at load",
			zap.String("asset", a.ID),
			zap.Error(err))
		p.abandon(a, StatusInvalid, err.Error())
		return
	}

	report := p.validator.Validate(ctx, a.ID, m)
	if !report.Passed {
		p.log.Info("asset rejected by validation",
			zap.String("asset", a.ID),
			zap.Strings("reasons", report.Reasons))
		p.abandon(a, StatusInvalid, report.Reasons...)
		return
	}
	a.advance(StatusValid)

	objPath := exportPath(a.LocalPath)
	if err := m.WriteOBJ(objPath); err != nil {
		p.abandon(a, StatusExportFailed, fmt.Sprintf("export failed: %v", err))
		return
	}
	infos := texmeta.Extract(doc)
	if err := texmeta.WriteSidecar(filepath.Join(a.Dir, sidecarName), infos); err != nil {
		p.abandon(a, StatusExportFailed, fmt.Sprintf("writing texture metadata: %v", err))
		return
	}

	a.advance(StatusExported)
	p.log.Debug("asset exported",
		zap.String("asset", a.ID),
		zap.String("path", objPath))
}

// abandon records a terminal failure and removes the asset's output
// directory so no partial files survive.
func (p *Pipeline) abandon(a *Asset, to Status, reasons ...string) {
	a.fail(to, reasons...)
	if a.Dir != "" {
		if err := os.RemoveAll(a.Dir); err != nil {
			p.log.Error("failed to clean up asset dir",
				zap.String("asset", a.ID),
				zap.Error(err))
		}
	}
}

// exportPath swaps the source extension for .obj.
func exportPath(localPath string) string {
	ext := filepath.Ext(localPath)
	return localPath[:len(localPath)-len(ext)] + ".obj"
}
