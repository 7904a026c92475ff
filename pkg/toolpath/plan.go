package toolpath

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/config"
	"lamina/pkg/geom"
)

// DefaultTolerance is the geometric tolerance used when the caller
// does not supply one, in mm.
const DefaultTolerance = 0.1

// LayerInput is the raw geometry handed to the engine for one layer:
// closed polylines from the slicer at a known height.
type LayerInput struct {
	Z         float64
	Polylines [][]v2.Vec
}

// Result is the planned output: sequenced layers in order, every
// advisory warning raised along the way, and the final tool position.
type Result struct {
	Layers   []*Layer
	Warnings []Warning
	End      v2.Vec
}

// Commands flattens the per-layer command sequences in layer order.
func (r *Result) Commands() []MotionCommand {
	var out []MotionCommand
	for _, l := range r.Layers {
		out = append(out, l.Commands...)
	}
	return out
}

// Planner runs the full per-layer pipeline: classification,
// segmentation, sequencing, infill. Classification and segmentation
// are pure per-layer functions and are precomputed in parallel;
// sequencing stays strictly serial because each layer consumes the
// previous layer's final tool position.
type Planner struct {
	Profile   config.Profile
	Tolerance float64
	Log       *slog.Logger
}

func (p *Planner) tol() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return DefaultTolerance
}

func (p *Planner) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// Plan processes all layers and returns the accumulated motion.
// The profile is validated once up front; an invalid profile is the
// only fatal error. Cancellation is cooperative and checked at layer
// boundaries, so latency is bounded by one layer's processing time.
func (p *Planner) Plan(ctx context.Context, inputs []LayerInput) (*Result, error) {
	if err := p.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	prepared := p.prepare(inputs)

	seq := &Sequencer{Profile: p.Profile, Tolerance: p.tol()}
	res := &Result{}
	var pos v2.Vec

	for i, layer := range prepared {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(layer.Regions) == 0 && len(layer.Orphans) == 0 {
			layer.warn(Warning{
				Kind:    EmptyLayer,
				Message: fmt.Sprintf("no contours at z=%.3f; layer skipped", layer.Z),
			})
			p.report(layer)
			res.Warnings = append(res.Warnings, layer.Warnings...)
			continue
		}

		pos = seq.SequenceLayer(layer, pos)
		if p.Profile.InfillEvery > 0 && i%p.Profile.InfillEvery == 0 {
			for _, reg := range layer.Regions {
				pos = seq.InfillRegion(layer, reg, pos)
			}
		}

		p.report(layer)
		res.Layers = append(res.Layers, layer)
		res.Warnings = append(res.Warnings, layer.Warnings...)
	}

	res.End = pos
	return res, nil
}

// prepare classifies and segments every layer ahead of sequencing,
// fanned out over a bounded worker pool. Each layer's geometry is
// owned exclusively by its worker until the pool drains.
func (p *Planner) prepare(inputs []LayerInput) []*Layer {
	layers := make([]*Layer, len(inputs))

	workers := runtime.NumCPU()
	if workers > len(inputs) {
		workers = len(inputs)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				layers[i] = p.prepareLayer(i, inputs[i])
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return layers
}

func (p *Planner) prepareLayer(idx int, in LayerInput) *Layer {
	layer := &Layer{Index: idx, Z: in.Z}

	contours, dropped := geom.Classify(in.Polylines, p.tol())
	for _, d := range dropped {
		layer.warn(Warning{Kind: DegenerateContour, Message: d.Error()})
	}

	regions, orphans, warns := SegmentRegions(contours)
	layer.Regions = regions
	layer.Orphans = orphans
	for _, w := range warns {
		layer.warn(w)
	}
	return layer
}

// report logs a layer's warnings. EmptyLayer is informational; the
// rest are genuine advisories.
func (p *Planner) report(layer *Layer) {
	log := p.logger()
	for _, w := range layer.Warnings {
		if w.Kind == EmptyLayer {
			log.Info(w.Message, "layer", w.Layer)
			continue
		}
		log.Warn(w.Message, "kind", w.Kind.String(), "layer", w.Layer)
	}
}
