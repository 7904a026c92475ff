package toolpath

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/go-cmp/cmp"

	"lamina/pkg/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPlanInvalidProfileFatal(t *testing.T) {
	prof := config.Default()
	prof.FeedRate = -1
	p := &Planner{Profile: prof, Log: quietLogger()}

	_, err := p.Plan(context.Background(), nil)
	if err == nil {
		t.Fatal("invalid profile accepted")
	}
	if !strings.Contains(err.Error(), "invalid profile") {
		t.Errorf("error = %q, want an invalid-profile error", err)
	}
}

func TestPlanEmptyLayerSkipped(t *testing.T) {
	prof := config.Default()
	prof.InfillEvery = 0
	p := &Planner{Profile: prof, Log: quietLogger()}

	inputs := []LayerInput{
		{Z: 0.2, Polylines: [][]v2.Vec{ccwSquare(0, 0, 10)}},
		{Z: 0.4},
		{Z: 0.6, Polylines: [][]v2.Vec{ccwSquare(0, 0, 10)}},
	}

	res, err := p.Plan(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(res.Layers) != 2 {
		t.Fatalf("got %d layers, want 2 (empty layer skipped)", len(res.Layers))
	}
	if res.Layers[0].Index != 0 || res.Layers[1].Index != 2 {
		t.Errorf("layer indices = %d, %d, want 0, 2", res.Layers[0].Index, res.Layers[1].Index)
	}

	empties := 0
	for _, w := range res.Warnings {
		if w.Kind == EmptyLayer {
			empties++
			if w.Layer != 1 {
				t.Errorf("empty-layer warning on layer %d, want 1", w.Layer)
			}
		}
	}
	if empties != 1 {
		t.Errorf("empty-layer warnings = %d, want 1", empties)
	}
}

func TestPlanCancelledContext(t *testing.T) {
	p := &Planner{Profile: config.Default(), Log: quietLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []LayerInput{{Z: 0.2, Polylines: [][]v2.Vec{ccwSquare(0, 0, 10)}}}
	if _, err := p.Plan(ctx, inputs); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPlanDeterministic(t *testing.T) {
	// Layer preparation is concurrent but sequencing is serial, so two
	// runs over the same input must emit identical command streams.
	inputs := []LayerInput{
		{Z: 0.2, Polylines: [][]v2.Vec{ccwSquare(0, 0, 20), cwSquare(8, 8, 4)}},
		{Z: 0.4, Polylines: [][]v2.Vec{ccwSquare(0, 0, 20), ccwSquare(30, 0, 10)}},
		{Z: 0.6, Polylines: [][]v2.Vec{ccwSquare(5, 5, 10)}},
	}

	run := func() []MotionCommand {
		p := &Planner{Profile: config.Default(), Log: quietLogger()}
		res, err := p.Plan(context.Background(), inputs)
		if err != nil {
			t.Fatalf("Plan: %v", err)
		}
		return res.Commands()
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("command streams differ between runs:\n%s", diff)
	}
}

func TestPlanWasherEndToEnd(t *testing.T) {
	prof := config.Default()
	prof.InfillEvery = 0
	p := &Planner{Profile: prof, Log: quietLogger()}

	inputs := []LayerInput{
		{Z: 0.2, Polylines: [][]v2.Vec{ccwSquare(0, 0, 20), cwSquare(7, 7, 6)}},
		{Z: 0.4, Polylines: [][]v2.Vec{ccwSquare(0, 0, 20), cwSquare(7, 7, 6)}},
	}

	res, err := p.Plan(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(res.Layers))
	}
	for _, l := range res.Layers {
		// Outer and hole both traced: 4 closing moves per square
		// minimum, and a retract pair for the hop into the hole.
		if got := countOps(l.Commands, LinearMove); got < 8 {
			t.Errorf("layer %d: trace moves = %d, want >= 8", l.Index, got)
		}
	}
	last := res.Layers[1].Commands[len(res.Layers[1].Commands)-1]
	if last.Target != res.End {
		t.Errorf("End = %v, want final command target %v", res.End, last.Target)
	}
}

func TestPlanInfillEveryNth(t *testing.T) {
	prof := config.Default()
	prof.InfillEvery = 2
	prof.InfillPattern = config.PatternLinear
	prof.BaseSpacing = 2
	prof.InfillDensity = 0
	p := &Planner{Profile: prof, Log: quietLogger()}

	inputs := []LayerInput{
		{Z: 0.2, Polylines: [][]v2.Vec{ccwSquare(0, 0, 10)}},
		{Z: 0.4, Polylines: [][]v2.Vec{ccwSquare(0, 0, 10)}},
	}

	res, err := p.Plan(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	// Perimeter alone is 4 moves; only the even layer gains fill.
	if got := countOps(res.Layers[0].Commands, LinearMove); got != 9 {
		t.Errorf("layer 0 moves = %d, want 9 (perimeter + 5 fill strokes)", got)
	}
	if got := countOps(res.Layers[1].Commands, LinearMove); got != 4 {
		t.Errorf("layer 1 moves = %d, want 4 (perimeter only)", got)
	}
}
