package toolpath

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/config"
	"lamina/pkg/geom"
)

func testRegion(t *testing.T, polys ...[]v2.Vec) Region {
	t.Helper()
	regions, _, _ := SegmentRegions(classify(t, polys...))
	if len(regions) != 1 {
		t.Fatalf("got %d regions, want 1", len(regions))
	}
	return regions[0]
}

func TestSpacingFromDensity(t *testing.T) {
	p := config.Default()
	p.BaseSpacing = 5

	p.InfillDensity = 0
	if got := Spacing(p); got != 5 {
		t.Errorf("spacing at 0%% = %g, want 5", got)
	}
	p.InfillDensity = 60
	if got := Spacing(p); got != 2 {
		t.Errorf("spacing at 60%% = %g, want 2", got)
	}
	p.InfillDensity = 100
	if got := Spacing(p); got != minSpacing {
		t.Errorf("spacing at 100%% = %g, want floor %g", got, minSpacing)
	}
}

func TestLinearSpansSquare(t *testing.T) {
	reg := testRegion(t, ccwSquare(0, 0, 10))

	for _, spacing := range []float64{2, 3, 4} {
		spans := linearSpans(reg, spacing, false)
		want := int(math.Floor(10 / spacing))
		if len(spans) != want {
			t.Errorf("spacing %g: got %d spans, want %d", spacing, len(spans), want)
			continue
		}
		for _, sp := range spans {
			if l := sp.b.Sub(sp.a).Length(); math.Abs(l-10) > 1e-9 {
				t.Errorf("spacing %g: span length = %g, want 10", spacing, l)
			}
		}
	}
}

func TestLinearSpansSplitByHole(t *testing.T) {
	reg := testRegion(t, ccwSquare(0, 0, 20), cwSquare(8, 8, 4))

	spans := linearSpans(reg, 2, false)
	// The scan line at y=9 crosses the hole and must split in two.
	var at9 []span
	for _, sp := range spans {
		if sp.a.Y == 9 {
			at9 = append(at9, sp)
		}
	}
	if len(at9) != 2 {
		t.Fatalf("got %d spans at y=9, want 2", len(at9))
	}
	for _, sp := range at9 {
		mid := sp.a.Add(sp.b).DivScalar(2)
		if geom.ContainsPoint(reg.Holes[0].Points, mid) {
			t.Errorf("span midpoint %v lies inside the hole", mid)
		}
	}
}

func TestLinearSpansVertical(t *testing.T) {
	reg := testRegion(t, ccwSquare(0, 0, 10))
	spans := linearSpans(reg, 2, true)
	if len(spans) != 5 {
		t.Fatalf("got %d vertical spans, want 5", len(spans))
	}
	for _, sp := range spans {
		if sp.a.X != sp.b.X {
			t.Errorf("vertical span not vertical: %v -> %v", sp.a, sp.b)
		}
	}
}

func TestInfillLinearCommands(t *testing.T) {
	seq := testSequencer(func(p *config.Profile) {
		p.InfillPattern = config.PatternLinear
		p.BaseSpacing = 2
		p.InfillDensity = 0
		p.EnableRetraction = false
	})
	reg := testRegion(t, ccwSquare(0, 0, 10))
	layer := &Layer{}

	seq.InfillRegion(layer, reg, v2.Vec{})
	if got := countOps(layer.Commands, LinearMove); got != 5 {
		t.Errorf("fill moves = %d, want 5", got)
	}
}

func TestInfillGridDoublesPasses(t *testing.T) {
	seq := testSequencer(func(p *config.Profile) {
		p.InfillPattern = config.PatternGrid
		p.BaseSpacing = 2
		p.InfillDensity = 0
		p.EnableRetraction = false
	})
	reg := testRegion(t, ccwSquare(0, 0, 10))
	layer := &Layer{}

	seq.InfillRegion(layer, reg, v2.Vec{})
	if got := countOps(layer.Commands, LinearMove); got != 10 {
		t.Errorf("fill moves = %d, want 10 (5 horizontal + 5 vertical)", got)
	}
}

func TestInfillConcentricRings(t *testing.T) {
	seq := testSequencer(func(p *config.Profile) {
		p.InfillPattern = config.PatternConcentric
		p.BaseSpacing = 2
		p.InfillDensity = 0
		p.EnableRetraction = false
	})
	outer := ccwSquare(0, 0, 10)
	reg := testRegion(t, outer)
	layer := &Layer{}

	seq.InfillRegion(layer, reg, v2.Vec{})

	// Two rings survive before the offset degenerates: 2..8 and 4..6.
	if got := countOps(layer.Commands, RapidTravel); got != 2 {
		t.Errorf("ring travels = %d, want 2", got)
	}
	if got := countOps(layer.Commands, LinearMove); got != 8 {
		t.Errorf("ring moves = %d, want 8", got)
	}
	for _, c := range layer.Commands {
		if c.Op == LinearMove && !geom.ContainsPoint(outer, c.Target) {
			t.Errorf("ring point %v outside the outer contour", c.Target)
		}
	}
}

func TestInsetPolygonDegenerates(t *testing.T) {
	// Offsetting a 4-wide square by 3 flips the winding.
	if got := insetPolygon(ccwSquare(0, 0, 4), 3); got != nil {
		t.Errorf("inset past collapse = %v, want nil", got)
	}
	if got := insetPolygon(ccwSquare(0, 0, 4)[:2], 1); got != nil {
		t.Errorf("inset of 2 points = %v, want nil", got)
	}
}

func TestInsetPolygonSquare(t *testing.T) {
	got := insetPolygon(ccwSquare(0, 0, 10), 2)
	if got == nil {
		t.Fatal("inset of 10-square by 2 should survive")
	}
	min, max := geom.Bounds(got)
	if math.Abs(min.X-2) > 1e-9 || math.Abs(min.Y-2) > 1e-9 || math.Abs(max.X-8) > 1e-9 || math.Abs(max.Y-8) > 1e-9 {
		t.Errorf("inset bounds = (%v, %v), want ((2,2), (8,8))", min, max)
	}
	if geom.SignedArea(got) <= 0 {
		t.Error("inset flipped winding")
	}
}
