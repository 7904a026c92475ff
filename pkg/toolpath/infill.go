package toolpath

import (
	"math"
	"sort"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/config"
	"lamina/pkg/geom"
)

// minSpacing floors the density-derived line spacing so a density of
// 100% cannot collapse the scan-line step to zero.
const minSpacing = 0.2

// maxRings bounds concentric offsetting against pathological shapes
// that never quite degenerate.
const maxRings = 1000

// Spacing derives infill line spacing from the profile density:
// base spacing at 0%, shrinking linearly toward the floor at 100%.
func Spacing(p config.Profile) float64 {
	s := p.BaseSpacing * (100 - p.InfillDensity) / 100
	if s < minSpacing {
		s = minSpacing
	}
	return s
}

// span is one uninterrupted fill stroke.
type span struct {
	a, b v2.Vec
}

// InfillRegion fills one region with the configured pattern and
// returns the new tool position. Fill moves pass through the same
// retraction rules as contour travel.
func (s *Sequencer) InfillRegion(layer *Layer, reg Region, pos v2.Vec) v2.Vec {
	spacing := Spacing(s.Profile)
	switch s.Profile.InfillPattern {
	case config.PatternGrid:
		// Linear pattern run twice, second pass rotated 90 degrees.
		pos = s.fillSpans(layer, linearSpans(reg, spacing, false), pos)
		return s.fillSpans(layer, linearSpans(reg, spacing, true), pos)
	case config.PatternConcentric:
		return s.fillConcentric(layer, reg, spacing, pos)
	default:
		return s.fillSpans(layer, linearSpans(reg, spacing, false), pos)
	}
}

// linearSpans intersects evenly spaced scan lines with the region
// polygon (outer and holes together) and pairs consecutive sorted
// crossings into inside spans. Vertical scan lines are used for the
// rotated pass of the grid pattern.
func linearSpans(reg Region, spacing float64, vertical bool) []span {
	polys := [][]v2.Vec{reg.Outer.Points}
	for _, h := range reg.Holes {
		polys = append(polys, h.Points)
	}
	min, max := geom.Bounds(reg.Outer.Points)

	var spans []span
	if vertical {
		for x := min.X + spacing/2; x < max.X; x += spacing {
			ys := crossings(polys, x, true)
			for i := 0; i+1 < len(ys); i += 2 {
				spans = append(spans, span{
					a: v2.Vec{X: x, Y: ys[i]},
					b: v2.Vec{X: x, Y: ys[i+1]},
				})
			}
		}
		return spans
	}
	for y := min.Y + spacing/2; y < max.Y; y += spacing {
		xs := crossings(polys, y, false)
		for i := 0; i+1 < len(xs); i += 2 {
			spans = append(spans, span{
				a: v2.Vec{X: xs[i], Y: y},
				b: v2.Vec{X: xs[i+1], Y: y},
			})
		}
	}
	return spans
}

// crossings collects the sorted intersection parameters of one scan
// line with every polygon edge, using the same half-open crossing rule
// as the containment test so counts stay even.
func crossings(polys [][]v2.Vec, at float64, vertical bool) []float64 {
	var out []float64
	for _, pts := range polys {
		n := len(pts)
		j := n - 1
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[j]
			if vertical {
				if (a.X > at) != (b.X > at) {
					out = append(out, a.Y+(at-a.X)/(b.X-a.X)*(b.Y-a.Y))
				}
			} else {
				if (a.Y > at) != (b.Y > at) {
					out = append(out, a.X+(at-a.Y)/(b.Y-a.Y)*(b.X-a.X))
				}
			}
			j = i
		}
	}
	sort.Float64s(out)
	return out
}

// fillSpans emits travel+fill for each span, entering every span at
// the endpoint nearest the current position.
func (s *Sequencer) fillSpans(layer *Layer, spans []span, pos v2.Vec) v2.Vec {
	for _, sp := range spans {
		entry, exit := sp.a, sp.b
		if exit.Sub(pos).Length2() < entry.Sub(pos).Length2() {
			entry, exit = exit, entry
		}
		pos = s.travelDirect(layer, pos, entry)
		layer.command(MotionCommand{Op: LinearMove, Target: exit, Feed: s.Profile.FeedRate})
		layer.segment(pos, exit, false)
		pos = exit
	}
	return pos
}

// fillConcentric traces inward offset rings of the outer contour until
// the offset degenerates or empties.
func (s *Sequencer) fillConcentric(layer *Layer, reg Region, spacing float64, pos v2.Vec) v2.Vec {
	ring := reg.Outer.Points
	for i := 0; i < maxRings; i++ {
		ring = insetPolygon(ring, spacing)
		if ring == nil {
			break
		}
		loop := geom.RotateStart(ring, geom.NearestVertex(ring, pos))
		pos = s.travelDirect(layer, pos, loop[0])
		for _, p := range loop[1:] {
			layer.command(MotionCommand{Op: LinearMove, Target: p, Feed: s.Profile.FeedRate})
			layer.segment(pos, p, false)
			pos = p
		}
		layer.command(MotionCommand{Op: LinearMove, Target: loop[0], Feed: s.Profile.FeedRate})
		layer.segment(pos, loop[0], false)
		pos = loop[0]
	}
	return pos
}

// travelDirect emits a straight rapid between fill strokes. Fill
// travel stays inside the region being filled, so no routing is
// needed, but the retraction threshold still applies.
func (s *Sequencer) travelDirect(layer *Layer, from, to v2.Vec) v2.Vec {
	dist := to.Sub(from).Length()
	if dist < s.Tolerance {
		return from
	}
	retract := s.Profile.EnableRetraction && dist > s.Profile.RetractThreshold
	if retract {
		layer.command(MotionCommand{Op: Retract, E: s.Profile.RetractionDistance, Feed: s.Profile.RetractionFeedRate})
	}
	layer.command(MotionCommand{Op: RapidTravel, Target: to, Feed: s.Profile.TravelRate})
	layer.segment(from, to, true)
	if retract {
		layer.command(MotionCommand{Op: Recover, E: s.Profile.RetractionDistance, Feed: s.Profile.RetractionFeedRate})
	}
	return to
}

// insetPolygon offsets a closed polygon inward by d using mitered
// vertex normals. Returns nil when the offset degenerates: winding
// flips, the area stops shrinking, or too few vertices remain.
func insetPolygon(pts []v2.Vec, d float64) []v2.Vec {
	n := len(pts)
	if n < 3 {
		return nil
	}
	area := geom.SignedArea(pts)
	if area == 0 {
		return nil
	}

	out := make([]v2.Vec, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]

		n0 := inwardNormal(prev, cur, area)
		n1 := inwardNormal(cur, next, area)
		denom := 1 + n0.Dot(n1)
		if denom < 1e-3 {
			// Near-reversal spike; fall back to a single normal.
			out = append(out, cur.Add(n0.MulScalar(d)))
			continue
		}
		out = append(out, cur.Add(n0.Add(n1).MulScalar(d/denom)))
	}

	newArea := geom.SignedArea(out)
	if math.Signbit(newArea) != math.Signbit(area) || math.Abs(newArea) >= math.Abs(area) || math.Abs(newArea) < d*d {
		return nil
	}
	return out
}

// inwardNormal returns the unit normal of edge a->b pointing into the
// polygon interior, which depends on the winding sign.
func inwardNormal(a, b v2.Vec, area float64) v2.Vec {
	e := b.Sub(a)
	l := e.Length()
	if l == 0 {
		return v2.Vec{}
	}
	// Counter-clockwise interiors lie to the left of each edge.
	if area > 0 {
		return v2.Vec{X: -e.Y / l, Y: e.X / l}
	}
	return v2.Vec{X: e.Y / l, Y: -e.X / l}
}
