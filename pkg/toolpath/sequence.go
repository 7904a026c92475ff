package toolpath

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/config"
	"lamina/pkg/geom"
)

// Sequencer turns one layer's regions into an ordered command stream.
// The current tool position is explicit: it goes in as a parameter and
// comes back as the return value, and is the only state carried across
// contours and layers.
type Sequencer struct {
	Profile   config.Profile
	Tolerance float64
}

// SequenceLayer traces every contour of the layer and returns the new
// tool position. Regions are visited nearest-centroid-first (a greedy
// heuristic, not globally optimal); within a region the outer is
// traced before its holes. Orphan holes are traced last. When path
// optimization is off, regions are visited in input order and travel
// is a straight line.
func (s *Sequencer) SequenceLayer(layer *Layer, pos v2.Vec) v2.Vec {
	visited := make([]bool, len(layer.Regions))
	for range layer.Regions {
		ri := s.nextRegion(layer.Regions, visited, pos)
		visited[ri] = true
		reg := layer.Regions[ri]
		obstacles := s.outersExcept(layer, reg.ID)

		pos = s.traceContour(layer, reg.Outer.Points, pos, obstacles)
		for _, hole := range reg.Holes {
			pos = s.traceContour(layer, hole.Points, pos, obstacles)
		}
	}

	// Orphan holes belong to no region, so every outer is an obstacle.
	allOuters := s.outersExcept(layer, -1)
	for _, hole := range layer.Orphans {
		pos = s.traceContour(layer, hole.Points, pos, allOuters)
	}
	return pos
}

// nextRegion picks the unvisited region whose outer centroid is
// nearest the current position, or the lowest unvisited index when
// optimization is off.
func (s *Sequencer) nextRegion(regions []Region, visited []bool, pos v2.Vec) int {
	best := -1
	bestDist := math.Inf(1)
	for i := range regions {
		if visited[i] {
			continue
		}
		if !s.Profile.OptimizePaths {
			return i
		}
		d := regions[i].Outer.Centroid.Sub(pos).Length2()
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// outersExcept collects every region outer except the one with the
// given id, for use as router obstacles. Pass -1 to include them all.
func (s *Sequencer) outersExcept(layer *Layer, id int) [][]v2.Vec {
	var outers [][]v2.Vec
	for i := range layer.Regions {
		if layer.Regions[i].ID == id {
			continue
		}
		outers = append(outers, layer.Regions[i].Outer.Points)
	}
	return outers
}

// traceContour routes travel to the contour, then traces it as a
// closed loop. The seam is the vertex nearest the current position,
// so it intentionally varies from layer to layer.
func (s *Sequencer) traceContour(layer *Layer, pts []v2.Vec, pos v2.Vec, obstacles [][]v2.Vec) v2.Vec {
	loop := geom.RotateStart(pts, geom.NearestVertex(pts, pos))

	pos = s.travel(layer, pos, loop[0], obstacles)

	for _, p := range loop[1:] {
		layer.command(MotionCommand{Op: LinearMove, Target: p, Feed: s.Profile.FeedRate})
		layer.segment(pos, p, false)
		pos = p
	}
	// Closing move back to the seam vertex.
	layer.command(MotionCommand{Op: LinearMove, Target: loop[0], Feed: s.Profile.FeedRate})
	layer.segment(pos, loop[0], false)
	return loop[0]
}

// travel emits the rapid moves from one point to another, routed
// around obstacles when optimization is on, with a Retract/Recover
// pair wrapped around travels longer than the configured threshold.
func (s *Sequencer) travel(layer *Layer, from, to v2.Vec, obstacles [][]v2.Vec) v2.Vec {
	if to.Sub(from).Length() < s.Tolerance {
		return from
	}

	var path []v2.Vec
	direct := false
	if s.Profile.OptimizePaths {
		r := &Router{Cell: s.Tolerance * s.Profile.GridCellFactor, Obstacles: obstacles}
		path, direct = r.Route(from, to)
	} else {
		path = []v2.Vec{from, to}
	}
	if direct {
		layer.warn(Warning{
			Kind:    UnroutedDirect,
			Message: "travel could not be routed around obstacles; using straight line",
		})
	}

	retract := s.Profile.EnableRetraction && pathLength(path) > s.Profile.RetractThreshold
	if retract {
		layer.command(MotionCommand{Op: Retract, E: s.Profile.RetractionDistance, Feed: s.Profile.RetractionFeedRate})
	}

	pos := from
	for _, wp := range path[1:] {
		layer.command(MotionCommand{Op: RapidTravel, Target: wp, Feed: s.Profile.TravelRate})
		layer.segment(pos, wp, true)
		pos = wp
	}

	if retract {
		layer.command(MotionCommand{Op: Recover, E: s.Profile.RetractionDistance, Feed: s.Profile.RetractionFeedRate})
	}
	return pos
}
