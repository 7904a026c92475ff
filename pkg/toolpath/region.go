package toolpath

import (
	"fmt"
	"math"

	"lamina/pkg/geom"
)

// SegmentRegions groups classified contours into regions. Every outer
// contour becomes a region; each hole is assigned to the smallest-area
// outer whose interior contains the hole's centroid (the most specific
// one under nesting), with exactly equal areas broken by lowest region
// id. Holes contained by no outer are returned separately with an
// OrphanHole warning rather than discarded.
//
// Region ids partition the contours of the layer: outers are numbered
// in input order and holes take the id of their assigned outer.
func SegmentRegions(contours []geom.Contour) ([]Region, []geom.Contour, []Warning) {
	var regions []Region
	for _, c := range contours {
		if c.Hole {
			continue
		}
		c.Region = len(regions)
		regions = append(regions, Region{ID: c.Region, Outer: c})
	}

	var orphans []geom.Contour
	var warnings []Warning

	for _, c := range contours {
		if !c.Hole {
			continue
		}
		best := -1
		bestArea := math.Inf(1)
		for i := range regions {
			outer := &regions[i].Outer
			if !geom.ContainsPoint(outer.Points, c.Centroid) {
				continue
			}
			if a := math.Abs(outer.Area); a < bestArea {
				bestArea = a
				best = i
			}
		}
		if best < 0 {
			c.Region = -1
			orphans = append(orphans, c)
			warnings = append(warnings, Warning{
				Kind:    OrphanHole,
				Message: fmt.Sprintf("hole centroid (%.3f, %.3f) inside no outer contour; kept ungrouped", c.Centroid.X, c.Centroid.Y),
			})
			continue
		}
		c.Region = regions[best].ID
		regions[best].Holes = append(regions[best].Holes, c)
	}

	return regions, orphans, warnings
}
