package geom

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Contour is a closed 2D polyline boundary at a fixed layer height.
// The closing edge from the last point back to the first is implicit.
// A contour is immutable once classified; Region is assigned later by
// region segmentation (-1 until then).
type Contour struct {
	Points   []v2.Vec
	Hole     bool
	Region   int
	Centroid v2.Vec
	Area     float64 // signed shoelace area
}

// DegenerateError records a raw polyline dropped during classification
// because fewer than 3 distinct points remained after simplification.
// It is advisory: the caller drops the contour and continues.
type DegenerateError struct {
	Index    int // position in the input polyline list
	Distinct int // distinct points that survived simplification
}

func (e DegenerateError) Error() string {
	return fmt.Sprintf("degenerate contour %d: %d distinct points after simplification, need 3", e.Index, e.Distinct)
}

// Classify turns raw slice polylines into classified contours.
// Each polyline is simplified to distinct points within tol, then
// classified by winding sign: negative shoelace area means hole,
// non-negative means outer perimeter. Polylines that degenerate below
// 3 points are dropped and reported; classification of the remainder
// continues.
func Classify(polylines [][]v2.Vec, tol float64) ([]Contour, []DegenerateError) {
	var contours []Contour
	var dropped []DegenerateError

	for i, pl := range polylines {
		pts := Simplify(pl, tol)
		if len(pts) < 3 {
			dropped = append(dropped, DegenerateError{Index: i, Distinct: len(pts)})
			continue
		}
		area := SignedArea(pts)
		contours = append(contours, Contour{
			Points:   pts,
			Hole:     area < 0,
			Region:   -1,
			Centroid: VertexMean(pts),
			Area:     area,
		})
	}
	return contours, dropped
}
