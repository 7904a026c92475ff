package toolpath

import "fmt"

// WarningKind classifies an advisory diagnostic. Warnings never stop
// layer processing; the sole fatal error in the engine is an invalid
// profile, rejected before any layer runs.
type WarningKind int

const (
	// DegenerateContour: a raw polyline had fewer than 3 distinct
	// points after simplification and was dropped.
	DegenerateContour WarningKind = iota
	// OrphanHole: a hole's centroid lies inside no outer contour; the
	// hole is kept and traced ungrouped rather than discarded.
	OrphanHole
	// UnroutedDirect: the router exhausted its open set (or the grid
	// exceeded the cell cap) and fell back to a straight-line travel.
	UnroutedDirect
	// EmptyLayer: a layer had zero usable contours and was skipped.
	EmptyLayer
)

func (k WarningKind) String() string {
	switch k {
	case DegenerateContour:
		return "degenerate-contour"
	case OrphanHole:
		return "orphan-hole"
	case UnroutedDirect:
		return "unrouted-direct"
	case EmptyLayer:
		return "empty-layer"
	default:
		return fmt.Sprintf("warning(%d)", int(k))
	}
}

// Warning is an advisory finding surfaced alongside results, in the
// style of a validation warning: reported, logged, never fatal.
type Warning struct {
	Kind    WarningKind
	Layer   int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (layer %d)", w.Kind, w.Message, w.Layer)
}
