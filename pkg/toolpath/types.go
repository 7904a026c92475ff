// Package toolpath plans per-layer motion: it groups classified
// contours into regions, orders them to minimize travel, routes
// collision-free travel moves over an obstacle grid, generates
// interior infill, and emits a flat sequence of motion commands plus
// traced segments for preview.
package toolpath

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/geom"
)

// Op identifies the kind of a motion command.
type Op int

const (
	RapidTravel Op = iota // non-extruding travel move
	LinearMove            // tracing/extruding move
	Retract               // pull material back before long travel
	Recover               // undo a retract after travel
)

func (o Op) String() string {
	switch o {
	case RapidTravel:
		return "rapid"
	case LinearMove:
		return "move"
	case Retract:
		return "retract"
	case Recover:
		return "recover"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// MotionCommand is one abstract motion instruction. Target is
// meaningful for RapidTravel and LinearMove; E for Retract and
// Recover. Ownership transfers to the consumer once emitted.
type MotionCommand struct {
	Op     Op
	Target v2.Vec
	Feed   float64 // mm/min
	E      float64 // filament length for Retract/Recover, mm
}

// Segment is a traced line for preview rendering, parallel to the
// command stream. Travel marks non-extruding moves.
type Segment struct {
	From, To v2.Vec
	Travel   bool
}

// Region is an outer perimeter contour plus the holes whose centroids
// it contains.
type Region struct {
	ID    int
	Outer geom.Contour
	Holes []geom.Contour
}

// Layer is one slice of the model: its geometry after segmentation
// and the motion it accumulates. The only state that survives a layer
// boundary is the scalar tool position threaded through sequencing.
type Layer struct {
	Index    int
	Z        float64
	Regions  []Region
	Orphans  []geom.Contour // holes contained by no outer; traced last
	Commands []MotionCommand
	Segments []Segment
	Warnings []Warning
}

// command appends a motion command and returns nothing; helpers in
// sequencing and infill go through it so Commands and Segments stay
// in step.
func (l *Layer) command(c MotionCommand) {
	l.Commands = append(l.Commands, c)
}

func (l *Layer) segment(from, to v2.Vec, travel bool) {
	l.Segments = append(l.Segments, Segment{From: from, To: to, Travel: travel})
}

func (l *Layer) warn(w Warning) {
	w.Layer = l.Index
	l.Warnings = append(l.Warnings, w)
}
