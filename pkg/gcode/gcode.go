// Package gcode renders abstract motion commands to G-code text.
// It is a thin downstream adapter: the toolpath core stays
// format-agnostic and this package alone owns the wire format, one
// command per line with fixed-precision numeric fields.
package gcode

import (
	"fmt"
	"io"

	"lamina/pkg/toolpath"
)

// Emitter renders a planned result to a target motion-command
// grammar. Implementations own their exact wire format.
type Emitter interface {
	Emit(w io.Writer, res *toolpath.Result) error
}

// Compile-time interface check.
var _ Emitter = (*Marlin)(nil)

// Marlin emits RepRap/Marlin-flavor G-code: G0 rapids, G1 tracing
// moves, E-axis retraction. Coordinates are millimeters with three
// decimals; feed rates are mm/min with none.
type Marlin struct {
	ZFeed float64 // feed rate for layer changes, mm/min
}

// New returns a Marlin emitter with a workable Z feed.
func New() *Marlin {
	return &Marlin{ZFeed: 600}
}

// lineWriter folds per-line write errors into one sticky error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) printf(format string, args ...interface{}) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}

// Emit writes the whole result: header, per-layer Z change and
// commands, footer.
func (m *Marlin) Emit(w io.Writer, res *toolpath.Result) error {
	lw := &lineWriter{w: w}

	lw.printf("G21 ; millimeter units\n")
	lw.printf("G90 ; absolute positioning\n")

	for _, layer := range res.Layers {
		lw.printf(";LAYER %d\n", layer.Index)
		lw.printf("G1 Z%.3f F%.0f\n", layer.Z, m.ZFeed)
		for _, c := range layer.Commands {
			switch c.Op {
			case toolpath.RapidTravel:
				lw.printf("G0 X%.3f Y%.3f F%.0f\n", c.Target.X, c.Target.Y, c.Feed)
			case toolpath.LinearMove:
				lw.printf("G1 X%.3f Y%.3f F%.0f\n", c.Target.X, c.Target.Y, c.Feed)
			case toolpath.Retract:
				lw.printf("G1 E-%.3f F%.0f\n", c.E, c.Feed)
			case toolpath.Recover:
				lw.printf("G1 E%.3f F%.0f\n", c.E, c.Feed)
			}
		}
	}

	lw.printf("M84 ; disable steppers\n")
	return lw.err
}
