// Package preview dumps traced layer segments to SVG so a planned
// toolpath can be inspected without a motion controller. Trace moves
// are drawn solid, travel moves dashed.
package preview

import (
	"io"

	svg "github.com/ajstarks/svgo/float"

	"lamina/pkg/toolpath"
)

const (
	margin      = 2.0
	traceStyle  = "stroke:#1a1a1a;stroke-width:0.2;fill:none"
	travelStyle = "stroke:#c900ce;stroke-width:0.2;fill:none;stroke-dasharray:0.5,0.5"
)

// errWriter keeps the first write error; svgo itself discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// WriteSVG renders every layer's segments into one SVG document.
// Layers overlay each other; the Y axis is flipped so the output
// matches the machine's y-up convention.
func WriteSVG(w io.Writer, res *toolpath.Result) error {
	var segs []toolpath.Segment
	for _, l := range res.Layers {
		segs = append(segs, l.Segments...)
	}
	if len(segs) == 0 {
		return nil
	}

	minX, minY := segs[0].From.X, segs[0].From.Y
	maxX, maxY := minX, minY
	for _, s := range segs {
		for _, p := range [2]struct{ X, Y float64 }{{s.From.X, s.From.Y}, {s.To.X, s.To.Y}} {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(maxX-minX+2*margin, maxY-minY+2*margin)

	tx := func(x float64) float64 { return x - minX + margin }
	ty := func(y float64) float64 { return maxY - y + margin }

	for _, s := range segs {
		style := traceStyle
		if s.Travel {
			style = travelStyle
		}
		canvas.Line(tx(s.From.X), ty(s.From.Y), tx(s.To.X), ty(s.To.Y), style)
	}

	canvas.End()
	return ew.err
}
