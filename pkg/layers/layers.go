// Package layers reads sliced-layer geometry from the JSON exchange
// format produced by the upstream slicer: a list of layers, each with
// a Z height and closed polylines as [x, y] pairs.
package layers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/toolpath"
)

type fileLayer struct {
	Z         float64        `json:"z"`
	Polylines [][][2]float64 `json:"polylines"`
}

type file struct {
	Layers []fileLayer `json:"layers"`
}

// Read decodes layer inputs from r.
func Read(r io.Reader) ([]toolpath.LayerInput, error) {
	var f file
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode layers: %w", err)
	}

	inputs := make([]toolpath.LayerInput, 0, len(f.Layers))
	for _, fl := range f.Layers {
		in := toolpath.LayerInput{Z: fl.Z}
		for _, pl := range fl.Polylines {
			pts := make([]v2.Vec, 0, len(pl))
			for _, p := range pl {
				pts = append(pts, v2.Vec{X: p[0], Y: p[1]})
			}
			in.Polylines = append(in.Polylines, pts)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Load reads layer inputs from a file on disk.
func Load(path string) ([]toolpath.LayerInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layers file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
