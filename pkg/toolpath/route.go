package toolpath

import (
	"container/heap"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"lamina/pkg/geom"
)

// maxGridCells caps the size of a single routing query. Queries that
// would need a larger grid skip the search and fall back to a direct
// line, bounding worst-case routing cost.
const maxGridCells = 10000

// Router finds collision-avoiding travel paths between two points on
// a layer. Obstacles are the outer (solid) contours whose interiors
// must not be crossed; hole interiors are free space. The contour
// being approached is exempted by simply not registering it.
type Router struct {
	Cell      float64    // grid cell size, tolerance * configured factor
	Obstacles [][]v2.Vec // solid boundary polygons
}

// grid is the obstacle index for one routing query: a uniform cell
// grid over the bounding box spanning start and goal, padded by one
// cell on every side.
type grid struct {
	min    v2.Vec
	cell   float64
	nx, ny int
}

func (g *grid) center(ix, iy int) v2.Vec {
	return v2.Vec{
		X: g.min.X + (float64(ix)+0.5)*g.cell,
		Y: g.min.Y + (float64(iy)+0.5)*g.cell,
	}
}

func (g *grid) cellOf(p v2.Vec) (int, int) {
	ix := int((p.X - g.min.X) / g.cell)
	iy := int((p.Y - g.min.Y) / g.cell)
	if ix < 0 {
		ix = 0
	}
	if ix >= g.nx {
		ix = g.nx - 1
	}
	if iy < 0 {
		iy = 0
	}
	if iy >= g.ny {
		iy = g.ny - 1
	}
	return ix, iy
}

// blocked reports whether p lies in solid material, resolved by an
// even-odd containment depth count across all registered outers: an
// odd depth is solid. This makes nested outers (material, cavity,
// material again) behave consistently.
func (r *Router) blocked(p v2.Vec) bool {
	depth := 0
	for _, poly := range r.Obstacles {
		if geom.ContainsPoint(poly, p) {
			depth++
		}
	}
	return depth%2 == 1
}

// A* node states.
const (
	stateUnvisited uint8 = iota
	stateOpen
	stateClosed
)

// pathNode lives in a per-query arena addressed by cell index, with
// integer parent links. The arena is freed as a unit when the query
// returns; nothing escapes it.
type pathNode struct {
	gScore float64
	fScore float64
	parent int32
	state  uint8
}

// openHeap is the A* open set: a binary heap of cell indices ordered
// by fScore.
type openHeap struct {
	arena []pathNode
	items []int32
}

func (h *openHeap) Len() int            { return len(h.items) }
func (h *openHeap) Less(i, j int) bool  { return h.arena[h.items[i]].fScore < h.arena[h.items[j]].fScore }
func (h *openHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *openHeap) Push(x interface{})  { h.items = append(h.items, x.(int32)) }
func (h *openHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}

// neighbor offsets for 8-connected expansion.
var neighborSteps = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Route returns an ordered waypoint list from start to goal, always
// including both endpoints exactly. The second result reports whether
// the path is an unrouted direct fallback (open set exhausted or grid
// too large); callers surface that as a warning, not an error.
func (r *Router) Route(start, goal v2.Vec) ([]v2.Vec, bool) {
	delta := goal.Sub(start)
	if delta.Length() <= r.Cell {
		return []v2.Vec{start, goal}, false
	}

	min := start.Min(goal)
	max := start.Max(goal)
	// Grow the box over any obstacle straddling the corridor so the
	// search has room to go around it; the cell cap below still
	// bounds the worst case.
	for _, poly := range r.Obstacles {
		omin, omax := geom.Bounds(poly)
		if omin.X > max.X || omax.X < min.X || omin.Y > max.Y || omax.Y < min.Y {
			continue
		}
		min = min.Min(omin)
		max = max.Max(omax)
	}
	g := &grid{
		min:  v2.Vec{X: min.X - r.Cell, Y: min.Y - r.Cell},
		cell: r.Cell,
		nx:   int(math.Ceil((max.X-min.X)/r.Cell)) + 3,
		ny:   int(math.Ceil((max.Y-min.Y)/r.Cell)) + 3,
	}
	if g.nx*g.ny > maxGridCells {
		return []v2.Vec{start, goal}, true
	}

	arena := make([]pathNode, g.nx*g.ny)
	for i := range arena {
		arena[i].parent = -1
	}

	sx, sy := g.cellOf(start)
	gx, gy := g.cellOf(goal)
	diag := r.Cell * math.Sqrt2

	h := func(ix, iy int) float64 {
		return g.center(ix, iy).Sub(goal).Length()
	}

	startIdx := int32(sy*g.nx + sx)
	arena[startIdx].gScore = 0
	arena[startIdx].fScore = h(sx, sy)
	arena[startIdx].state = stateOpen

	open := &openHeap{arena: arena, items: []int32{startIdx}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(int32)
		if arena[cur].state == stateClosed {
			continue // stale heap entry superseded by a better push
		}
		arena[cur].state = stateClosed

		cx := int(cur) % g.nx
		cy := int(cur) / g.nx
		if abs(cx-gx) <= 1 && abs(cy-gy) <= 1 {
			return r.reconstruct(g, arena, cur, start, goal), false
		}

		for _, step := range neighborSteps {
			nx := cx + step[0]
			ny := cy + step[1]
			if nx < 0 || nx >= g.nx || ny < 0 || ny >= g.ny {
				continue
			}
			idx := int32(ny*g.nx + nx)
			if arena[idx].state == stateClosed {
				continue
			}
			if r.blocked(g.center(nx, ny)) {
				continue
			}
			cost := r.Cell
			if step[0] != 0 && step[1] != 0 {
				cost = diag
			}
			tentative := arena[cur].gScore + cost
			if arena[idx].state == stateOpen && tentative >= arena[idx].gScore {
				continue
			}
			arena[idx].gScore = tentative
			arena[idx].fScore = tentative + h(nx, ny)
			arena[idx].parent = cur
			arena[idx].state = stateOpen
			heap.Push(open, idx)
		}
	}

	// Open set exhausted without reaching the goal.
	return []v2.Vec{start, goal}, true
}

// reconstruct walks parent links backward from the final node and
// assembles the waypoint list: the exact start, collinear-collapsed
// cell centers, and the exact goal.
func (r *Router) reconstruct(g *grid, arena []pathNode, last int32, start, goal v2.Vec) []v2.Vec {
	var rev []v2.Vec
	for idx := last; idx >= 0; idx = arena[idx].parent {
		rev = append(rev, g.center(int(idx)%g.nx, int(idx)/g.nx))
	}

	path := make([]v2.Vec, 0, len(rev)+2)
	path = append(path, start)
	for i := len(rev) - 2; i >= 1; i-- { // skip the start and goal cells
		path = append(path, rev[i])
	}
	path = append(path, goal)
	return collapseCollinear(path)
}

// collapseCollinear removes interior waypoints that lie on the line
// between their neighbors, so grid-aligned runs become single moves.
func collapseCollinear(path []v2.Vec) []v2.Vec {
	if len(path) <= 2 {
		return path
	}
	out := []v2.Vec{path[0]}
	for i := 1; i < len(path)-1; i++ {
		a := path[i].Sub(out[len(out)-1])
		b := path[i+1].Sub(path[i])
		if math.Abs(a.X*b.Y-a.Y*b.X) > 1e-9 {
			out = append(out, path[i])
		}
	}
	return append(out, path[len(path)-1])
}

// pathLength sums the segment lengths of an ordered waypoint list.
func pathLength(path []v2.Vec) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Sub(path[i-1]).Length()
	}
	return total
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
