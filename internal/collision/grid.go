package collision

import (
	"math"
	"slices"

	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/parallel"
	"github.com/san-kum/granular/internal/world"
)

const (
	maxCells      = 1 << 22
	minSegCell    = 32.0
	gridMinChunk  = 1024
	chunkCapacity = 4096
)

// cells is a uniform grid over a fixed window. Points outside the window are
// clamped into the border cells, which keeps lookups correct for grains that
// have left the window but not yet been culled.
type cells struct {
	min        geom.Vec2
	inv        float64
	cols, rows int
}

func newCells(bounds geom.AABB, size float64) cells {
	w := bounds.Max.X - bounds.Min.X
	h := bounds.Max.Y - bounds.Min.Y
	if !(size > 0) {
		size = 1
	}
	for (w/size+1)*(h/size+1) > maxCells {
		size *= 2
	}
	return cells{
		min:  bounds.Min,
		inv:  1 / size,
		cols: int(w/size) + 1,
		rows: int(h/size) + 1,
	}
}

func (c cells) coord(p geom.Vec2) (int, int) {
	return clampInt(int(math.Floor((p.X-c.min.X)*c.inv)), c.cols), clampInt(int(math.Floor((p.Y-c.min.Y)*c.inv)), c.rows)
}

func (c cells) count() int { return c.cols * c.rows }

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Grid is a uniform-grid broad phase. Grain cells are twice the grain radius
// so overlapping grains always share a cell or sit in neighbouring cells.
// Segments live in a coarser grid that is rebuilt only when the segment set
// changes.
type Grid struct {
	radius  float64
	workers int

	gc     cells
	grains []world.Grain
	cellOf []int32
	start  []int32
	fill   []int32
	items  []int32
	pool   *pairPool

	sc       cells
	segBuilt bool
	segVer   uint64
	boxes    []geom.AABB
	segStart []int32
	segItems []int32
}

// NewGrid covers bounds with cells sized for grains of the given radius.
// workers <= 0 uses GOMAXPROCS for candidate gathering.
func NewGrid(bounds geom.AABB, radius float64, workers int) *Grid {
	g := &Grid{
		radius:  radius,
		workers: workers,
		gc:      newCells(bounds, 2*radius),
		sc:      newCells(bounds, math.Max(minSegCell, 2*radius)),
		pool:    newPairPool(chunkCapacity),
	}
	g.start = make([]int32, g.gc.count()+1)
	g.fill = make([]int32, g.gc.count())
	g.segStart = make([]int32, g.sc.count()+1)
	return g
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) Build(grains []world.Grain, segments []world.Segment, segVersion uint64) {
	g.grains = grains
	g.buildGrains()
	if !g.segBuilt || segVersion != g.segVer {
		g.buildSegments(segments)
		g.segVer = segVersion
		g.segBuilt = true
	}
}

// buildGrains buckets grains with a counting sort. Within a cell, grain
// indices stay ascending.
func (g *Grid) buildGrains() {
	n := len(g.grains)
	clear(g.start)
	g.cellOf = slices.Grow(g.cellOf[:0], n)[:n]
	g.items = slices.Grow(g.items[:0], n)[:n]

	for i := range g.grains {
		cx, cy := g.gc.coord(g.grains[i].Pos)
		c := int32(cy*g.gc.cols + cx)
		g.cellOf[i] = c
		g.start[c+1]++
	}
	for c := 1; c < len(g.start); c++ {
		g.start[c] += g.start[c-1]
	}
	copy(g.fill, g.start[:len(g.fill)])
	for i, c := range g.cellOf {
		g.items[g.fill[c]] = int32(i)
		g.fill[c]++
	}
}

func (g *Grid) buildSegments(segments []world.Segment) {
	g.boxes = g.boxes[:0]
	for i := range segments {
		g.boxes = append(g.boxes, segmentBox(&segments[i], g.radius))
	}

	clear(g.segStart)
	g.eachSegmentCell(func(c, _ int) { g.segStart[c+1]++ })
	for c := 1; c < len(g.segStart); c++ {
		g.segStart[c] += g.segStart[c-1]
	}
	total := int(g.segStart[len(g.segStart)-1])
	g.segItems = slices.Grow(g.segItems[:0], total)[:total]
	fill := make([]int32, g.sc.count())
	copy(fill, g.segStart)
	g.eachSegmentCell(func(c, seg int) {
		g.segItems[fill[c]] = int32(seg)
		fill[c]++
	})
}

func (g *Grid) eachSegmentCell(fn func(cell, seg int)) {
	for j, box := range g.boxes {
		x0, y0 := g.sc.coord(box.Min)
		x1, y1 := g.sc.coord(box.Max)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				fn(y*g.sc.cols+x, j)
			}
		}
	}
}

// GrainPairs gathers candidates in parallel chunks of grain indices. Each
// chunk sorts its pairs per grain and the chunks are joined in index order.
func (g *Grid) GrainPairs(dst []Pair) []Pair {
	n := len(g.grains)
	ranges := parallel.Split(n, gridMinChunk, g.workers)
	bufs := make([]*[]Pair, len(ranges))
	for i := range bufs {
		bufs[i] = g.pool.Get()
	}

	parallel.For(n, gridMinChunk, g.workers, func(chunk, start, end int) {
		buf := *bufs[chunk]
		for i := start; i < end; i++ {
			buf = g.neighbours(i, buf)
		}
		*bufs[chunk] = buf
	})

	for _, b := range bufs {
		dst = append(dst, *b...)
		g.pool.Put(b)
	}
	return dst
}

func (g *Grid) neighbours(i int, buf []Pair) []Pair {
	mark := len(buf)
	c := int(g.cellOf[i])
	cx, cy := c%g.gc.cols, c/g.gc.cols
	gi := &g.grains[i]

	for y := max(cy-1, 0); y <= min(cy+1, g.gc.rows-1); y++ {
		for x := max(cx-1, 0); x <= min(cx+1, g.gc.cols-1); x++ {
			cell := y*g.gc.cols + x
			for _, j := range g.items[g.start[cell]:g.start[cell+1]] {
				if int(j) <= i || !near(gi, &g.grains[j]) {
					continue
				}
				buf = append(buf, Pair{int32(i), j})
			}
		}
	}

	slices.SortFunc(buf[mark:], func(a, b Pair) int { return int(a.J - b.J) })
	return buf
}

// SegmentPairs pairs each grain with the segments whose boxes overlap the
// grain's path over the last step.
func (g *Grid) SegmentPairs(dst []Pair) []Pair {
	for i := range g.grains {
		gr := &g.grains[i]
		sweep := geom.SweptAABB(gr.Prev, gr.Pos)
		x0, y0 := g.sc.coord(sweep.Min)
		x1, y1 := g.sc.coord(sweep.Max)

		mark := len(dst)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				cell := y*g.sc.cols + x
				for _, j := range g.segItems[g.segStart[cell]:g.segStart[cell+1]] {
					if g.boxes[j].Overlaps(sweep) {
						dst = append(dst, Pair{int32(i), j})
					}
				}
			}
		}
		if x0 != x1 || y0 != y1 {
			// A segment spanning several visited cells was added once per cell.
			slices.SortFunc(dst[mark:], func(a, b Pair) int { return int(a.J - b.J) })
			dst = append(dst[:mark], slices.Compact(dst[mark:])...)
		}
	}
	return dst
}
