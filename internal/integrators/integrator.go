// Package integrators advances grain state by one substep.
//
// Integrators touch each grain independently, so large worlds are split into
// contiguous chunks and integrated concurrently. The result does not depend
// on the chunking.
package integrators

import (
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/parallel"
	"github.com/san-kum/granular/internal/world"
)

// minChunk is the smallest slice worth handing to another goroutine.
const minChunk = 2048

// Integrator advances every grain in place by a substep of length h.
type Integrator interface {
	Name() string
	Integrate(grains []world.Grain, h float64)
}

// Params are shared by every integrator. Damping multiplies the velocity once
// per call, so a frame of n substeps damps by Damping^n.
type Params struct {
	Gravity geom.Vec2
	Damping float64
	Workers int
}

func run(grains []world.Grain, workers int, fn func(g *world.Grain)) {
	parallel.For(len(grains), minChunk, workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(&grains[i])
		}
	})
}
