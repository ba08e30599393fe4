package sim

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/world"
)

// penetration is how far g reaches into s, or 0.
func penetration(g world.Grain, s world.Segment) float64 {
	d := geom.DistToSegment(g.Pos, s.A, s.B)
	return math.Max(0, g.Radius+s.Thickness/2-d)
}

func meanSpeed(grains []world.Grain) float64 {
	if len(grains) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range grains {
		sum += g.Vel.Len()
	}
	return sum / float64(len(grains))
}

var _ = Describe("Controller", func() {
	var (
		cfg *config.Config
		c   *Controller
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Seed = 11
		var err error
		c, err = New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	frames := func(n int, emitPerFrame int) {
		for i := 0; i < n; i++ {
			if emitPerFrame > 0 {
				c.Emit(geom.V(450, 5), emitPerFrame)
			}
			c.Frame(cfg.Dt())
		}
	}

	Context("when grains are poured from a single point", func() {
		BeforeEach(func() {
			frames(100, 1)
			frames(500, 0)
		})

		It("keeps every grain", func() {
			Expect(c.Len()).To(Equal(100))
		})

		It("builds a heap resting on the floor", func() {
			floor := cfg.Screen.Height - 1
			lowest := 0.0
			for _, g := range c.Grains() {
				lowest = math.Max(lowest, g.Pos.Y)
			}
			Expect(lowest).To(BeNumerically("~", floor-cfg.Segment.BoundaryThickness/2-cfg.Grain.Radius, 0.05))
		})

		It("does not push grains into the boundaries", func() {
			for _, g := range c.Grains() {
				for _, s := range c.Segments() {
					Expect(penetration(g, s)).To(BeNumerically("<", 0.01))
				}
			}
		})

		It("comes to rest", func() {
			Expect(meanSpeed(c.Grains())).To(BeNumerically("<", 20))
		})
	})

	Context("when a ramp is drawn under the emitter", func() {
		BeforeEach(func() {
			_, err := c.CreateSegment(geom.V(300, 300), geom.V(600, 380), cfg.Segment.Thickness)
			Expect(err).NotTo(HaveOccurred())
			frames(150, 1)
			frames(300, 0)
		})

		It("keeps grains out of the ramp and the boundaries", func() {
			Expect(c.Len()).To(Equal(150))
			for _, g := range c.Grains() {
				for _, s := range c.Segments() {
					Expect(penetration(g, s)).To(BeNumerically("<", 0.01))
				}
			}
		})

		It("catches grains on the ramp", func() {
			onRamp := 0
			for _, g := range c.Grains() {
				if g.Pos.Y < 400 {
					onRamp++
				}
			}
			Expect(onRamp).To(BeNumerically(">", 0))
		})
	})

	Context("when thousands of grains pile up", func() {
		var escaped, culled int

		BeforeEach(func() {
			if testing.Short() {
				Skip("long pour")
			}
			floor := cfg.Screen.Height - 1
			right := cfg.Screen.Width - 1
			escaped, culled = 0, 0
			c.AddObserver(ObserverFunc(func(f *Frame) {
				culled += f.Culled
				for _, g := range f.Grains {
					if g.Pos.Y >= floor || g.Pos.X <= 0 || g.Pos.X >= right {
						escaped++
					}
				}
			}))
			frames(1500, 3)
		})

		It("never lets a grain cross the boundaries", func() {
			Expect(escaped).To(BeZero())
			Expect(culled).To(BeZero())
			Expect(c.Len()).To(Equal(4500))
		})
	})

	Context("when the world is reset mid-run", func() {
		It("returns to three boundaries and keeps stepping", func() {
			frames(30, 2)
			c.Reset()
			Expect(c.Len()).To(BeZero())
			Expect(c.Segments()).To(HaveLen(3))

			frames(10, 1)
			Expect(c.Len()).To(Equal(10))
		})
	})

	Context("at the particle limit", func() {
		It("keeps emitting as a no-op", func() {
			cfg.Limits.MaxParticles = 20
			small, err := New(cfg)
			Expect(err).NotTo(HaveOccurred())

			created := 0
			for i := 0; i < 40; i++ {
				created += small.Emit(geom.V(450, 5), 1)
				small.Frame(cfg.Dt())
			}
			Expect(created).To(Equal(20))
			Expect(small.Len()).To(Equal(20))
		})
	})
})
