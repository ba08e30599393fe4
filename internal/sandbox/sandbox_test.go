package sandbox

import (
	"errors"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/granular/internal/config"
	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
	"github.com/san-kum/granular/internal/world"
)

type failingMaker struct{}

func (failingMaker) CreateSegment(a, b geom.Vec2, t float64) (world.SegmentHandle, error) {
	return world.SegmentHandle{}, world.ErrInvalidGeometry
}

var _ = Describe("Emitter", func() {
	var e *Emitter

	BeforeEach(func() {
		e = NewEmitter(config.DefaultConfig())
	})

	It("starts at mid-screen just below the top", func() {
		Expect(e.Pos()).To(Equal(geom.V(450, 5)))
	})

	It("moves in steps of five", func() {
		e.MoveLeft()
		Expect(e.X()).To(Equal(445.0))
		e.MoveRight()
		e.MoveRight()
		Expect(e.X()).To(Equal(455.0))
	})

	It("stays ten units from either edge", func() {
		for i := 0; i < 200; i++ {
			e.MoveLeft()
		}
		Expect(e.X()).To(Equal(10.0))
		for i := 0; i < 400; i++ {
			e.MoveRight()
		}
		Expect(e.X()).To(Equal(890.0))

		e.SetX(-50)
		Expect(e.X()).To(Equal(10.0))
		e.Center()
		Expect(e.X()).To(Equal(450.0))
	})
})

var _ = Describe("DrawTool", func() {
	var (
		d *DrawTool
		c *sim.Controller
	)

	BeforeEach(func() {
		var err error
		c, err = sim.New(config.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		d = NewDrawTool(900, 2)
	})

	It("ignores presses while disabled", func() {
		Expect(d.Begin(geom.V(100, 100))).To(BeFalse())
		_, ok, err := d.End(geom.V(200, 200), c)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(c.Segments()).To(HaveLen(3))
	})

	Context("when enabled", func() {
		BeforeEach(func() { d.Toggle() })

		It("creates a segment of thickness 2 from press to release", func() {
			Expect(d.Begin(geom.V(100, 100))).To(BeTrue())
			start, pending := d.Pending()
			Expect(pending).To(BeTrue())
			Expect(start).To(Equal(geom.V(100, 100)))

			h, ok, err := d.End(geom.V(300, 150), c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			seg, found := c.Store().Segment(h)
			Expect(found).To(BeTrue())
			Expect(seg.A).To(Equal(geom.V(100, 100)))
			Expect(seg.B).To(Equal(geom.V(300, 150)))
			Expect(seg.Thickness).To(Equal(2.0))

			_, pending = d.Pending()
			Expect(pending).To(BeFalse())
			Expect(d.Enabled()).To(BeTrue())
		})

		It("does not start on the toolbar", func() {
			Expect(d.Begin(geom.V(100, 900))).To(BeFalse())
			Expect(d.Begin(geom.V(100, 920))).To(BeFalse())
		})

		It("abandons a segment released on the toolbar", func() {
			Expect(d.Begin(geom.V(100, 100))).To(BeTrue())
			_, ok, err := d.End(geom.V(100, 910), c)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(c.Segments()).To(HaveLen(3))
			_, pending := d.Pending()
			Expect(pending).To(BeFalse())
		})

		It("drops the pending segment when toggled off", func() {
			d.Begin(geom.V(100, 100))
			d.Toggle()
			_, pending := d.Pending()
			Expect(pending).To(BeFalse())
			Expect(d.Enabled()).To(BeFalse())
		})

		It("passes creation errors through", func() {
			d.Begin(geom.V(1, 1))
			_, ok, err := d.End(geom.V(2, 2), failingMaker{})
			Expect(ok).To(BeFalse())
			Expect(errors.Is(err, world.ErrInvalidGeometry)).To(BeTrue())
		})
	})
})

var _ = Describe("Session", func() {
	var (
		cfg *config.Config
		s   *Session
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
		cfg.Limits.MaxParticles = 40
		c, err := sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		s = NewSession(c, nil)
	})

	It("does nothing while paused", func() {
		_, ran := s.Tick()
		Expect(ran).To(BeFalse())
		Expect(s.Controller().Len()).To(BeZero())
		Expect(s.Controller().FrameCount()).To(BeZero())
	})

	It("pours one grain per running frame", func() {
		s.Start()
		for i := 0; i < 10; i++ {
			f, ran := s.Tick()
			Expect(ran).To(BeTrue())
			Expect(f.Emitted).To(Equal(1))
		}
		Expect(s.Controller().Len()).To(Equal(10))
		Expect(s.Controller().FrameCount()).To(Equal(10))
		Expect(s.Controller().Time()).To(BeNumerically("~", 10*cfg.Dt(), 1e-12))

		s.Toggle()
		Expect(s.Running()).To(BeFalse())
		s.Tick()
		Expect(s.Controller().FrameCount()).To(Equal(10))
	})

	It("emits typed batches while paused, up to the particle cap", func() {
		n, err := s.EmitText(" 25 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(25))

		n, err = s.EmitText("25")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(15))
		Expect(s.Controller().Len()).To(Equal(40))
	})

	It("rejects bad quantities", func() {
		for _, text := range []string{"", "abc", "-3", "0", "1e3", "100001"} {
			_, err := s.EmitText(text)
			Expect(errors.Is(err, ErrInvalidQuantity)).To(BeTrue(), "input %q", text)
		}
		Expect(s.Controller().Len()).To(BeZero())
	})

	It("draws segments through the tool and clears them on reset", func() {
		Expect(s.BeginSegment(geom.V(10, 10))).To(BeFalse())
		s.DrawTool().Toggle()
		Expect(s.BeginSegment(geom.V(10, 10))).To(BeTrue())
		ok, err := s.EndSegment(geom.V(200, 40))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(s.Controller().Segments()).To(HaveLen(4))

		s.Start()
		s.Tick()
		s.Reset()
		Expect(s.Controller().Segments()).To(HaveLen(3))
		Expect(s.Controller().Len()).To(BeZero())
		Expect(s.Running()).To(BeTrue())
	})
})

var _ = Describe("Toolbar", func() {
	tb := NewToolbar(config.DefaultConfig())

	DescribeTable("hit testing",
		func(x, y float64, want Action) {
			Expect(tb.Hit(geom.V(x, y))).To(Equal(want))
		},
		Entry("canvas", 100.0, 899.0, ActionNone),
		Entry("start", 10.0, 910.0, ActionStart),
		Entry("stop", 190.0, 910.0, ActionStop),
		Entry("reset", 400.0, 920.0, ActionReset),
		Entry("draw", 719.0, 930.0, ActionDraw),
		Entry("input left edge", 720.0, 910.0, ActionInput),
		Entry("input right edge", 900.0, 910.0, ActionInput),
		Entry("past the window", 901.0, 910.0, ActionNone),
	)

	It("lays out four buttons and an inset input box", func() {
		buttons := tb.Buttons()
		Expect(buttons).To(HaveLen(4))
		Expect(buttons[3].Rect).To(Equal(Rect{X: 540, Y: 900, W: 180, H: 40}))
		Expect(buttons[0].Action.String()).To(Equal("Start"))
		Expect(tb.InputRect()).To(Equal(Rect{X: 720, Y: 905, W: 170, H: 30}))
	})
})

var _ = Describe("QuantityInput", func() {
	It("ignores typing while inactive", func() {
		var q QuantityInput
		q.Type('1')
		Expect(q.Text()).To(BeEmpty())
	})

	It("keeps digits only and edits", func() {
		var q QuantityInput
		q.SetActive(true)
		q.Type('1', 'a', '2', ' ', '5')
		Expect(q.Text()).To(Equal("125"))
		q.Backspace()
		Expect(q.Take()).To(Equal("12"))
		Expect(q.Text()).To(BeEmpty())
		Expect(q.Active()).To(BeTrue())
		q.Cancel()
		Expect(q.Active()).To(BeFalse())
	})
})

var _ = Describe("Session pointer input", func() {
	var s *Session

	BeforeEach(func() {
		c, err := sim.New(config.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		s = NewSession(c, nil)
	})

	It("dispatches toolbar buttons", func() {
		Expect(s.Press(geom.V(10, 910))).To(Equal(ActionStart))
		Expect(s.Running()).To(BeTrue())
		Expect(s.Press(geom.V(200, 910))).To(Equal(ActionStop))
		Expect(s.Running()).To(BeFalse())
		Expect(s.Press(geom.V(600, 910))).To(Equal(ActionDraw))
		Expect(s.DrawTool().Enabled()).To(BeTrue())
	})

	It("draws a segment with press and release on the canvas", func() {
		s.Press(geom.V(600, 910))
		Expect(s.Press(geom.V(100, 100))).To(Equal(ActionNone))
		ok, err := s.Release(geom.V(300, 200))
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(s.Controller().Segments()).To(HaveLen(4))
	})

	It("submits the quantity box and deactivates it on other presses", func() {
		Expect(s.Press(geom.V(800, 910))).To(Equal(ActionInput))
		s.Input().Type('1', '2')
		n, err := s.Submit()
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(12))
		Expect(s.Controller().Len()).To(Equal(12))

		s.Press(geom.V(100, 100))
		Expect(s.Input().Active()).To(BeFalse())
		n, err = s.Submit()
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})
})

var _ = Describe("Palette", func() {
	It("maps tags to colours", func() {
		Expect(TagColor(world.TagSandA)).To(Equal(SandA))
		Expect(TagColor(world.TagSandB)).To(Equal(SandB))
		Expect(TagColor(world.TagBarrier)).To(Equal(Barrier))
	})

	It("formats hex", func() {
		Expect(Hex(color.RGBA{215, 195, 120, 255})).To(Equal("#d7c378"))
		Expect(Hex(Background)).To(Equal("#0a0a0c"))
	})

	It("keeps idle buttons distinct from highlighted ones", func() {
		Expect(ButtonFill).NotTo(Equal(InputActive))
		Expect(Hex(ButtonFill)).To(Equal("#3c3c46"))
	})
})
