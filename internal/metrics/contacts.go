package metrics

import "github.com/san-kum/granular/internal/sim"

// Contacts is the mean number of contacts resolved per frame.
type Contacts struct {
	name    string
	sum     int
	samples int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(f *sim.Frame) {
	c.sum += f.Stats.Contacts
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}

// GrainCount is the live grain count of the last frame.
type GrainCount struct {
	name  string
	count int
}

func NewGrainCount() *GrainCount {
	return &GrainCount{name: "grains"}
}

func (g *GrainCount) Name() string { return g.name }

func (g *GrainCount) Observe(f *sim.Frame) { g.count = len(f.Grains) }

func (g *GrainCount) Value() float64 { return float64(g.count) }

func (g *GrainCount) Reset() { g.count = 0 }

// Culled counts grains removed by culling.
type Culled struct {
	name  string
	total int
}

func NewCulled() *Culled {
	return &Culled{name: "culled"}
}

func (c *Culled) Name() string { return c.name }

func (c *Culled) Observe(f *sim.Frame) { c.total += f.Culled }

func (c *Culled) Value() float64 { return float64(c.total) }

func (c *Culled) Reset() { c.total = 0 }

// Default is the metric set used by the command line and front ends.
func Default() []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewEnergyDecay(),
		NewGrainCount(),
		NewContacts(),
		NewMaxPenetration(),
		NewMaxSpeed(),
		NewCulled(),
		NewSettled(5),
	}
}
