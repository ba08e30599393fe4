package audio

import (
	"math"
	"math/rand"

	"github.com/san-kum/granular/internal/sim"
)

const (
	SampleRate = 44100
	BufferSize = 512

	// energyScale is the kinetic energy at which the hiss reaches about
	// two thirds of full loudness.
	energyScale  = 4000.0
	contactScale = 2000.0
)

// Loudness maps a frame to a target level in [0, 1]. Moving grains that are
// also touching make noise; free fall and a resting pile are quiet.
func Loudness(f *sim.Frame) float64 {
	if len(f.Grains) == 0 {
		return 0
	}
	ke := 0.0
	for i := range f.Grains {
		ke += f.Grains[i].KineticEnergy()
	}
	motion := 1 - math.Exp(-ke/energyScale)
	touch := math.Min(float64(f.Stats.Contacts)/contactScale, 1)
	return motion * math.Sqrt(touch)
}

// lpf is a one-pole low pass.
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// synth renders band-limited noise whose level glides toward a target.
type synth struct {
	rng    *rand.Rand
	level  float64
	low    [2]float64
	lowest [2]float64
}

func newSynth(seed int64) *synth {
	return &synth{rng: rand.New(rand.NewSource(seed))}
}

// render fills out with the hiss. Louder pours also brighten it.
func (s *synth) render(out [][]float32, target float64) {
	const (
		dt    = 1.0 / SampleRate
		glide = 0.0005
		vol   = 0.35
	)
	for i := range out[0] {
		s.level += (target - s.level) * glide
		cutoff := 1500 + 4500*s.level
		for ch := range out {
			if ch >= 2 {
				out[ch][i] = 0
				continue
			}
			n := s.rng.Float64()*2 - 1
			s.low[ch] = lpf(n, cutoff, dt, s.low[ch])
			s.lowest[ch] = lpf(s.low[ch], 200, dt, s.lowest[ch])
			out[ch][i] = float32((s.low[ch] - s.lowest[ch]) * s.level * vol)
		}
	}
}
