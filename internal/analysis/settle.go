package analysis

import "github.com/san-kum/granular/internal/sim"

// SettleTime returns the time of the first sample from which the kinetic
// energy per grain stays at or below threshold for the rest of the run.
// Samples without grains count as unsettled.
func SettleTime(samples []sim.Sample, threshold float64) (float64, bool) {
	settled := -1
	for i, s := range samples {
		calm := s.Grains > 0 && s.KineticEnergy/float64(s.Grains) <= threshold
		switch {
		case !calm:
			settled = -1
		case settled < 0:
			settled = i
		}
	}
	if settled < 0 {
		return 0, false
	}
	return samples[settled].Time, true
}
