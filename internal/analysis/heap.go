package analysis

import (
	"math"

	"github.com/san-kum/granular/internal/world"
)

// HeightProfile splits [0, width) into bins columns and returns, for each,
// the height above floor of the highest grain top in it.
func HeightProfile(grains []world.Grain, width, floor float64, bins int) []float64 {
	if bins < 1 || !(width > 0) {
		return nil
	}
	h := make([]float64, bins)
	bw := width / float64(bins)
	for i := range grains {
		g := &grains[i]
		b := int(math.Floor(g.Pos.X / bw))
		if b < 0 || b >= bins {
			continue
		}
		if top := floor - g.Pos.Y + g.Radius; top > h[b] {
			h[b] = top
		}
	}
	return h
}

// ReposeAngle fits a line to each flank of the tallest heap in profile and
// returns the mean flank angle in degrees. A flank runs from the peak to
// the last occupied column before a gap; flanks with fewer than three
// columns are ignored. ok is false when neither flank qualifies.
func ReposeAngle(profile []float64, binWidth float64) (deg float64, ok bool) {
	if len(profile) == 0 || !(binWidth > 0) {
		return 0, false
	}
	peak := 0
	for i, h := range profile {
		if h > profile[peak] {
			peak = i
		}
	}
	if profile[peak] <= 0 {
		return 0, false
	}

	lo := peak
	for lo > 0 && profile[lo-1] > 0 {
		lo--
	}
	hi := peak
	for hi < len(profile)-1 && profile[hi+1] > 0 {
		hi++
	}

	var sum float64
	n := 0
	for _, flank := range [][2]int{{lo, peak}, {peak, hi}} {
		if flank[1]-flank[0] < 2 {
			continue
		}
		slope := fitSlope(profile[flank[0]:flank[1]+1], binWidth)
		sum += math.Atan(math.Abs(slope)) * 180 / math.Pi
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// fitSlope is the least-squares slope of ys sampled every dx.
func fitSlope(ys []float64, dx float64) float64 {
	n := float64(len(ys))
	var sx, sy, sxx, sxy float64
	for i, y := range ys {
		x := float64(i) * dx
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
