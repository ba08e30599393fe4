package collision

import "testing"

func benchmarkPairs(b *testing.B, bp BroadPhase, n int) {
	s := testStore(b, n)
	scatter(b, s, n, 1)
	grains, segs := s.Grains(), s.Segments()

	var pairs []Pair
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bp.Build(grains, segs, s.Version())
		pairs = bp.GrainPairs(pairs[:0])
		pairs = bp.SegmentPairs(pairs[:0])
	}
}

func BenchmarkGrid_5k(b *testing.B)    { benchmarkPairs(b, NewGrid(window, 2.5, 0), 5000) }
func BenchmarkGrid_20k(b *testing.B)   { benchmarkPairs(b, NewGrid(window, 2.5, 0), 20000) }
func BenchmarkNaive_5k(b *testing.B)   { benchmarkPairs(b, NewNaive(), 5000) }
func BenchmarkGrid_20k_1(b *testing.B) { benchmarkPairs(b, NewGrid(window, 2.5, 1), 20000) }
