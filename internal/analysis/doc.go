// Package analysis measures poured heaps and run telemetry.
//
// The package includes:
//
//   - [HeightProfile]: column heights of the grains resting above the floor
//   - [ReposeAngle]: slope of the flanks of the tallest heap
//   - [SettleTime]: when the pile came to rest
//   - [PowerSpectrum] and [DominantFrequency]: oscillation in a sampled series
//
// # Angle of repose
//
// Pour from a fixed point, let the pile settle, then fit its flanks:
//
//	profile := analysis.HeightProfile(c.Grains(), cfg.Screen.Width, cfg.Screen.Height, 90)
//	deg, ok := analysis.ReposeAngle(profile, cfg.Screen.Width/90)
//
// Dry sand sits between roughly 30 and 35 degrees.
package analysis
