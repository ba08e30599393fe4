package world

import "errors"

var (
	// ErrCapacityExceeded is returned when a grain is requested while the
	// store already holds MaxParticles grains. Nothing is created.
	ErrCapacityExceeded = errors.New("world: particle capacity exceeded")

	// ErrStaleHandle indicates a handle whose grain was removed or reset.
	ErrStaleHandle = errors.New("world: stale or unknown handle")

	// ErrInvalidGeometry indicates a negative or non-finite size.
	ErrInvalidGeometry = errors.New("world: invalid geometry")
)
