// Package store snapshots a sandbox world to JSON and renders snapshots as
// SVG.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/san-kum/granular/internal/geom"
	"github.com/san-kum/granular/internal/sim"
	"github.com/san-kum/granular/internal/world"
)

const SceneVersion = 1

var ErrInvalidScene = errors.New("store: invalid scene")

// Scene is a portable snapshot of the grains and user segments of a world.
// Boundaries are not stored; every world recreates its own.
type Scene struct {
	Version  int            `json:"version"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Radius   float64        `json:"radius"`
	Time     float64        `json:"time"`
	Grains   []GrainState   `json:"grains"`
	Segments []SegmentState `json:"segments"`
}

type GrainState struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	VX  float64 `json:"vx"`
	VY  float64 `json:"vy"`
	Tag uint8   `json:"tag"`
}

type SegmentState struct {
	AX        float64 `json:"ax"`
	AY        float64 `json:"ay"`
	BX        float64 `json:"bx"`
	BY        float64 `json:"by"`
	Thickness float64 `json:"thickness"`
}

// Snapshot copies the current state of c.
func Snapshot(c *sim.Controller) *Scene {
	cfg := c.Config()
	grains := c.Grains()
	sc := &Scene{
		Version:  SceneVersion,
		Width:    cfg.Screen.Width,
		Height:   cfg.Screen.Height,
		Radius:   cfg.Grain.Radius,
		Time:     c.Time(),
		Grains:   make([]GrainState, 0, len(grains)),
		Segments: make([]SegmentState, 0),
	}
	for _, g := range grains {
		sc.Grains = append(sc.Grains, GrainState{X: g.Pos.X, Y: g.Pos.Y, VX: g.Vel.X, VY: g.Vel.Y, Tag: uint8(g.Tag)})
	}
	for _, s := range c.Segments() {
		if s.Boundary {
			continue
		}
		sc.Segments = append(sc.Segments, SegmentState{AX: s.A.X, AY: s.A.Y, BX: s.B.X, BY: s.B.Y, Thickness: s.Thickness})
	}
	return sc
}

func ExportScene(w io.Writer, sc *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sc)
}

func ExportSceneFile(path string, sc *Scene) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportScene(file, sc)
}

// ImportScene decodes and validates a snapshot.
func ImportScene(r io.Reader) (*Scene, error) {
	var sc Scene
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func ImportSceneFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ImportScene(file)
}

func (sc *Scene) Validate() error {
	if sc.Version != SceneVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidScene, sc.Version)
	}
	for i, g := range sc.Grains {
		if !finite(g.X, g.Y, g.VX, g.VY) {
			return fmt.Errorf("%w: grain %d is not finite", ErrInvalidScene, i)
		}
		if world.Tag(g.Tag) > world.TagSandB {
			return fmt.Errorf("%w: grain %d has tag %d", ErrInvalidScene, i, g.Tag)
		}
	}
	for i, s := range sc.Segments {
		if !finite(s.AX, s.AY, s.BX, s.BY, s.Thickness) || s.Thickness < 0 {
			return fmt.Errorf("%w: segment %d", ErrInvalidScene, i)
		}
	}
	return nil
}

// Restore resets c and rebuilds the snapshot in it. Grains beyond the
// particle cap are dropped and reported with world.ErrCapacityExceeded after
// everything that fits has been restored.
func Restore(c *sim.Controller, sc *Scene) (int, error) {
	c.Reset()
	for i, s := range sc.Segments {
		if _, err := c.CreateSegment(geom.V(s.AX, s.AY), geom.V(s.BX, s.BY), s.Thickness); err != nil {
			return 0, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	store := c.Store()
	restored := 0
	var capErr error
	for _, gs := range sc.Grains {
		h, err := c.CreateGrain(geom.V(gs.X, gs.Y))
		if err != nil {
			if errors.Is(err, world.ErrCapacityExceeded) {
				capErr = fmt.Errorf("restored %d of %d grains: %w", restored, len(sc.Grains), err)
				break
			}
			return restored, err
		}
		g, _ := store.Grain(h)
		g.Vel = geom.V(gs.VX, gs.VY)
		g.Tag = world.Tag(gs.Tag)
		restored++
	}
	return restored, capErr
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
