package storage

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/granular/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{Time: 1.0 / 60, Grains: 1, KineticEnergy: 0.25, MaxSpeed: 5, Contacts: 0, Emitted: 1},
			{Time: 0.5, Grains: 30, KineticEnergy: 12.5, MaxSpeed: 420.125, Contacts: 17, MaxPenetration: 0.003, Culled: 2},
		},
		Metrics: map[string]float64{"kinetic_energy": 12.5, "grains": 30},
		Frames:  30,
		Emitted: 30,
		Culled:  2,
		Elapsed: 1500 * time.Microsecond,
	}
}

func TestSaveLoad(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "runs"))

	id, err := s.Save(RunMetadata{Name: "heap", Seed: 3, Dt: 1.0 / 60, Duration: 0.5, Integrator: "semi_implicit", BroadPhase: "grid"}, testResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.Name != "heap" || meta.Seed != 3 || meta.BroadPhase != "grid" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Frames != 30 || meta.Emitted != 30 || meta.Culled != 2 {
		t.Errorf("result totals not recorded: %+v", meta)
	}
	if meta.ElapsedMS != 1.5 {
		t.Errorf("elapsed = %v ms", meta.ElapsedMS)
	}
	if meta.Metrics["grains"] != 30 {
		t.Errorf("metrics not recorded: %v", meta.Metrics)
	}

	samples, err := s.LoadSamples(id)
	if err != nil {
		t.Fatal(err)
	}
	want := testResult().Samples
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		got, w := samples[i], want[i]
		if math.Abs(got.Time-w.Time) > 1e-6 || got.Grains != w.Grains || got.Contacts != w.Contacts || got.Culled != w.Culled {
			t.Errorf("sample %d = %+v, want %+v", i, got, w)
		}
		if math.Abs(got.MaxSpeed-w.MaxSpeed) > 1e-6 || math.Abs(got.MaxPenetration-w.MaxPenetration) > 1e-6 {
			t.Errorf("sample %d floats = %+v, want %+v", i, got, w)
		}
	}
}

func TestSave_UniqueIDs(t *testing.T) {
	s := New(t.TempDir())
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := s.Save(RunMetadata{}, testResult())
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate run id %s", id)
		}
		seen[id] = true
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Timestamp.Before(runs[i-1].Timestamp) {
			t.Error("runs not sorted oldest first")
		}
	}
	if runs[0].Name != "run" {
		t.Errorf("default name = %q", runs[0].Name)
	}
}

func TestList_SkipsJunk(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if runs, err := New(filepath.Join(dir, "missing")).List(); err != nil || len(runs) != 0 {
		t.Errorf("missing dir: %v %v", runs, err)
	}

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "empty"), 0755)
	os.Mkdir(filepath.Join(dir, "broken"), 0755)
	os.WriteFile(filepath.Join(dir, "broken", "metadata.json"), []byte("{"), 0644)

	if _, err := s.Save(RunMetadata{Name: "ok"}, testResult()); err != nil {
		t.Fatal(err)
	}
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Name != "ok" {
		t.Errorf("expected only the valid run, got %+v", runs)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := s.LoadSamples("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadSamples: expected ErrRunNotFound, got %v", err)
	}
}

func TestLoadSamples_SkipsBadRows(t *testing.T) {
	dir := t.TempDir()
	os.Mkdir(filepath.Join(dir, "r"), 0755)
	data := "time,grains,kinetic_energy,max_speed,contacts,max_penetration,emitted,culled\n" +
		"0.1,4,1,2,3,0,1,0\n" +
		"oops,4,1,2,3,0,1,0\n" +
		"0.2,5\n" +
		"0.3,6,1,2,3,0,1,0\n"
	os.WriteFile(filepath.Join(dir, "r", "telemetry.csv"), []byte(data), 0644)

	samples, err := New(dir).LoadSamples("r")
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 || samples[0].Grains != 4 || samples[1].Grains != 6 {
		t.Errorf("unexpected samples %+v", samples)
	}
}
