// Package storage persists headless run telemetry. Each run gets its own
// directory holding metadata.json and telemetry.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/granular/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

var telemetryHeader = []string{
	"time", "grains", "kinetic_energy", "max_speed", "contacts", "max_penetration", "emitted", "culled",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Preset     string             `json:"preset,omitempty"`
	Scene      string             `json:"scene,omitempty"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	BroadPhase string             `json:"broadphase"`
	Frames     int                `json:"frames"`
	Emitted    int                `json:"emitted"`
	Culled     int                `json:"culled"`
	ElapsedMS  float64            `json:"elapsed_ms"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a new run directory for result and returns its ID. The ID and
// timestamp in meta are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	name := meta.Name
	if name == "" {
		name = "run"
	}
	meta.Timestamp = time.Now()
	runID, runDir, err := s.newRunDir(name, meta.Timestamp)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Name = name
	meta.Frames = result.Frames
	meta.Emitted = result.Emitted
	meta.Culled = result.Culled
	meta.ElapsedMS = float64(result.Elapsed.Microseconds()) / 1000
	meta.Metrics = result.Metrics

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTelemetry(filepath.Join(runDir, "telemetry.csv"), result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(name string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%s", name, ts.Format("20060102-150405"))
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTelemetry(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(telemetryHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			strconv.Itoa(s.Grains),
			formatFloat(s.KineticEnergy),
			formatFloat(s.MaxSpeed),
			strconv.Itoa(s.Contacts),
			formatFloat(s.MaxPenetration),
			strconv.Itoa(s.Emitted),
			strconv.Itoa(s.Culled),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads the telemetry series of a run. Rows that fail to parse
// are skipped.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "telemetry.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(telemetryHeader) {
			continue
		}
		var p parser
		samples = append(samples, sim.Sample{
			Time:           p.parseFloat(record[0]),
			Grains:         p.parseInt(record[1]),
			KineticEnergy:  p.parseFloat(record[2]),
			MaxSpeed:       p.parseFloat(record[3]),
			Contacts:       p.parseInt(record[4]),
			MaxPenetration: p.parseFloat(record[5]),
			Emitted:        p.parseInt(record[6]),
			Culled:         p.parseInt(record[7]),
		})
		if p.err != nil {
			samples = samples[:len(samples)-1]
		}
	}
	return samples, nil
}

// parser keeps the first conversion error of a row.
type parser struct{ err error }

func (p *parser) parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
