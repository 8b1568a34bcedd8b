package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/pinn"
	"github.com/san-kum/pinnbar/internal/train"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
	weightsFile  = "weights.json"
	configFile   = "config.yaml"

	// Latest resolves to the most recent run.
	Latest = "latest"
)

// ErrNotFound indicates no stored run matches an ID.
var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Load       string             `json:"load"`
	Hidden     []int              `json:"hidden"`
	Points     int                `json:"points"`
	Optimizer  string             `json:"optimizer"`
	Epochs     int                `json:"epochs"`
	StopReason string             `json:"stop_reason"`
	Elapsed    time.Duration      `json:"elapsed"`
	Final      pinn.Loss          `json:"final"`
	Metrics    map[string]float64 `json:"metrics"`
}

func newRunID() string {
	return strings.ToLower(ulid.Make().String())
}

// Save writes a finished run: metadata, loss history, network weights and the
// config that produced it.
func (s *Store) Save(name string, cfg *config.Config, result *train.Result, net *nn.Network) (string, error) {
	runID := newRunID()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Load:       cfg.Load.Type,
		Hidden:     cfg.Network.Hidden,
		Points:     cfg.Sampling.Points,
		Optimizer:  cfg.Optimizer.Name,
		Epochs:     result.Epochs,
		StopReason: result.StopReason,
		Elapsed:    result.Elapsed,
		Final:      result.Final,
		Metrics:    finiteMetrics(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, weightsFile), net.Snapshot()); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
		return "", err
	}
	return runID, nil
}

// finiteMetrics drops NaN and Inf values, which encoding/json rejects.
func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistory(path string, history []pinn.Loss) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "pde", "bc", "total"}); err != nil {
		return err
	}
	for i, l := range history {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(l.PDE, 'g', -1, 64),
			strconv.FormatFloat(l.BC, 'g', -1, 64),
			strconv.FormatFloat(l.Total, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first.
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

		meta, err := s.readMetadata(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// Resolve maps "latest" or a unique ID prefix to a full run ID.
func (s *Store) Resolve(ref string) (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if ref == Latest {
		return runs[len(runs)-1].ID, nil
	}

	ref = strings.ToLower(ref)
	var match string
	for _, r := range runs {
		if r.ID == ref {
			return r.ID, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("storage: ambiguous run prefix %q", ref)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	return s.readMetadata(runID)
}

func (s *Store) readMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadNetwork(runID string) (*nn.Network, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, weightsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return nn.ReadJSON(f)
}

func (s *Store) LoadHistory(runID string) ([]pinn.Loss, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []pinn.Loss{}, nil
	}

	history := make([]pinn.Loss, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 4 {
			continue
		}

		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("history row %d: %w", i, err)
			}
			vals[j] = v
		}
		history = append(history, pinn.Loss{PDE: vals[0], BC: vals[1], Total: vals[2]})
	}
	return history, nil
}
