// Package capture persists propagation runs to disk: one directory per
// run holding a metadata.json and a frames.csv of per-frame, per-source
// path counts and reverb statistics, so the analyze/tune commands can
// work over a finished run offline.
package capture

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store writes and reads run directories under a base directory.
type Store struct {
	baseDir string
}

// New returns a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the base directory if needed.
func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one captured run.
type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Frames     int                `json:"frames"`
	SampleRate float64            `json:"sample_rate"`
	NumSources int                `json:"num_sources"`
	Metrics    map[string]float64 `json:"metrics"`
}

// SourceFrameRecord is one source's slice of a frame: its discovered
// path count and the frame's reverb estimate for it.
type SourceFrameRecord struct {
	SourceID    int     `json:"source_id"`
	PathCount   int     `json:"path_count"`
	Volume      float64 `json:"volume"`
	SurfaceArea float64 `json:"surface_area"`
	DecayMid    float64 `json:"decay_mid"` // T60 at the 1 kHz band, seconds
}

// FrameRecord is one engine tick's worth of capture.
type FrameRecord struct {
	Frame             int                 `json:"frame"`
	PropagationMillis float64             `json:"propagation_millis"`
	ListenerRays      int                 `json:"listener_rays"`
	SourceRays        int                 `json:"source_rays"`
	Sources           []SourceFrameRecord `json:"sources"`
}

// TotalPaths sums path counts across the frame's sources.
func (f FrameRecord) TotalPaths() int {
	total := 0
	for _, s := range f.Sources {
		total += s.PathCount
	}
	return total
}

var frameHeader = []string{
	"frame", "propagation_millis", "listener_rays", "source_rays",
	"source_id", "path_count", "volume", "surface_area", "decay_mid",
}

// Save writes a run directory named "<scenario>_<unix>" containing
// metadata.json and frames.csv (one row per frame per source), returning
// the run ID.
func (s *Store) Save(scenario string, seed int64, sampleRate float64, numSources int, frames []FrameRecord, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   scenario,
		Timestamp:  time.Now(),
		Seed:       seed,
		Frames:     len(frames),
		SampleRate: sampleRate,
		NumSources: numSources,
		Metrics:    metrics,
	}
	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()
	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		for _, src := range f.Sources {
			row := []string{
				strconv.Itoa(f.Frame),
				strconv.FormatFloat(f.PropagationMillis, 'f', 3, 64),
				strconv.Itoa(f.ListenerRays),
				strconv.Itoa(f.SourceRays),
				strconv.Itoa(src.SourceID),
				strconv.Itoa(src.PathCount),
				strconv.FormatFloat(src.Volume, 'f', 3, 64),
				strconv.FormatFloat(src.SurfaceArea, 'f', 3, 64),
				strconv.FormatFloat(src.DecayMid, 'f', 4, 64),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}
	return runID, nil
}

// List returns metadata for every run directory under the base dir.
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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads a run's frames.csv back into FrameRecords, grouping
// per-source rows by frame number.
func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
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
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0)
	byFrame := make(map[int]int)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		millis, _ := strconv.ParseFloat(rec[1], 64)
		listenerRays, _ := strconv.Atoi(rec[2])
		sourceRays, _ := strconv.Atoi(rec[3])
		sourceID, _ := strconv.Atoi(rec[4])
		pathCount, _ := strconv.Atoi(rec[5])
		volume, _ := strconv.ParseFloat(rec[6], 64)
		area, _ := strconv.ParseFloat(rec[7], 64)
		decay, _ := strconv.ParseFloat(rec[8], 64)

		idx, ok := byFrame[frame]
		if !ok {
			frames = append(frames, FrameRecord{
				Frame:             frame,
				PropagationMillis: millis,
				ListenerRays:      listenerRays,
				SourceRays:        sourceRays,
			})
			idx = len(frames) - 1
			byFrame[frame] = idx
		}
		frames[idx].Sources = append(frames[idx].Sources, SourceFrameRecord{
			SourceID:    sourceID,
			PathCount:   pathCount,
			Volume:      volume,
			SurfaceArea: area,
			DecayMid:    decay,
		})
	}
	return frames, nil
}
