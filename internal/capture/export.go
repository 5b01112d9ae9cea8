package capture

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is a run flattened into a single JSON document, convenient
// for piping into external tooling.
type ExportData struct {
	Meta   RunMetadata   `json:"meta"`
	Frames []FrameRecord `json:"frames"`
}

// ExportJSON writes a captured run as one indented JSON file.
func (s *Store) ExportJSON(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.exportJSON(runID, file)
}

// ExportJSONStdout writes a captured run as indented JSON to stdout.
func (s *Store) ExportJSONStdout(runID string) error {
	return s.exportJSON(runID, os.Stdout)
}

func (s *Store) exportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: *meta, Frames: frames})
}
