package capture

import (
	"testing"
)

func sampleFrames() []FrameRecord {
	return []FrameRecord{
		{
			Frame: 0, PropagationMillis: 1.25, ListenerRays: 200, SourceRays: 20,
			Sources: []SourceFrameRecord{
				{SourceID: 0, PathCount: 7, Volume: 64, SurfaceArea: 96, DecayMid: 0.42},
				{SourceID: 1, PathCount: 3, Volume: 64, SurfaceArea: 96, DecayMid: 0.39},
			},
		},
		{
			Frame: 1, PropagationMillis: 1.31, ListenerRays: 201, SourceRays: 20,
			Sources: []SourceFrameRecord{
				{SourceID: 0, PathCount: 8, Volume: 63.5, SurfaceArea: 96, DecayMid: 0.41},
				{SourceID: 1, PathCount: 3, Volume: 63.5, SurfaceArea: 96, DecayMid: 0.4},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	frames := sampleFrames()
	runID, err := st.Save("small-room", 7, 44100, 2, frames, map[string]float64{"path_stability": 0.97})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scenario != "small-room" || meta.Frames != 2 || meta.NumSources != 2 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["path_stability"] != 0.97 {
		t.Errorf("metrics not preserved: %v", meta.Metrics)
	}

	loaded, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(frames) {
		t.Fatalf("loaded %d frames, want %d", len(loaded), len(frames))
	}
	for i := range frames {
		if loaded[i].Frame != frames[i].Frame {
			t.Errorf("frame %d index mismatch", i)
		}
		if len(loaded[i].Sources) != len(frames[i].Sources) {
			t.Fatalf("frame %d has %d sources, want %d", i, len(loaded[i].Sources), len(frames[i].Sources))
		}
		if loaded[i].TotalPaths() != frames[i].TotalPaths() {
			t.Errorf("frame %d total paths = %d, want %d", i, loaded[i].TotalPaths(), frames[i].TotalPaths())
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("List() = %+v, want single run %s", runs, runID)
	}
}

func TestListMissingDirIsEmpty(t *testing.T) {
	st := New(t.TempDir() + "/nope")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
