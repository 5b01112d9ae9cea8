package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name == "" {
		t.Error("expected a non-empty scene name")
	}
	if cfg.Box == nil {
		t.Fatal("expected a box geometry")
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected at least one source")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small-room")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Box.Width != 4 {
		t.Errorf("expected width 4, got %v", cfg.Box.Width)
	}
}

func TestGetPresetNotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPresetIsIndependentCopy(t *testing.T) {
	a := GetPreset("small-room")
	a.Sources[0].Power = 99
	b := GetPreset("small-room")
	if b.Sources[0].Power == 99 {
		t.Error("mutating one GetPreset result leaked into another")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Error("expected at least one preset")
	}
	found := false
	for _, n := range names {
		if n == "concert-hall" {
			found = true
		}
	}
	if !found {
		t.Error("expected concert-hall among presets")
	}
}

func TestBuildSceneFromBox(t *testing.T) {
	cfg := GetPreset("small-room")
	scene, sources, listener, err := BuildScene(cfg)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if len(scene.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(scene.Objects))
	}
	if len(scene.Objects[0].Mesh.Triangles) != 12 {
		t.Errorf("expected 12 triangles for a box room, got %d", len(scene.Objects[0].Mesh.Triangles))
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(sources))
	}
	if listener == nil {
		t.Fatal("expected a listener")
	}
}

func TestBuildSceneRequiresGeometry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Box = nil
	cfg.MeshFile = ""
	if _, _, _, err := BuildScene(cfg); err == nil {
		t.Error("expected an error when neither mesh_file nor box is set")
	}
}
