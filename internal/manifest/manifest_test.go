package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/ggpicture/internal/hasher"
)

func sampleManifest() *Manifest {
	m := New("blur", 3)
	m.BuildInfo = &BuildInfo{Workers: 4, Quality: 90, Encoders: []string{"bmp", "png"}}
	m.Assets["cards/card-1"] = Asset{
		Original: ImageInfo{Width: 200, Height: 150, Channels: 3, Format: "png", Size: 1000},
		Output: OutputInfo{
			ImageInfo: ImageInfo{Width: 200, Height: 150, Channels: 3, Format: "png", Size: 5},
			Hash:      hasher.ContentHash([]byte("12345"), 16),
			PixelHash: "fedcba9876543210",
			Path:      "cards/card-1.blur.01234567.png",
		},
	}
	m.Failures = []Failure{{Key: "broken", Kind: "decode", Error: "decode failure"}}
	return m
}

func TestManifestRoundtrip(t *testing.T) {
	m := sampleManifest()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	m2, err := ReadJSON(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Operation != "blur" || m2.Param != 3 {
		t.Errorf("operation: got %s(%d)", m2.Operation, m2.Param)
	}
	if m2.BuildInfo == nil || m2.BuildInfo.Workers != 4 {
		t.Fatal("build_info not parsed correctly")
	}

	a, ok := m2.Assets["cards/card-1"]
	if !ok {
		t.Fatal("asset cards/card-1 missing")
	}
	if a.Output.Path != "cards/card-1.blur.01234567.png" {
		t.Errorf("output path: got %q", a.Output.Path)
	}
	if a.Output.Width != 200 {
		t.Errorf("embedded image info lost: width %d", a.Output.Width)
	}

	if m2.Stats.TotalAssets != 1 || m2.Stats.TotalFailures != 1 {
		t.Errorf("stats: got %+v", m2.Stats)
	}
	if m2.Stats.TotalPixels != 200*150 {
		t.Errorf("total_pixels: got %d", m2.Stats.TotalPixels)
	}
	if m2.Stats.TotalInputBytes != 1000 || m2.Stats.TotalOutputBytes != 5 {
		t.Errorf("bytes: got %+v", m2.Stats)
	}
}

func TestManifestFlattensOutputInfo(t *testing.T) {
	data, err := json.Marshal(sampleManifest().Assets["cards/card-1"].Output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"width":200`) {
		t.Fatalf("embedded fields should be inlined: %s", data)
	}
}

func TestManifestIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"generated_at": "2025-01-01T00:00:00Z",
		"operation": "flip",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "new_flag": true },
		"stats": { "total_assets": 0, "new_stat": 42 }
	}`
	path := filepath.Join(t.TempDir(), "m.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read with unknown fields: %v", err)
	}
	if m.BuildInfo == nil || m.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
	if m.Assets == nil {
		t.Error("assets map should be initialized")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	m := sampleManifest()
	out := filepath.Join(dir, "cards", "card-1.blur.01234567.png")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(out, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	m.ComputeStats()

	if errs := m.Check(dir); len(errs) != 0 {
		t.Fatalf("expected valid manifest, got %v", errs)
	}

	if err := os.WriteFile(out, []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs := m.Check(dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "size mismatch") {
		t.Fatalf("expected size mismatch, got %v", errs)
	}

	if err := os.WriteFile(out, []byte("54321"), 0o644); err != nil {
		t.Fatal(err)
	}
	errs = m.Check(dir)
	if len(errs) != 1 || !strings.Contains(errs[0], "hash mismatch") {
		t.Fatalf("expected hash mismatch, got %v", errs)
	}

	m.Version = 7
	m.Stats.TotalAssets = 9
	if errs := m.Check(""); len(errs) != 2 {
		t.Fatalf("expected version and stats errors, got %v", errs)
	}
}

func TestCheckSkipsFilesForBucketRuns(t *testing.T) {
	m := sampleManifest()
	m.BuildInfo.Bucket = "renders"
	m.ComputeStats()
	if errs := m.Check(t.TempDir()); len(errs) != 0 {
		t.Fatalf("bucket outputs are not on disk; got %v", errs)
	}
}

func TestReadJSONMissing(t *testing.T) {
	if _, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}
