package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	t.Setenv("GGPICTURE_QUALITY", "")
	t.Setenv("GGPICTURE_WORKERS", "")

	w, err := Load(filepath.Join(t.TempDir(), DefaultStateFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.WorkingDir != "" || w.OutputFile != "" {
		t.Fatalf("expected empty workspace, got %+v", w)
	}
	if _, err := w.OutputPath(); !errors.Is(err, ErrNoWorkingDir) {
		t.Fatalf("output path: got %v, want ErrNoWorkingDir", err)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Setenv("GGPICTURE_QUALITY", "")
	t.Setenv("GGPICTURE_WORKERS", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "state", DefaultStateFile)

	w := &Workspace{}
	if err := w.SetWorkingDir(dir); err != nil {
		t.Fatalf("set dir: %v", err)
	}
	if err := w.SetOutput("result.png"); err != nil {
		t.Fatalf("set output: %v", err)
	}
	w.Quality = 70
	if err := w.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *w {
		t.Fatalf("roundtrip: got %+v, want %+v", got, w)
	}
	out, err := got.OutputPath()
	if err != nil {
		t.Fatalf("output path: %v", err)
	}
	if want := filepath.Join(dir, "result.png"); out != want {
		t.Fatalf("output path: got %s, want %s", out, want)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	dir := t.TempDir()
	w := &Workspace{}
	if err := w.SetWorkingDir(dir); err != nil {
		t.Fatalf("set dir: %v", err)
	}
	out, err := w.OutputPath()
	if err != nil {
		t.Fatalf("output path: %v", err)
	}
	if want := filepath.Join(dir, DefaultOutputName); out != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestSetWorkingDirResetsOutput(t *testing.T) {
	dir := t.TempDir()
	w := &Workspace{WorkingDir: dir, OutputFile: filepath.Join(dir, "x.bmp")}
	if err := w.SetWorkingDir(dir); err != nil {
		t.Fatalf("set dir: %v", err)
	}
	if w.OutputFile != "" {
		t.Fatalf("output file should be cleared, got %q", w.OutputFile)
	}
}

func TestSetWorkingDirRejectsFiles(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := &Workspace{}
	if err := w.SetWorkingDir(file); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("got %v, want ErrNotDirectory", err)
	}
	if err := w.SetWorkingDir(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want not-exist", err)
	}
}

func TestSetOutputNeedsWorkingDir(t *testing.T) {
	w := &Workspace{}
	if err := w.SetOutput("a.bmp"); !errors.Is(err, ErrNoWorkingDir) {
		t.Fatalf("got %v, want ErrNoWorkingDir", err)
	}
}

func TestResolve(t *testing.T) {
	w := &Workspace{WorkingDir: "/data/pics"}
	if got := w.Resolve("in.bmp"); got != filepath.Join("/data/pics", "in.bmp") {
		t.Fatalf("relative: got %s", got)
	}
	if got := w.Resolve("/abs/in.bmp"); got != "/abs/in.bmp" {
		t.Fatalf("absolute: got %s", got)
	}
	if got := (&Workspace{}).Resolve("in.bmp"); got != "in.bmp" {
		t.Fatalf("no working dir: got %s", got)
	}
}

func TestLegacyConfig(t *testing.T) {
	t.Setenv("GGPICTURE_QUALITY", "")
	dir := t.TempDir()
	legacy := "working_directory=/srv/img\noutput_file=/srv/img/first.bmp\noutput_file=/srv/img/second.bmp\n"
	if err := os.WriteFile(filepath.Join(dir, LegacyStateFile), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := Load(filepath.Join(dir, DefaultStateFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.WorkingDir != "/srv/img" {
		t.Fatalf("working dir: got %q", w.WorkingDir)
	}
	if w.OutputFile != "/srv/img/second.bmp" {
		t.Fatalf("output: got %q, want the last entry", w.OutputFile)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GGPICTURE_QUALITY", "55")
	t.Setenv("GGPICTURE_WORKERS", "not-a-number")

	w, err := Load(filepath.Join(t.TempDir(), DefaultStateFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.EffectiveQuality() != 55 {
		t.Fatalf("quality: got %d, want 55", w.EffectiveQuality())
	}
	if w.Workers != 0 {
		t.Fatalf("invalid env value should fall back, got %d", w.Workers)
	}
	if w.EffectiveWorkers() < 1 {
		t.Fatal("effective workers must be positive")
	}
}

func TestLoadTelemetryDefaults(t *testing.T) {
	t.Setenv("GGPICTURE_TRACE", "")
	t.Setenv("GGPICTURE_METRICS_FILE", "/tmp/m.prom")
	tc := LoadTelemetry()
	if tc.Exporter != "none" {
		t.Fatalf("exporter: got %q", tc.Exporter)
	}
	if tc.MetricsFile != "/tmp/m.prom" {
		t.Fatalf("metrics file: got %q", tc.MetricsFile)
	}
}

func TestLoadCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStateFile)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
