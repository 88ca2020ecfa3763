// Package config holds the persistent workspace state (working directory
// and output file) and the environment-driven settings of the CLI.
package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	DefaultStateFile  = "ggpicture.json"
	LegacyStateFile   = "config.txt"
	DefaultOutputName = "gogi.bmp"
	DefaultQuality    = 90
)

var (
	ErrNoWorkingDir = errors.New("working directory is not set; use set-dir first")
	ErrNotDirectory = errors.New("not a directory")
)

// Workspace is the state persisted between invocations.
type Workspace struct {
	WorkingDir string `json:"working_directory"`
	OutputFile string `json:"output_file,omitempty"`
	Quality    int    `json:"quality,omitempty"`
	Workers    int    `json:"workers,omitempty"`
}

// StatePath returns the state file location, GGPICTURE_CONFIG or
// DefaultStateFile.
func StatePath() string {
	return env("GGPICTURE_CONFIG", DefaultStateFile)
}

// Load reads the workspace from path. When path does not exist, a legacy
// config.txt next to it is tried; when neither exists an empty workspace
// is returned. Environment overrides are applied last.
func Load(path string) (*Workspace, error) {
	w := &Workspace{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, w); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		legacy := filepath.Join(filepath.Dir(path), LegacyStateFile)
		if err := w.loadLegacy(legacy); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	w.applyEnv()
	return w, nil
}

// loadLegacy parses key=value lines. Later lines win, so a config.txt that
// had set_output appended several times yields the last output.
func (w *Workspace) loadLegacy(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimRight(sc.Text(), "\r"), "=")
		if !ok {
			continue
		}
		switch key {
		case "working_directory":
			w.WorkingDir = value
		case "output_file":
			w.OutputFile = value
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func (w *Workspace) applyEnv() {
	w.Quality = envInt("GGPICTURE_QUALITY", w.Quality)
	w.Workers = envInt("GGPICTURE_WORKERS", w.Workers)
}

// Save writes the workspace to path as indented JSON.
func (w *Workspace) Save(path string) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SetWorkingDir validates dir and makes it the working directory. Any
// previously configured output file is dropped.
func (w *Workspace) SetWorkingDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("invalid directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid directory %s: %w", dir, ErrNotDirectory)
	}
	w.WorkingDir = filepath.Clean(dir)
	w.OutputFile = ""
	return nil
}

// SetOutput stores name relative to the working directory. Absolute names
// are kept as given.
func (w *Workspace) SetOutput(name string) error {
	if w.WorkingDir == "" {
		return ErrNoWorkingDir
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("output file name is empty")
	}
	if filepath.IsAbs(name) {
		w.OutputFile = filepath.Clean(name)
	} else {
		w.OutputFile = filepath.Join(w.WorkingDir, name)
	}
	return nil
}

// OutputPath returns the configured output file or <working dir>/gogi.bmp.
func (w *Workspace) OutputPath() (string, error) {
	if w.OutputFile != "" {
		return w.OutputFile, nil
	}
	if w.WorkingDir == "" {
		return "", ErrNoWorkingDir
	}
	return filepath.Join(w.WorkingDir, DefaultOutputName), nil
}

// Resolve maps a relative input file to the working directory. Absolute
// paths, and any path when no working directory is set, pass through.
func (w *Workspace) Resolve(file string) string {
	if filepath.IsAbs(file) || w.WorkingDir == "" {
		return file
	}
	return filepath.Join(w.WorkingDir, file)
}

// EffectiveQuality returns Quality or DefaultQuality when unset.
func (w *Workspace) EffectiveQuality() int {
	if w.Quality <= 0 || w.Quality > 100 {
		return DefaultQuality
	}
	return w.Quality
}

// EffectiveWorkers returns Workers or the CPU count when unset.
func (w *Workspace) EffectiveWorkers() int {
	if w.Workers <= 0 {
		return runtime.NumCPU()
	}
	return w.Workers
}
