package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AnyUserName/ggpicture/internal/hasher"
)

// New creates an empty manifest for one operation.
func New(op string, param int) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Operation:   op,
		Param:       param,
		BasePath:    "./",
		Assets:      make(map[string]Asset),
	}
}

// ComputeStats recalculates aggregate statistics from assets and failures.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalAssets = len(m.Assets)
	s.TotalFailures = len(m.Failures)
	for _, a := range m.Assets {
		s.TotalInputBytes += a.Original.Size
		s.TotalOutputBytes += a.Output.Size
		s.TotalPixels += int64(a.Original.Width) * int64(a.Original.Height)
	}
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file. Map keys are sorted by
// encoding/json, so output is stable for equal manifests.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest file, or FileName inside path when path is a
// directory.
func ReadJSON(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Assets == nil {
		m.Assets = make(map[string]Asset)
	}
	return &m, nil
}

// Check verifies internal consistency and, when baseDir is non-empty, that
// every output file exists with the recorded size and content hash. It
// returns one message per problem found.
func (m *Manifest) Check(baseDir string) []string {
	var errs []string

	if m.Version != SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if m.Operation == "" {
		errs = append(errs, "missing operation")
	}

	seenPaths := map[string]string{}
	for key, a := range m.Assets {
		if a.Original.Width <= 0 || a.Original.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid original dimensions %dx%d",
				key, a.Original.Width, a.Original.Height))
		}
		o := a.Output
		if o.Width <= 0 || o.Height <= 0 {
			errs = append(errs, fmt.Sprintf("asset %q: invalid output dimensions %dx%d", key, o.Width, o.Height))
		}
		if o.Hash == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing hash", key))
		}
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("asset %q: missing path", key))
			continue
		}
		if other, dup := seenPaths[o.Path]; dup {
			errs = append(errs, fmt.Sprintf("asset %q: path %q already used by %q", key, o.Path, other))
		}
		seenPaths[o.Path] = key

		if baseDir == "" || (m.BuildInfo != nil && m.BuildInfo.Bucket != "") {
			continue
		}
		if msg := checkFile(filepath.Join(baseDir, filepath.FromSlash(o.Path)), o); msg != "" {
			errs = append(errs, fmt.Sprintf("asset %q: %s", key, msg))
		}
	}

	if m.Stats.TotalAssets != len(m.Assets) {
		errs = append(errs, fmt.Sprintf("stats.total_assets mismatch: %d != %d", m.Stats.TotalAssets, len(m.Assets)))
	}
	if m.Stats.TotalFailures != len(m.Failures) {
		errs = append(errs, fmt.Sprintf("stats.total_failures mismatch: %d != %d", m.Stats.TotalFailures, len(m.Failures)))
	}
	return errs
}

// checkFile compares the file at path against o and describes the first
// difference, or returns "".
func checkFile(path string, o OutputInfo) string {
	f, err := os.Open(path)
	if err != nil {
		return "file not found: " + o.Path
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Sprintf("stat %s: %v", o.Path, err)
	}
	if o.Size > 0 && info.Size() != o.Size {
		return fmt.Sprintf("size mismatch: manifest=%d, disk=%d", o.Size, info.Size())
	}
	if o.Hash == "" {
		return ""
	}
	sum, err := hasher.ContentHashReader(f, len(o.Hash))
	if err != nil {
		return fmt.Sprintf("read %s: %v", o.Path, err)
	}
	if sum != o.Hash {
		return fmt.Sprintf("hash mismatch: manifest=%s, disk=%s", o.Hash, sum)
	}
	return ""
}
