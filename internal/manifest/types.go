// Package manifest describes the JSON report written by a batch run.
package manifest

// Manifest is the top-level output of a ggpicture batch run.
type Manifest struct {
	Version     int              `json:"version"`
	GeneratedAt string           `json:"generated_at"`
	Operation   string           `json:"operation"`
	Param       int              `json:"param"`
	BasePath    string           `json:"base_path"`
	BuildInfo   *BuildInfo       `json:"build_info,omitempty"`
	Assets      map[string]Asset `json:"assets"`
	Failures    []Failure        `json:"failures,omitempty"`
	Stats       Stats            `json:"stats"`
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers  int      `json:"workers"`
	Quality  int      `json:"quality"`
	Encoders []string `json:"encoders,omitempty"`
	Bucket   string   `json:"bucket,omitempty"` // set when outputs went to an object store
}

// Asset is one source image and its transformed output.
type Asset struct {
	Original ImageInfo  `json:"original"`
	Output   OutputInfo `json:"output"`
}

// ImageInfo holds metadata about a decoded image.
type ImageInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// OutputInfo is ImageInfo plus where the encoded bytes went.
type OutputInfo struct {
	ImageInfo
	Hash      string `json:"hash"`       // xxhash64 of the encoded file, 16 hex chars
	PixelHash string `json:"pixel_hash"` // xxhash64 of the transformed buffer
	Path      string `json:"path"`       // relative to base_path, or the object key
}

// Failure records a source that could not be processed.
type Failure struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Stats aggregates run metrics.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	TotalAssets      int   `json:"total_assets"`
	TotalFailures    int   `json:"total_failures"`
	TotalPixels      int64 `json:"total_pixels"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1

// FileName is the manifest name inside a batch output directory.
const FileName = "ggpicture.manifest.json"
