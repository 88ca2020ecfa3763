package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ggpicture/internal/config"
	"github.com/AnyUserName/ggpicture/internal/manifest"
	"github.com/AnyUserName/ggpicture/internal/pipeline"
	"github.com/AnyUserName/ggpicture/internal/storage"
	"github.com/AnyUserName/ggpicture/internal/transform"
)

var (
	batchOp       string
	batchParam    int
	batchOutDir   string
	batchWorkers  int
	batchQuality  int
	batchFormat   string
	batchMaxWidth int
	batchBucket   string
	batchPrefix   string
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Apply one transform to every image in a directory",
	Long: `Scans the input directory for images (png, jpg, jpeg, gif, bmp, tiff, webp),
applies the chosen operation to each one in parallel, and writes the results
plus a manifest.

Output filenames are content-addressed: <key>.<op>.<hash>.<ext>

Operations:
` + opsHelp(),
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchOp, "op", "", "operation to apply (required)")
	batchCmd.Flags().IntVar(&batchParam, "param", 0, "operation parameter: percent, radius or block size")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "./ggpicture_out", "output directory (manifest location for bucket runs)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = config or NumCPU)")
	batchCmd.Flags().IntVarP(&batchQuality, "quality", "q", 0, "quality 1-100 for lossy formats (0 = config default)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "force output format (default: same as source)")
	batchCmd.Flags().IntVar(&batchMaxWidth, "max-width", 0, "downscale wider sources before transforming (0 = off)")
	batchCmd.Flags().StringVar(&batchBucket, "bucket", "", "upload outputs to this S3/MinIO bucket instead of --out")
	batchCmd.Flags().StringVar(&batchPrefix, "prefix", "", "object key prefix for --bucket")
	_ = batchCmd.MarkFlagRequired("op")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(batchOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = ws.EffectiveWorkers()
	}
	quality := batchQuality
	if quality <= 0 {
		quality = ws.EffectiveQuality()
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("op:      %s(%d), workers=%d, quality=%d", batchOp, batchParam, workers, quality)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var emitter pipeline.Emitter = pipeline.LocalEmitter{Dir: absOutput}
	if batchBucket != "" {
		client, err := storage.NewClient(config.LoadStorage(), batchBucket)
		if err != nil {
			return err
		}
		if err := client.EnsureBucket(cmd.Context()); err != nil {
			return err
		}
		emitter = pipeline.ObjectStoreEmitter{Store: client, Prefix: batchPrefix}
	}

	p, err := pipeline.New(pipeline.Config{
		InputDir: absInput,
		Op:       batchOp,
		Param:    batchParam,
		Workers:  workers,
		Quality:  quality,
		Format:   batchFormat,
		MaxWidth: batchMaxWidth,
		Emitter:  emitter,
		Metrics:  metrics,
		Logger:   logger(),
	})
	if err != nil {
		return err
	}

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBatchReport(m, manifestPath, time.Since(start))
	return nil
}

func printBatchReport(m *manifest.Manifest, manifestPath string, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("  ggpicture batch complete: %s(%d)\n", m.Operation, m.Param)
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Assets:      %d\n", s.TotalAssets)
	if s.TotalFailures > 0 {
		fmt.Printf("  Failed:      %d\n", s.TotalFailures)
	}
	fmt.Printf("  Pixels:      %.1f MP\n", float64(s.TotalPixels)/1e6)
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", m.BuildInfo.Workers)
		if m.BuildInfo.Bucket != "" {
			fmt.Printf("  Bucket:      %s\n", m.BuildInfo.Bucket)
		}
	}
	fmt.Println()

	// Ten largest inputs.
	if len(m.Assets) > 0 {
		type assetSize struct {
			key        string
			inputSize  int64
			outputSize int64
		}
		items := make([]assetSize, 0, len(m.Assets))
		for key, a := range m.Assets {
			items = append(items, assetSize{key, a.Original.Size, a.Output.Size})
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].inputSize != items[j].inputSize {
				return items[i].inputSize > items[j].inputSize
			}
			return items[i].key < items[j].key
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d largest (original → output):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s → %8s\n",
				truncKey(it.key, 40),
				formatBytes(it.inputSize),
				formatBytes(it.outputSize),
			)
		}
		fmt.Println()
	}

	for _, f := range m.Failures {
		fmt.Printf("  ✗ %s [%s]: %s\n", f.Key, f.Kind, f.Error)
	}
	if len(m.Failures) > 0 {
		fmt.Println()
	}

	fmt.Printf("  Manifest:    %s\n", manifestPath)
	fmt.Println()
}

// opsHelp lists every operation with its description and --param meaning.
func opsHelp() string {
	var sb strings.Builder
	for _, name := range transform.Names() {
		op, _ := transform.Lookup(name)
		fmt.Fprintf(&sb, "  %-13s %s", name, op.Description)
		if op.NeedsColor {
			sb.WriteString(" (color images only)")
		}
		sb.WriteByte('\n')
		if op.Param != nil {
			fmt.Fprintf(&sb, "  %-13s --param: %s %s\n", "", op.Param.Name, op.Param.Usage)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
