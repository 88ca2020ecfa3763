package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/ggpicture/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a batch output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	m, err := manifest.ReadJSON(args[0])
	if err != nil {
		return err
	}
	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Operation:        %s(%d)\n", m.Operation, m.Param)
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Printf("  Quality:          %d\n", m.BuildInfo.Quality)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total assets:     %d\n", s.TotalAssets)
	fmt.Printf("  Failures:         %d\n", s.TotalFailures)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Size ratio:       %.1f%% of original\n", ratio)
	}
	fmt.Println()

	type bucket struct {
		count int
		bytes int64
	}
	formats := map[string]bucket{}
	channels := map[int]int{}
	for _, a := range m.Assets {
		b := formats[a.Output.Format]
		b.count++
		b.bytes += a.Output.Size
		formats[a.Output.Format] = b
		channels[a.Original.Channels]++
	}

	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, f)
	}
	sort.Strings(names)
	fmt.Println("  Format breakdown:")
	for _, f := range names {
		fmt.Printf("    %-6s  %4d files  %s\n", f, formats[f].count, formatBytes(formats[f].bytes))
	}
	fmt.Println()

	fmt.Println("  Source channels:")
	for c := 1; c <= 4; c++ {
		if n, ok := channels[c]; ok {
			fmt.Printf("    %d  %4d images\n", c, n)
		}
	}

	kinds := map[string]int{}
	for _, f := range m.Failures {
		kinds[f.Kind]++
	}
	if len(kinds) > 0 {
		fmt.Println()
		fmt.Printf("  Failures by kind:\n")
		for _, k := range []string{"decode", "allocation", "unsupported-channels", "encode", "invalid-input", "unknown"} {
			if n := kinds[k]; n > 0 {
				fmt.Printf("    %-22s %d\n", k, n)
			}
		}
	}
	fmt.Println()
}
