package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setDirCmd = &cobra.Command{
	Use:     "set-dir <directory>",
	Aliases: []string{"set_dir"},
	Short:   "Set the working directory for input and output files",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		if err := ws.SetWorkingDir(args[0]); err != nil {
			return err
		}
		if err := ws.Save(statePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Working directory set to: %s\n", ws.WorkingDir)
		return nil
	},
}

var setOutputCmd = &cobra.Command{
	Use:     "set-output <filename>",
	Aliases: []string{"set_output"},
	Short:   "Set the output file name, relative to the working directory",
	Long: `Set the output file name, relative to the working directory.
The extension picks the encoder: bmp, png, jpg, gif, tiff, and webp/avif
when cwebp/avifenc are installed. Without an extension BMP is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		if err := ws.SetOutput(args[0]); err != nil {
			return err
		}
		if err := ws.Save(statePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Output destination set to: %s\n", ws.OutputFile)
		return nil
	},
}

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Print the current workspace settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  State file:        %s\n", statePath)
		fmt.Fprintf(out, "  Working directory: %s\n", orUnset(ws.WorkingDir))
		if p, err := ws.OutputPath(); err == nil {
			fmt.Fprintf(out, "  Output file:       %s\n", p)
		} else {
			fmt.Fprintf(out, "  Output file:       (unset)\n")
		}
		fmt.Fprintf(out, "  Quality:           %d\n", ws.EffectiveQuality())
		fmt.Fprintf(out, "  Workers:           %d\n", ws.EffectiveWorkers())
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(setDirCmd, setOutputCmd, showConfigCmd)
}
