package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AnyUserName/ggpicture/internal/codec"
	"github.com/AnyUserName/ggpicture/internal/raster"
	"github.com/AnyUserName/ggpicture/internal/telemetry"
	"github.com/AnyUserName/ggpicture/internal/transform"
)

// runTransform decodes file (resolved against the working directory),
// applies op and writes the result to the output path.
func runTransform(cmd *cobra.Command, opName string, param int, file string) (err error) {
	op, err := transform.Resolve(opName)
	if err != nil {
		return err
	}
	if err := op.CheckParam(param); err != nil {
		return err
	}

	ws, err := loadWorkspace()
	if err != nil {
		return err
	}
	input := ws.Resolve(file)
	output := outputPath
	if output == "" {
		if output, err = ws.OutputPath(); err != nil {
			return err
		}
	}

	_, span := telemetry.Start(cmd.Context(), op.Name,
		attribute.String("ggpicture.input", input),
		attribute.String("ggpicture.output", output),
		attribute.Int("ggpicture.param", param),
	)
	defer func() { telemetry.End(span, err) }()
	logVerbose("input:  %s", input)
	logVerbose("output: %s", output)

	buf, format, err := codec.Decode(input)
	if err != nil {
		return fmt.Errorf("could not load the image: %w", err)
	}
	logVerbose("decoded %s %s", format, buf)

	start := time.Now()
	out, err := op.Apply(buf, param)
	metrics.ObserveTransform(op.Name, time.Since(start), buf.Width*buf.Height, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op.Name, err)
	}
	logVerbose("%s took %s", op.Name, time.Since(start).Round(time.Microsecond))

	if err := codec.Encode(out, output, ws.EffectiveQuality()); err != nil {
		return fmt.Errorf("could not save the image to %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s image saved to %s\n", op.Verb, output)
	return nil
}

var (
	rotateRight bool
	rotateLeft  bool
	rotateFlip  bool
)

var rotateCmd = &cobra.Command{
	Use:   "rotate (-r | -l | -f) <file>",
	Short: "Rotate the image right, left, or flip it 180°",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := "rotate-right"
		switch {
		case rotateLeft:
			op = "rotate-left"
		case rotateFlip:
			op = "flip"
		}
		return runTransform(cmd, op, 0, args[0])
	},
}

var bwCmd = &cobra.Command{
	Use:     "bw <file>",
	Aliases: []string{"makebw", "grayscale"},
	Short:   "Convert the image to black and white",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, "grayscale", 0, args[0])
	},
}

var vintageCmd = &cobra.Command{
	Use:     "vintage <file>",
	Aliases: []string{"makevintage"},
	Short:   "Apply a sepia vintage filter",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, "vintage", 0, args[0])
	},
}

// percentCommand builds brightness/contrast/saturation. The percentage is
// given with -p, or positionally after "--" so a leading minus is not
// taken for a flag: ggpicture brightness -- -20 in.bmp
func percentCommand(use, op string, aliases []string, short string) *cobra.Command {
	var percent int
	c := &cobra.Command{
		Use:     use + " [-p percent | -- percent] <file>",
		Aliases: aliases,
		Short:   short,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[len(args)-1]
			if len(args) == 2 {
				if cmd.Flags().Changed("percent") {
					return fmt.Errorf("%w: percentage given twice", raster.ErrInvalidParameter)
				}
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("%w: percentage %q is not an integer", raster.ErrInvalidParameter, args[0])
				}
				percent = v
			}
			return runTransform(cmd, op, percent, file)
		},
	}
	c.Flags().IntVarP(&percent, "percent", "p", 0, "adjustment in percent, negative to decrease")
	return c
}

func sizeCommand(use, op string, aliases []string, short, what string) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <" + what + "> <file>",
		Aliases: aliases,
		Short:   short,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: %s must be a positive integer, got %q", raster.ErrInvalidParameter, what, args[0])
			}
			return runTransform(cmd, op, n, args[1])
		},
	}
}

func init() {
	rotateCmd.Flags().BoolVarP(&rotateRight, "right", "r", false, "rotate 90° clockwise")
	rotateCmd.Flags().BoolVarP(&rotateLeft, "left", "l", false, "rotate 90° counter-clockwise")
	rotateCmd.Flags().BoolVarP(&rotateFlip, "flip", "f", false, "rotate 180°")
	rotateCmd.MarkFlagsMutuallyExclusive("right", "left", "flip")
	rotateCmd.MarkFlagsOneRequired("right", "left", "flip")

	rootCmd.AddCommand(
		rotateCmd,
		bwCmd,
		vintageCmd,
		percentCommand("brightness", "brightness", []string{"setbright"}, "Adjust brightness by a percentage"),
		percentCommand("contrast", "contrast", []string{"setcontr"}, "Adjust contrast by a percentage"),
		percentCommand("saturation", "saturation", []string{"setsatur"}, "Adjust saturation by a percentage"),
		sizeCommand("pixelate", "pixelate", []string{"makepixel"}, "Pixelate the image with square blocks", "size"),
		sizeCommand("blur", "blur", nil, "Apply a Gaussian blur", "radius"),
	)
}
