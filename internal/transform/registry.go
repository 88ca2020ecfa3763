package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AnyUserName/ggpicture/internal/raster"
)

// Param describes the single integer argument an operation takes.
type Param struct {
	Name   string
	Min    int // inclusive lower bound, checked when HasMin is set
	HasMin bool
	Usage  string
}

// Op is one dispatchable transform.
type Op struct {
	Name        string
	Description string
	Param       *Param // nil when the operation takes no argument
	NeedsColor  bool   // requires at least three channels
	// Verb is used in "<Verb> image saved to <path>" messages.
	Verb string

	fn func(src *raster.Buffer, param int) (*raster.Buffer, error)
}

// CheckParam reports ErrInvalidParameter when param is below the
// operation's minimum.
func (o Op) CheckParam(param int) error {
	if o.Param != nil && o.Param.HasMin && param < o.Param.Min {
		return fmt.Errorf("%w: %s %s must be >= %d, got %d",
			raster.ErrInvalidParameter, o.Name, o.Param.Name, o.Param.Min, param)
	}
	return nil
}

// Apply runs the operation. param is ignored by operations without one.
func (o Op) Apply(src *raster.Buffer, param int) (*raster.Buffer, error) {
	if err := o.CheckParam(param); err != nil {
		return nil, err
	}
	return o.fn(src, param)
}

func percentParam() *Param {
	return &Param{Name: "percent", Usage: "adjustment in percent, may be negative"}
}

func noParam(fn func(*raster.Buffer) (*raster.Buffer, error)) func(*raster.Buffer, int) (*raster.Buffer, error) {
	return func(src *raster.Buffer, _ int) (*raster.Buffer, error) { return fn(src) }
}

// Built-in operations.
var ops = map[string]Op{
	"rotate-right": {
		Name: "rotate-right", Description: "Rotate 90° clockwise", Verb: "Rotated",
		fn: noParam(RotateRight),
	},
	"rotate-left": {
		Name: "rotate-left", Description: "Rotate 90° counter-clockwise", Verb: "Rotated",
		fn: noParam(RotateLeft),
	},
	"flip": {
		Name: "flip", Description: "Rotate 180°", Verb: "Rotated",
		fn: noParam(Flip),
	},
	"brightness": {
		Name: "brightness", Description: "Scale every byte by a percentage", Verb: "Brightness-adjusted",
		Param: percentParam(), fn: Brightness,
	},
	"contrast": {
		Name: "contrast", Description: "Stretch bytes around the midpoint by a percentage", Verb: "Contrast-adjusted",
		Param: percentParam(), fn: Contrast,
	},
	"saturation": {
		Name: "saturation", Description: "Scale HSL saturation by a percentage", Verb: "Saturation-adjusted",
		Param: percentParam(), NeedsColor: true, fn: Saturation,
	},
	"grayscale": {
		Name: "grayscale", Description: "Convert to black and white", Verb: "Black-and-white",
		NeedsColor: true, fn: noParam(Grayscale),
	},
	"vintage": {
		Name: "vintage", Description: "Apply the sepia matrix", Verb: "Vintage",
		NeedsColor: true, fn: noParam(Vintage),
	},
	"blur": {
		Name: "blur", Description: "Separable Gaussian blur", Verb: "Blurred",
		Param:      &Param{Name: "radius", Min: 1, HasMin: true, Usage: "kernel radius in pixels"},
		NeedsColor: true, fn: Blur,
	},
	"pixelate": {
		Name: "pixelate", Description: "Average pixel blocks, cropping to a multiple of the block size", Verb: "Pixelated",
		Param: &Param{Name: "size", Min: 1, HasMin: true, Usage: "block edge in pixels"},
		fn:    Pixelate,
	},
}

// aliases maps the original command-line spellings to operation names.
var aliases = map[string]string{
	"bw":     "grayscale",
	"makebw": "grayscale",
	"right":  "rotate-right",
	"left":   "rotate-left",
	"pixel":  "pixelate",
}

// Lookup returns the operation registered under name or one of its aliases.
func Lookup(name string) (Op, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	op, ok := ops[name]
	return op, ok
}

// Names returns all operation names, sorted.
func Names() []string {
	names := make([]string, 0, len(ops))
	for n := range ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve is Lookup with an ErrInvalidParameter error for unknown names.
func Resolve(name string) (Op, error) {
	op, ok := Lookup(name)
	if !ok {
		return Op{}, fmt.Errorf("%w: unknown operation %q (available: %s)",
			raster.ErrInvalidParameter, name, strings.Join(Names(), ", "))
	}
	return op, nil
}

// Apply looks up name and runs it on src.
func Apply(name string, src *raster.Buffer, param int) (*raster.Buffer, error) {
	op, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return op.Apply(src, param)
}
