package render

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/circuitdraw/pkg/errors"
	"github.com/matzehuels/circuitdraw/pkg/netlist"
	"github.com/matzehuels/circuitdraw/pkg/schematic"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// FormatFromPath picks the encoder from the file extension. A path without
// an extension renders as PNG.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported output format %q", ext)
	}
}

// Defaults applied by [New] to zero Config fields.
const (
	DefaultUnitScale = 40.0 // pixels per schematic unit
	DefaultMargin    = 1.0  // schematic units around the drawing
)

// Config is the immutable rendering configuration.
type Config struct {
	OutputPath string  // destination used by [Renderer.Render]
	UnitScale  float64 // pixels per schematic unit
	Margin     float64 // blank border, in schematic units
	Headless   bool    // must be true; there is no interactive display
}

// Renderer draws netlists to files. It holds no state besides its Config
// and is safe for concurrent use.
type Renderer struct {
	cfg Config
}

// New validates cfg and returns a renderer.
func New(cfg Config) (*Renderer, error) {
	if !cfg.Headless {
		return nil, errors.New(errors.ErrCodeUnsupported, "interactive display is not supported; set Headless")
	}
	if cfg.UnitScale < 0 || cfg.Margin < 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unit scale and margin must not be negative")
	}
	if cfg.UnitScale == 0 {
		cfg.UnitScale = DefaultUnitScale
	}
	if cfg.Margin == 0 {
		cfg.Margin = DefaultMargin
	}
	return &Renderer{cfg: cfg}, nil
}

// Config returns the renderer's configuration with defaults applied.
func (r *Renderer) Config() Config { return r.cfg }

// Render draws nl to the configured OutputPath.
func (r *Renderer) Render(nl *netlist.Netlist) (string, error) {
	if r.cfg.OutputPath == "" {
		return "", errors.New(errors.ErrCodeInvalidPath, "no output path configured")
	}
	return r.RenderTo(nl, r.cfg.OutputPath)
}

// RenderTo draws nl to path and returns path. Parent directories are
// created. On error no file is left at path.
func (r *Renderer) RenderTo(nl *netlist.Netlist, path string) (string, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	data, err := r.Encode(Draw(schematic.Build(nl)), format)
	if err != nil {
		return "", err
	}
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes encoded output to path through a temp file in the same
// directory. Parent directories are created. On error no file is left at path.
func WriteFile(path string, data []byte) error {
	if err := writeFileAtomic(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "write %s", path)
	}
	return nil
}

// Encode serializes a drawing in the given format.
func (r *Renderer) Encode(d *Drawing, format Format) ([]byte, error) {
	v := newViewport(d, r.cfg.UnitScale, r.cfg.Margin)
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPNG:
		data, err = encodePNG(d, v)
	case FormatSVG:
		data = encodeSVG(d, v)
	case FormatPDF:
		data, err = ToPDF(encodeSVG(d, v))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported output format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "encode %s", format)
	}
	return data, nil
}

// viewport maps schematic units (y up) onto pixels (y down).
type viewport struct {
	scale         float64
	minX, maxY    float64
	width, height int
}

func newViewport(d *Drawing, scale, margin float64) viewport {
	b := d.Bounds()
	b = schematic.Box{X0: b.X0 - margin, Y0: b.Y0 - margin, X1: b.X1 + margin, Y1: b.Y1 + margin}
	return viewport{
		scale:  scale,
		minX:   b.X0,
		maxY:   b.Y1,
		width:  int(b.Width()*scale + 0.5),
		height: int(b.Height()*scale + 0.5),
	}
}

func (v viewport) px(p schematic.Point) (float64, float64) {
	return (p.X - v.minX) * v.scale, (v.maxY - p.Y) * v.scale
}
