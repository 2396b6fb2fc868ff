package render

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
)

func loadLabelFont() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// labelFace returns a Go Regular face sized so that text is TextHeight
// units tall at the given scale.
func labelFace(scale float64) (font.Face, error) {
	f, err := loadLabelFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TextHeight * scale * 0.8,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func encodePNG(d *Drawing, v viewport) ([]byte, error) {
	face, err := labelFace(v.scale)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dc := gg.NewContext(max(v.width, 1), max(v.height, 1))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetLineWidth(max(1, v.scale/20))
	dc.SetLineCapRound()

	for _, l := range d.Lines {
		x1, y1 := v.px(l.From)
		x2, y2 := v.px(l.To)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	for _, c := range d.Circles {
		x, y := v.px(c.Center)
		dc.DrawCircle(x, y, c.Radius*v.scale)
		if c.Filled {
			dc.Fill()
			continue
		}
		// Open circles hide the line underneath.
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(color.Black)
		dc.Stroke()
	}

	dc.SetFontFace(face)
	for _, t := range d.Texts {
		x, y := v.px(t.At)
		dc.DrawStringAnchored(t.Value, x, y, textAnchor(t.Align), 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func textAnchor(a Align) float64 {
	switch a {
	case AlignLeft:
		return 0
	case AlignRight:
		return 1
	}
	return 0.5
}
