package report

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// ChartStyle sizes the survival chart
type ChartStyle struct {
	Width   int
	Height  int
	Padding float64
}

// DefaultChartStyle is used by the report writer
var DefaultChartStyle = ChartStyle{Width: 640, Height: 360, Padding: 40}

// WriteCurveChart renders a survival curve as PNG. The x axis is the spin
// count, the y axis the survival rate from 0 to 1.
func WriteCurveChart(w io.Writer, title string, curve []float64, style ChartStyle) error {
	if len(curve) == 0 {
		return fmt.Errorf("empty survival curve")
	}

	dc := gg.NewContext(style.Width, style.Height)
	dc.SetRGB(0.05, 0.05, 0.1)
	dc.Clear()

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	left, top := style.Padding, style.Padding
	right := float64(style.Width) - style.Padding/2
	bottom := float64(style.Height) - style.Padding
	plotW, plotH := right-left, bottom-top

	// grid at quarters
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		y := bottom - plotH*float64(i)/4
		dc.SetRGBA(0.6, 0.6, 0.7, 0.3)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
		dc.SetRGB(0.85, 0.85, 0.9)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", float64(i)/4), left-4, y, 1, 0.5)
	}

	dc.SetRGB(0.85, 0.85, 0.9)
	dc.DrawStringAnchored("1", left, bottom+14, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%d", len(curve)), right, bottom+14, 0.5, 0.5)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(title, float64(style.Width)/2, top/2, 0.5, 0.5)

	dc.SetRGB(0.4, 1.0, 0.4)
	dc.SetLineWidth(2)
	for i, v := range curve {
		x := left
		if len(curve) > 1 {
			x += plotW * float64(i) / float64(len(curve)-1)
		}
		y := bottom - plotH*v
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	return dc.EncodePNG(w)
}

func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
