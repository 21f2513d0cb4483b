package report

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

const borderThickness = 3

// Box colors follow the checklist UI palette: green for a detected critical
// component, amber for a detected optional one, red for a miss.
var (
	colorDetectedCritical = color.RGBA{R: 40, G: 167, B: 69, A: 255}
	colorDetectedOptional = color.RGBA{R: 255, G: 193, B: 7, A: 255}
	colorNotDetected      = color.RGBA{R: 220, G: 53, B: 69, A: 255}
)

// Annotate returns a copy of the frame with one labeled rectangle per
// component the detector reported with a bounding region. The input frame is
// never modified.
func Annotate(frame image.Image, analysis inspection.FrameAnalysis) image.Image {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	for _, spec := range component.Specs() {
		det := analysis.Components[spec.Name]
		if det.Box == nil {
			continue
		}

		c := boxColor(spec, det)
		rect := image.Rect(det.Box.X, det.Box.Y, det.Box.X+det.Box.Width, det.Box.Y+det.Box.Height).
			Add(bounds.Min).
			Intersect(bounds)
		if rect.Empty() {
			continue
		}

		drawBorder(out, rect, c)
		drawLabel(out, rect, spec.Display, c)
	}

	return out
}

func boxColor(spec component.Spec, det inspection.ComponentDetection) color.RGBA {
	switch {
	case det.Detected && spec.Critical:
		return colorDetectedCritical
	case det.Detected:
		return colorDetectedOptional
	default:
		return colorNotDetected
	}
}

func drawBorder(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	fill := image.NewUniform(c)
	t := borderThickness
	// top, bottom, left, right
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t).Intersect(rect), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y).Intersect(rect), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y).Intersect(rect), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y).Intersect(rect), fill, image.Point{}, draw.Src)
}

func drawLabel(img *image.RGBA, rect image.Rectangle, label string, c color.RGBA) {
	face := basicfont.Face7x13
	y := rect.Min.Y - 4
	if y-face.Ascent < img.Bounds().Min.Y {
		// No room above the box, write inside it.
		y = rect.Min.Y + face.Ascent + borderThickness + 2
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(rect.Min.X, y),
	}
	d.DrawString(label)
}
