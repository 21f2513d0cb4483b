package report

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

func grayFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func analysisWithBox(t *testing.T, name string, box *inspection.BoundingBox, detected bool) inspection.FrameAnalysis {
	t.Helper()
	dets := make(map[string]inspection.ComponentDetection, component.Count())
	for _, spec := range component.Specs() {
		dets[spec.Name] = inspection.ComponentDetection{
			Detected:   true,
			Confidence: 0.9,
			Critical:   spec.Critical,
		}
	}
	dets[name] = inspection.ComponentDetection{
		Detected:   detected,
		Confidence: 0.9,
		Critical:   dets[name].Critical,
		Box:        box,
	}
	analysis, err := inspection.ScoreFrame(dets, inspection.DefaultConfig())
	require.NoError(t, err)
	return analysis
}

func TestAnnotateDrawsBorder(t *testing.T) {
	frame := grayFrame(200, 200)
	analysis := analysisWithBox(t, "cameras", &inspection.BoundingBox{X: 50, Y: 50, Width: 80, Height: 60}, true)

	out := Annotate(frame, analysis)
	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)

	// Top-left border pixel carries the detected-critical green.
	require.Equal(t, colorDetectedCritical, rgba.RGBAAt(50, 50))
	// Center of the box is untouched.
	require.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, rgba.RGBAAt(90, 80))
}

func TestAnnotateDoesNotMutateInput(t *testing.T) {
	frame := grayFrame(100, 100)
	analysis := analysisWithBox(t, "cameras", &inspection.BoundingBox{X: 10, Y: 10, Width: 40, Height: 40}, true)

	_ = Annotate(frame, analysis)
	require.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, frame.RGBAAt(10, 10))
}

func TestAnnotateMissColor(t *testing.T) {
	frame := grayFrame(100, 100)
	analysis := analysisWithBox(t, "cameras", &inspection.BoundingBox{X: 20, Y: 20, Width: 30, Height: 30}, false)

	out := Annotate(frame, analysis).(*image.RGBA)
	require.Equal(t, colorNotDetected, out.RGBAAt(20, 20))
}

func TestAnnotateSkipsWithoutBox(t *testing.T) {
	frame := grayFrame(100, 100)
	analysis := analysisWithBox(t, "cameras", nil, true)

	out := Annotate(frame, analysis).(*image.RGBA)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			require.Equal(t, frame.RGBAAt(x, y), out.RGBAAt(x, y))
		}
	}
}

func TestAnnotateClampsOutOfBoundsBox(t *testing.T) {
	frame := grayFrame(100, 100)
	analysis := analysisWithBox(t, "cameras", &inspection.BoundingBox{X: 80, Y: 80, Width: 200, Height: 200}, true)

	// Must not panic and must stay within the frame.
	out := Annotate(frame, analysis)
	require.Equal(t, frame.Bounds(), out.Bounds())
}
