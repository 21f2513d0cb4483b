package detector

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

// objectLabels maps Cloud Vision object-localization names (lowercased) to
// registry component names.
var objectLabels = map[string]string{
	"label":       "etiqueta_visivel",
	"sticker":     "etiqueta_visivel",
	"lid":         "tampa_encaixada",
	"cover":       "tampa_encaixada",
	"screw":       "parafusos_presentes",
	"bolt":        "parafusos_presentes",
	"plug":        "conectores_instalados",
	"connector":   "conectores_instalados",
	"camera":      "cameras",
	"camera lens": "cameras",
	"cable":       "cabeamento",
	"wire":        "cabeamento",
	"bracket":     "suportes",
	"shelf":       "suportes",
}

// GCV detects equipment components through the Cloud Vision object
// localization API. The client is reused across frames; the caller owns its
// lifecycle via Close.
type GCV struct {
	client *vision.ImageAnnotatorClient
}

// NewGCV creates a detector backed by Cloud Vision. Credentials come from the
// environment (GOOGLE_APPLICATION_CREDENTIALS), as for any Google client.
func NewGCV(ctx context.Context) (*GCV, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &GCV{client: client}, nil
}

// Close releases the underlying API client.
func (d *GCV) Close() error {
	return d.client.Close()
}

// Detect localizes objects in the frame and maps them onto the component
// registry. Components without a matching object come back undetected at
// confidence zero, so the map always covers the full registry.
func (d *GCV) Detect(ctx context.Context, frame image.Image) (map[string]inspection.ComponentDetection, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 90}); err != nil {
		return nil, &DetectionError{Reason: "frame encoding", Err: err}
	}

	img, err := vision.NewImageFromReader(&buf)
	if err != nil {
		return nil, &DetectionError{Reason: "frame upload", Err: err}
	}

	annotations, err := d.client.LocalizeObjects(ctx, img, nil)
	if err != nil {
		return nil, &DetectionError{Reason: "object localization", Err: err}
	}

	out := NotDetectedMap("não detectado neste frame")
	bounds := frame.Bounds()

	for _, ann := range annotations {
		name, ok := objectLabels[strings.ToLower(ann.Name)]
		if !ok {
			continue
		}
		confidence := float64(ann.Score)
		if prev := out[name]; prev.Detected && prev.Confidence >= confidence {
			continue
		}

		spec, _ := component.Lookup(name)
		out[name] = inspection.ComponentDetection{
			Detected:   true,
			Confidence: confidence,
			Details:    fmt.Sprintf("objeto %q localizado (%.0f%%)", ann.Name, confidence*100),
			Critical:   spec.Critical,
			Box:        boxFromPoly(ann.BoundingPoly, bounds),
		}
	}

	return out, nil
}

// boxFromPoly converts normalized polygon vertices into a pixel bounding box.
func boxFromPoly(poly *visionpb.BoundingPoly, bounds image.Rectangle) *inspection.BoundingBox {
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return nil
	}

	minX, minY := 1.0, 1.0
	maxX, maxY := 0.0, 0.0
	for _, v := range poly.NormalizedVertices {
		x, y := float64(v.X), float64(v.Y)
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}

	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return &inspection.BoundingBox{
		X:      int(minX * w),
		Y:      int(minY * h),
		Width:  int((maxX - minX) * w),
		Height: int((maxY - minY) * h),
	}
}

var _ FrameDetector = (*GCV)(nil)
