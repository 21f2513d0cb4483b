package detector

import (
	"context"
	"image"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

// Fake is a deterministic detector for tests and dry runs: it returns the same
// configured map for every frame.
type Fake struct {
	Detections map[string]inspection.ComponentDetection
	Err        error
}

// NewFake returns a fake that detects every component at the given confidence.
func NewFake(confidence float64) *Fake {
	detections := make(map[string]inspection.ComponentDetection, component.Count())
	for _, spec := range component.Specs() {
		detections[spec.Name] = inspection.ComponentDetection{
			Detected:   true,
			Confidence: confidence,
			Details:    "componente presente",
			Critical:   spec.Critical,
		}
	}
	return &Fake{Detections: detections}
}

// Set overrides the detection returned for one component.
func (f *Fake) Set(name string, det inspection.ComponentDetection) {
	if spec, ok := component.Lookup(name); ok {
		det.Critical = spec.Critical
	}
	f.Detections[name] = det
}

// Detect returns a copy of the configured map, or the configured error.
func (f *Fake) Detect(ctx context.Context, frame image.Image) (map[string]inspection.ComponentDetection, error) {
	_ = ctx
	_ = frame
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]inspection.ComponentDetection, len(f.Detections))
	for name, det := range f.Detections {
		out[name] = det
	}
	return out, nil
}

var _ FrameDetector = (*Fake)(nil)
