package detector

import (
	"context"
	"fmt"
	"image"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/inspection"
)

// FrameDetector is the visual-detection oracle. Detect must return one entry
// per registered component for every well-formed frame; on failure it returns
// a *DetectionError, never a partial map.
type FrameDetector interface {
	Detect(ctx context.Context, frame image.Image) (map[string]inspection.ComponentDetection, error)
}

// DetectionError reports that the oracle could not analyze a frame.
type DetectionError struct {
	Reason string
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("frame detection failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("frame detection failed: %s", e.Reason)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// NotDetectedMap returns a full-coverage map with every component undetected
// at confidence zero. Used when the host opts in to keep going past a failed
// frame.
func NotDetectedMap(details string) map[string]inspection.ComponentDetection {
	out := make(map[string]inspection.ComponentDetection, component.Count())
	for _, spec := range component.Specs() {
		out[spec.Name] = inspection.ComponentDetection{
			Detected:   false,
			Confidence: 0,
			Details:    details,
			Critical:   spec.Critical,
		}
	}
	return out
}
