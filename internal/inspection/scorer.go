package inspection

import (
	"fmt"

	"github.com/lacretech/vistoria/internal/component"
)

// ScoreFrame derives the per-frame weighted score and tri-state status from a
// detector component map. Pure: the input map is copied, never retained.
func ScoreFrame(detections map[string]ComponentDetection, cfg Config) (FrameAnalysis, error) {
	if err := checkCoverage(detections); err != nil {
		return FrameAnalysis{}, err
	}

	components := make(map[string]ComponentDetection, len(detections))
	for name, det := range detections {
		components[name] = det
	}

	score := weightedScore(cfg, func(name string) float64 {
		return components[name].Confidence
	})

	return FrameAnalysis{
		Components:   components,
		OverallScore: score,
		Status:       frameStatus(components, cfg),
	}, nil
}

func frameStatus(components map[string]ComponentDetection, cfg Config) FrameStatus {
	allCritical := true
	confidentlyAbsent := false
	for _, name := range component.CriticalNames() {
		det := components[name]
		if det.Detected {
			continue
		}
		allCritical = false
		if det.Confidence < cfg.LowConfidence {
			confidentlyAbsent = true
		}
	}

	switch {
	case allCritical:
		return FrameApproved
	case confidentlyAbsent:
		return FrameRejected
	default:
		return FrameReview
	}
}

// weightedScore computes the critical/optional-weighted mean of per-component
// confidences, iterating in registry order so the result is deterministic.
func weightedScore(cfg Config, confidence func(name string) float64) float64 {
	var sum, totalWeight float64
	for _, spec := range component.Specs() {
		w := cfg.OptionalWeight
		if spec.Critical {
			w = cfg.CriticalWeight
		}
		sum += confidence(spec.Name) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

// checkCoverage verifies the map carries exactly the registry key set.
func checkCoverage(detections map[string]ComponentDetection) error {
	for _, name := range component.Names() {
		if _, ok := detections[name]; !ok {
			return fmt.Errorf("%w: missing component %q", ErrMalformedInput, name)
		}
	}
	if len(detections) != component.Count() {
		for name := range detections {
			if _, ok := component.Lookup(name); !ok {
				return fmt.Errorf("%w: unknown component %q", ErrMalformedInput, name)
			}
		}
	}
	return nil
}
