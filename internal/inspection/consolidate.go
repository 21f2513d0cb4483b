package inspection

import (
	"fmt"
	"sort"

	"github.com/lacretech/vistoria/internal/component"
)

// Consolidate aggregates per-frame analyses into one statistic per component.
// Pure aggregation: the result depends only on the set of frames, not their
// order, and the inputs are never mutated.
func Consolidate(frames []FrameAnalysis, cfg Config) (map[string]ComponentConsolidated, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyRun
	}
	for i, frame := range frames {
		if err := checkCoverage(frame.Components); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
	}

	total := len(frames)
	out := make(map[string]ComponentConsolidated, component.Count())

	for _, spec := range component.Specs() {
		detected := 0
		confidences := make([]float64, 0, total)
		for _, frame := range frames {
			det := frame.Components[spec.Name]
			if det.Detected {
				detected++
			}
			confidences = append(confidences, det.Confidence)
		}

		// Float addition is not associative; summing in sorted order keeps the
		// average bit-identical under any frame permutation.
		sort.Float64s(confidences)
		var confidenceSum float64
		for _, c := range confidences {
			confidenceSum += c
		}

		rate := float64(detected) / float64(total)
		status := NotDetected
		if rate >= cfg.DetectionRate {
			status = Detected
		}

		out[spec.Name] = ComponentConsolidated{
			ComponentName:     spec.Name,
			Critical:          spec.Critical,
			DetectedInFrames:  detected,
			TotalFrames:       total,
			DetectionRate:     rate,
			AverageConfidence: confidenceSum / float64(total),
			FinalStatus:       status,
		}
	}

	return out, nil
}

// OverallScore computes the run-level score for a sequence of frames: the same
// critical/optional-weighted mean as the per-frame score, applied to each
// component's cross-frame average confidence.
func OverallScore(frames []FrameAnalysis, cfg Config) (float64, error) {
	consolidated, err := Consolidate(frames, cfg)
	if err != nil {
		return 0, err
	}
	return ConsolidatedScore(consolidated, cfg), nil
}

// ConsolidatedScore computes the run-level weighted score from an already
// consolidated component map.
func ConsolidatedScore(consolidated map[string]ComponentConsolidated, cfg Config) float64 {
	return weightedScore(cfg, func(name string) float64 {
		return consolidated[name].AverageConfidence
	})
}
