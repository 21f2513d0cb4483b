package inspection

import (
	"fmt"
	"log/slog"

	"github.com/lacretech/vistoria/internal/component"
)

// decisionRule is one entry of the ordered decision table. Rules are evaluated
// top to bottom and the first match wins.
type decisionRule struct {
	name    string
	matches func(consolidated map[string]ComponentConsolidated, overallScore float64, cfg Config) bool
	outcome Decision
}

var decisionRules = []decisionRule{
	// A critical component never seen in any frame is a hard failure and
	// overrides everything else, including a good aggregate score.
	{
		name:    "critical_never_seen",
		outcome: DecisionReject,
		matches: func(consolidated map[string]ComponentConsolidated, _ float64, _ Config) bool {
			for _, name := range component.CriticalNames() {
				c := consolidated[name]
				if c.FinalStatus == NotDetected && c.DetectionRate == 0 {
					return true
				}
			}
			return false
		},
	},
	{
		name:    "all_critical_detected_above_threshold",
		outcome: DecisionRelease,
		matches: func(consolidated map[string]ComponentConsolidated, overallScore float64, cfg Config) bool {
			for _, name := range component.CriticalNames() {
				if consolidated[name].FinalStatus != Detected {
					return false
				}
			}
			return overallScore >= cfg.Approval
		},
	},
}

// Decide maps consolidated statistics to the final disposition. The fallback
// for partial or borderline evidence is REVISAR_EQUIPAMENTO. Missing critical
// coverage is a fatal ErrInvalidInput: no release decision without evidence.
func Decide(consolidated map[string]ComponentConsolidated, overallScore float64, cfg Config) (Decision, error) {
	for _, name := range component.CriticalNames() {
		if _, ok := consolidated[name]; !ok {
			return "", fmt.Errorf("%w: missing critical component %q", ErrInvalidInput, name)
		}
	}

	for _, rule := range decisionRules {
		if rule.matches(consolidated, overallScore, cfg) {
			slog.Debug("decision rule matched", "rule", rule.name, "decision", rule.outcome)
			return rule.outcome, nil
		}
	}
	slog.Debug("no decision rule matched, defaulting to review")
	return DecisionReview, nil
}

// NewChecklist runs consolidation and the decision policy over a completed set
// of frame analyses and assembles the immutable checklist for the run.
func NewChecklist(frames []FrameAnalysis, info Info, cfg Config) (*ConsolidatedChecklist, error) {
	consolidated, err := Consolidate(frames, cfg)
	if err != nil {
		return nil, err
	}

	score := ConsolidatedScore(consolidated, cfg)
	decision, err := Decide(consolidated, score, cfg)
	if err != nil {
		return nil, err
	}

	info.TotalFrames = len(frames)
	return &ConsolidatedChecklist{
		InspectionInfo:     info,
		ComponentsAnalysis: consolidated,
		Summary: Summary{
			OverallScore:  score,
			FinalDecision: decision,
		},
	}, nil
}
