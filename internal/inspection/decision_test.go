package inspection

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// makeFrames builds n scored frames, letting the caller tweak each raw
// detection map before scoring.
func makeFrames(t *testing.T, n int, mutate func(i int, dets map[string]ComponentDetection)) []FrameAnalysis {
	t.Helper()
	cfg := DefaultConfig()
	frames := make([]FrameAnalysis, n)
	for i := range frames {
		dets := fullDetections(true, 0.9)
		if mutate != nil {
			mutate(i, dets)
		}
		analysis, err := ScoreFrame(dets, cfg)
		require.NoError(t, err)
		frames[i] = analysis
	}
	return frames
}

func decideFrames(t *testing.T, frames []FrameAnalysis) (Decision, float64) {
	t.Helper()
	cfg := DefaultConfig()
	consolidated, err := Consolidate(frames, cfg)
	require.NoError(t, err)
	score := ConsolidatedScore(consolidated, cfg)
	decision, err := Decide(consolidated, score, cfg)
	require.NoError(t, err)
	return decision, score
}

func TestDecideReleaseWithIntermittentDetection(t *testing.T) {
	// Screws visible in 6 of 10 frames at 0.9, fully missed in the rest.
	frames := makeFrames(t, 10, func(i int, dets map[string]ComponentDetection) {
		if i >= 6 {
			dets["parafusos_presentes"] = ComponentDetection{Detected: false, Confidence: 0.0, Critical: true}
		}
	})

	decision, score := decideFrames(t, frames)
	require.Equal(t, DecisionRelease, decision)
	require.GreaterOrEqual(t, score, DefaultConfig().Approval)
}

func TestDecideRejectWhenCriticalNeverSeen(t *testing.T) {
	// Connectors absent from every frame. Everything else is perfect, and the
	// reject rule still has to win.
	frames := makeFrames(t, 10, func(i int, dets map[string]ComponentDetection) {
		dets["conectores_instalados"] = ComponentDetection{Detected: false, Confidence: 0.0, Critical: true}
	})

	decision, _ := decideFrames(t, frames)
	require.Equal(t, DecisionReject, decision)
}

func TestDecideReviewOnPartialEvidence(t *testing.T) {
	// Cover seen in only 4 of 10 frames at low confidence: not absent, not
	// reliably present either.
	frames := makeFrames(t, 10, func(i int, dets map[string]ComponentDetection) {
		det := ComponentDetection{Detected: i < 4, Confidence: 0.4, Critical: true}
		dets["tampa_encaixada"] = det
	})

	decision, _ := decideFrames(t, frames)
	require.Equal(t, DecisionReview, decision)
}

func TestDecideReviewWhenScoreBelowApproval(t *testing.T) {
	// Every component detected in every frame, but at weak confidence.
	frames := makeFrames(t, 5, func(i int, dets map[string]ComponentDetection) {
		for name, det := range dets {
			det.Confidence = 0.5
			dets[name] = det
		}
	})

	decision, score := decideFrames(t, frames)
	require.Less(t, score, DefaultConfig().Approval)
	require.Equal(t, DecisionReview, decision)
}

func TestDecideMissingCriticalCoverage(t *testing.T) {
	cfg := DefaultConfig()
	frames := makeFrames(t, 3, nil)
	consolidated, err := Consolidate(frames, cfg)
	require.NoError(t, err)
	delete(consolidated, "cameras")

	_, err = Decide(consolidated, 1.0, cfg)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDecideRejectBeatsRelease(t *testing.T) {
	// One critical component never seen while the aggregate score stays above
	// the approval threshold. Rule order must make this a rejection.
	cfg := DefaultConfig()
	frames := makeFrames(t, 10, func(i int, dets map[string]ComponentDetection) {
		dets["etiqueta_visivel"] = ComponentDetection{Detected: false, Confidence: 0.0, Critical: true}
	})

	consolidated, err := Consolidate(frames, cfg)
	require.NoError(t, err)
	score := ConsolidatedScore(consolidated, cfg)
	require.GreaterOrEqual(t, score, cfg.Approval-0.2)

	decision, err := Decide(consolidated, score, cfg)
	require.NoError(t, err)
	require.Equal(t, DecisionReject, decision)
}

// recordingHandler captures log records so tests can assert on attributes.
type recordingHandler struct {
	mu      sync.Mutex
	records []map[string]any
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := map[string]any{"msg": r.Message}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, attrs)
	h.mu.Unlock()
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestDecideLogsMatchedRule(t *testing.T) {
	handler := &recordingHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(handler))
	defer slog.SetDefault(prev)

	cfg := DefaultConfig()
	frames := makeFrames(t, 5, func(i int, dets map[string]ComponentDetection) {
		dets["cameras"] = ComponentDetection{Detected: false, Confidence: 0.0, Critical: true}
	})
	consolidated, err := Consolidate(frames, cfg)
	require.NoError(t, err)

	decision, err := Decide(consolidated, ConsolidatedScore(consolidated, cfg), cfg)
	require.NoError(t, err)
	require.Equal(t, DecisionReject, decision)

	var matched []string
	for _, r := range handler.records {
		if r["msg"] == "decision rule matched" {
			matched = append(matched, r["rule"].(string))
		}
	}
	require.Equal(t, []string{"critical_never_seen"}, matched)
}

func TestNewChecklist(t *testing.T) {
	frames := makeFrames(t, 10, nil)
	info := Info{
		OperatorName:   "Maria Souza",
		OPNumber:       "OP-2025-014",
		VideoFilename:  "equipamento.mp4",
		VideoDuration:  32.5,
		InspectionDate: time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC),
	}

	checklist, err := NewChecklist(frames, info, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 10, checklist.InspectionInfo.TotalFrames)
	require.Equal(t, "Maria Souza", checklist.InspectionInfo.OperatorName)
	require.Equal(t, DecisionRelease, checklist.Summary.FinalDecision)
	require.InDelta(t, 0.9, checklist.Summary.OverallScore, 1e-9)
}

func TestNewChecklistEmptyRun(t *testing.T) {
	_, err := NewChecklist(nil, Info{}, DefaultConfig())
	require.ErrorIs(t, err, ErrEmptyRun)
}
