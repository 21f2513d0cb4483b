package inspection

import "time"

// FrameStatus is the per-frame verdict hint fed into consolidation.
type FrameStatus string

const (
	FrameApproved FrameStatus = "APPROVED"
	FrameRejected FrameStatus = "REJECTED"
	FrameReview   FrameStatus = "REVIEW"
)

// FinalStatus is the consolidated per-component presence verdict.
type FinalStatus string

const (
	Detected    FinalStatus = "DETECTED"
	NotDetected FinalStatus = "NOT_DETECTED"
)

// Decision is the final disposition for the whole inspection run.
type Decision string

const (
	DecisionRelease Decision = "LIBERAR_LACRE"
	DecisionReview  Decision = "REVISAR_EQUIPAMENTO"
	DecisionReject  Decision = "REPROVADO"
)

// BoundingBox is a detector-supplied region in frame pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComponentDetection is one component's detection in one frame, produced by
// the frame detector and immutable afterwards. Confidence is always in [0,1],
// whether or not the component was detected.
type ComponentDetection struct {
	Detected   bool         `json:"detected"`
	Confidence float64      `json:"confidence"`
	Details    string       `json:"details"`
	Critical   bool         `json:"critical"`
	Box        *BoundingBox `json:"box,omitempty"`
}

// FrameAnalysis is the scored result of a single frame. Components always
// covers the full registry, never a subset.
type FrameAnalysis struct {
	Components   map[string]ComponentDetection `json:"components"`
	OverallScore float64                       `json:"overall_score"`
	Status       FrameStatus                   `json:"status"`
}

// ComponentConsolidated aggregates one component across every sampled frame.
type ComponentConsolidated struct {
	ComponentName     string      `json:"component_name"`
	Critical          bool        `json:"critical"`
	DetectedInFrames  int         `json:"detected_in_frames"`
	TotalFrames       int         `json:"total_frames"`
	DetectionRate     float64     `json:"detection_rate"`
	AverageConfidence float64     `json:"average_confidence"`
	FinalStatus       FinalStatus `json:"final_status"`
}

// Info holds the run metadata shown in the report header.
type Info struct {
	OperatorName   string    `json:"operator_name"`
	OPNumber       string    `json:"op_number"`
	VideoFilename  string    `json:"video_filename"`
	VideoDuration  float64   `json:"video_duration"`
	InspectionDate time.Time `json:"inspection_date"`
	TotalFrames    int       `json:"total_frames"`
}

// Summary carries the run-level score and the final disposition.
type Summary struct {
	OverallScore  float64  `json:"overall_score"`
	FinalDecision Decision `json:"final_decision"`
}

// ConsolidatedChecklist is the complete, immutable result of one inspection
// run. A new analysis always produces a new checklist.
type ConsolidatedChecklist struct {
	InspectionInfo     Info                             `json:"inspection_info"`
	ComponentsAnalysis map[string]ComponentConsolidated `json:"components_analysis"`
	Summary            Summary                          `json:"summary"`
}
