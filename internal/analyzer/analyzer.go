package analyzer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lacretech/vistoria/internal/detector"
	"github.com/lacretech/vistoria/internal/extractor"
	"github.com/lacretech/vistoria/internal/inspection"
)

const defaultMaxWorkers = 4

// Operator identifies who ran the inspection.
type Operator struct {
	Name     string
	OPNumber string
}

// RunResult bundles everything a host needs after one inspection run.
type RunResult struct {
	Checklist *inspection.ConsolidatedChecklist
	Frames    []image.Image
	Analyses  []inspection.FrameAnalysis
	Video     extractor.VideoInfo
}

// Processor drives one inspection run: frame extraction, concurrent
// detection and scoring, then consolidation and the release decision.
type Processor struct {
	detector detector.FrameDetector
	cfg      inspection.Config
	logger   *slog.Logger

	// SkipFailedFrames scores a frame the oracle could not analyze as
	// all-not-detected at confidence zero instead of failing the run.
	SkipFailedFrames bool

	// MaxWorkers bounds concurrent detector calls.
	MaxWorkers int
}

// NewProcessor creates a processor over the given detector and thresholds.
func NewProcessor(d detector.FrameDetector, cfg inspection.Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		detector:   d,
		cfg:        cfg,
		logger:     logger,
		MaxWorkers: defaultMaxWorkers,
	}
}

// Inspect runs the full pipeline for one video and returns the consolidated
// checklist along with the per-frame analyses.
func (p *Processor) Inspect(ctx context.Context, videoPath string, op Operator, numFrames int) (*RunResult, error) {
	p.logger.Info("processing video", "path", videoPath, "op", op.OPNumber)

	frames, video, err := extractor.ExtractFrames(ctx, videoPath, numFrames)
	if err != nil {
		return nil, err
	}
	p.logger.Info("frames extracted", "count", len(frames), "duration_s", video.Duration)

	analyses, err := p.AnalyzeFrames(ctx, frames)
	if err != nil {
		return nil, err
	}

	info := inspection.Info{
		OperatorName:   op.Name,
		OPNumber:       op.OPNumber,
		VideoFilename:  video.Filename,
		VideoDuration:  video.Duration,
		InspectionDate: time.Now(),
	}
	checklist, err := inspection.NewChecklist(analyses, info, p.cfg)
	if err != nil {
		return nil, err
	}

	p.logger.Info("inspection complete",
		"decision", checklist.Summary.FinalDecision,
		"score", fmt.Sprintf("%.3f", checklist.Summary.OverallScore))

	return &RunResult{
		Checklist: checklist,
		Frames:    frames,
		Analyses:  analyses,
		Video:     video,
	}, nil
}

type frameJob struct {
	index int
	frame image.Image
}

// AnalyzeFrames runs the detector over every frame with a bounded worker pool
// and scores each result. Analyses come back in sampling order regardless of
// worker scheduling; consolidation only sees the complete set.
func (p *Processor) AnalyzeFrames(ctx context.Context, frames []image.Image) ([]inspection.FrameAnalysis, error) {
	if len(frames) == 0 {
		return nil, inspection.ErrEmptyRun
	}

	workers := p.MaxWorkers
	if workers <= 0 {
		workers = defaultMaxWorkers
	}
	if workers > len(frames) {
		workers = len(frames)
	}

	workChan := make(chan frameJob, len(frames))
	errorsChan := make(chan error, len(frames))
	analyses := make([]inspection.FrameAnalysis, len(frames))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workChan {
				analysis, err := p.analyzeFrame(ctx, work.frame)
				if err != nil {
					errorsChan <- fmt.Errorf("frame %d/%d failed: %w", work.index+1, len(frames), err)
					continue
				}
				analyses[work.index] = analysis
				p.logger.Debug("frame analyzed", "frame", work.index+1, "status", analysis.Status)
			}
		}()
	}

	for i, frame := range frames {
		workChan <- frameJob{index: i, frame: frame}
	}
	close(workChan)

	wg.Wait()
	close(errorsChan)

	var errorMessages []string
	for err := range errorsChan {
		errorMessages = append(errorMessages, err.Error())
	}
	if len(errorMessages) > 0 {
		return nil, fmt.Errorf("encountered errors during processing: %v", strings.Join(errorMessages, "; "))
	}

	return analyses, nil
}

// analyzeFrame runs the oracle over one frame and scores the result. A
// detection failure is either mapped to an all-not-detected frame (when the
// host opted in) or propagated as-is.
func (p *Processor) analyzeFrame(ctx context.Context, frame image.Image) (inspection.FrameAnalysis, error) {
	detections, err := p.detector.Detect(ctx, frame)
	if err != nil {
		var detErr *detector.DetectionError
		if p.SkipFailedFrames && errors.As(err, &detErr) {
			p.logger.Warn("detector failed, scoring frame as not detected", "reason", detErr.Reason)
			detections = detector.NotDetectedMap("falha na análise do frame")
		} else {
			return inspection.FrameAnalysis{}, err
		}
	}

	return inspection.ScoreFrame(detections, p.cfg)
}
