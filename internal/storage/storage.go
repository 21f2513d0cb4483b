package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lacretech/vistoria/internal/inspection"
)

// Statistics summarizes the inspection history.
type Statistics struct {
	TotalInspections int     `json:"total_inspections"`
	Approved         int     `json:"approved_inspections"`
	Rejected         int     `json:"rejected_inspections"`
	NeedsReview      int     `json:"review_inspections"`
	ApprovalRate     float64 `json:"approval_rate"`
}

// Storage persists finished inspections. SaveInspection takes the checklist
// plus an optional representative frame and returns an opaque inspection id;
// failures surface as-is, the pipeline never retries.
type Storage interface {
	SaveInspection(ctx context.Context, checklist *inspection.ConsolidatedChecklist, reprFrame image.Image) (string, error)
	Statistics(ctx context.Context) (Statistics, error)
}

// Record is one line of the file store's inspection index.
type Record struct {
	ID            string              `json:"id"`
	EquipmentCode string              `json:"equipment_code"`
	OPNumber      string              `json:"op_number"`
	OperatorName  string              `json:"operator_name"`
	VideoFilename string              `json:"video_filename"`
	TotalFrames   int                 `json:"total_frames"`
	OverallScore  float64             `json:"overall_score"`
	FinalDecision inspection.Decision `json:"final_decision"`
	CreatedAt     time.Time           `json:"created_at"`
}

// FileStorage keeps inspections under a directory: an inspections.json index
// plus one checklist json and representative jpeg per inspection.
type FileStorage struct {
	mu        sync.Mutex
	outputDir string
}

// NewFileStorage creates a file-backed inspection store.
func NewFileStorage(outputDir string) *FileStorage {
	return &FileStorage{outputDir: outputDir}
}

// SaveInspection writes the checklist and representative frame to disk and
// appends the run to the index.
func (s *FileStorage) SaveInspection(ctx context.Context, checklist *inspection.ConsolidatedChecklist, reprFrame image.Image) (string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	id := uuid.NewString()

	data, err := json.MarshalIndent(checklist, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode checklist: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.outputDir, id+".json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write checklist: %w", err)
	}

	if reprFrame != nil {
		f, err := os.Create(filepath.Join(s.outputDir, id+".jpg"))
		if err != nil {
			return "", fmt.Errorf("failed to create frame file: %w", err)
		}
		if err := jpeg.Encode(f, reprFrame, &jpeg.Options{Quality: 90}); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to encode frame: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", err
		}
	}

	now := time.Now()
	record := Record{
		ID:            id,
		EquipmentCode: "EQ-" + now.Format("20060102150405"),
		OPNumber:      checklist.InspectionInfo.OPNumber,
		OperatorName:  checklist.InspectionInfo.OperatorName,
		VideoFilename: checklist.InspectionInfo.VideoFilename,
		TotalFrames:   checklist.InspectionInfo.TotalFrames,
		OverallScore:  checklist.Summary.OverallScore,
		FinalDecision: checklist.Summary.FinalDecision,
		CreatedAt:     now,
	}
	if err := s.appendRecord(record); err != nil {
		return "", err
	}

	return id, nil
}

func (s *FileStorage) indexPath() string {
	return filepath.Join(s.outputDir, "inspections.json")
}

func (s *FileStorage) appendRecord(record Record) error {
	records, err := s.readRecords()
	if err != nil {
		return err
	}
	records = append(records, record)

	file, err := os.Create(s.indexPath())
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer file.Close()

	return json.NewEncoder(file).Encode(records)
}

func (s *FileStorage) readRecords() ([]Record, error) {
	var records []Record
	data, err := os.ReadFile(s.indexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index file: %w", err)
	}
	return records, nil
}

// Statistics computes history totals from the index.
func (s *FileStorage) Statistics(ctx context.Context) (Statistics, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords()
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{TotalInspections: len(records)}
	for _, r := range records {
		switch r.FinalDecision {
		case inspection.DecisionRelease:
			stats.Approved++
		case inspection.DecisionReject:
			stats.Rejected++
		default:
			stats.NeedsReview++
		}
	}
	if stats.TotalInspections > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.TotalInspections) * 100
	}
	return stats, nil
}

var _ Storage = (*FileStorage)(nil)
