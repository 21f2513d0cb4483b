package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/lacretech/vistoria/internal/component"
	"github.com/lacretech/vistoria/internal/embeddings"
	"github.com/lacretech/vistoria/internal/inspection"
	"github.com/lacretech/vistoria/internal/report"
)

// InspectionSearchResult is one hit of a similarity search over past reports.
type InspectionSearchResult struct {
	ID            string
	OPNumber      string
	FinalDecision inspection.Decision
	OverallScore  float64
	Similarity    float64
}

// PostgresStorage persists inspections in PostgreSQL, with a pgvector
// embedding of each report for similarity search over the history.
type PostgresStorage struct {
	pool       *pgxpool.Pool
	embeddings *embeddings.Service
}

// NewPostgresStorage connects to the database and verifies the connection.
func NewPostgresStorage(ctx context.Context, connString string, embedder *embeddings.Service) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStorage{pool: pool, embeddings: embedder}, nil
}

// Close closes the database connection.
func (s *PostgresStorage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SaveInspection stores the run, its per-component statistics and the report
// embedding in one transaction.
func (s *PostgresStorage) SaveInspection(ctx context.Context, checklist *inspection.ConsolidatedChecklist, reprFrame image.Image) (string, error) {
	id := uuid.NewString()
	info := checklist.InspectionInfo
	now := time.Now()

	var frameData []byte
	if reprFrame != nil {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, reprFrame, &jpeg.Options{Quality: 90}); err != nil {
			return "", fmt.Errorf("failed to encode representative frame: %w", err)
		}
		frameData = buf.Bytes()
	}

	var reportEmbedding *pgvector.Vector
	if s.embeddings != nil {
		result := <-s.embeddings.GetEmbedding(report.FormatText(checklist))
		if result.Error == nil {
			v := pgvector.NewVector(result.Embedding)
			reportEmbedding = &v
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO inspections
		(id, equipment_code, op_number, operator_name, video_filename,
		 video_duration, total_frames, overall_score, final_decision,
		 repr_frame, report_embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, "EQ-"+now.Format("20060102150405"), info.OPNumber, info.OperatorName,
		info.VideoFilename, info.VideoDuration, info.TotalFrames,
		checklist.Summary.OverallScore, string(checklist.Summary.FinalDecision),
		frameData, reportEmbedding, now)
	if err != nil {
		return "", fmt.Errorf("failed to store inspection: %w", err)
	}

	for _, spec := range component.Specs() {
		c := checklist.ComponentsAnalysis[spec.Name]
		_, err = tx.Exec(ctx,
			`INSERT INTO component_stats
			(inspection_id, component_name, critical, detected_in_frames,
			 total_frames, detection_rate, average_confidence, final_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, c.ComponentName, c.Critical, c.DetectedInFrames,
			c.TotalFrames, c.DetectionRate, c.AverageConfidence, string(c.FinalStatus))
		if err != nil {
			return "", fmt.Errorf("failed to store component stats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit inspection: %w", err)
	}
	return id, nil
}

// Statistics computes history totals from the inspections table.
func (s *PostgresStorage) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		 COUNT(*) FILTER (WHERE final_decision = $1),
		 COUNT(*) FILTER (WHERE final_decision = $2),
		 COUNT(*) FILTER (WHERE final_decision = $3)
		 FROM inspections`,
		string(inspection.DecisionRelease), string(inspection.DecisionReject),
		string(inspection.DecisionReview)).
		Scan(&stats.TotalInspections, &stats.Approved, &stats.Rejected, &stats.NeedsReview)
	if err != nil {
		return Statistics{}, fmt.Errorf("failed to compute statistics: %w", err)
	}

	if stats.TotalInspections > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.TotalInspections) * 100
	}
	return stats, nil
}

// SearchSimilarInspections finds past inspections whose reports read like the
// query text.
func (s *PostgresStorage) SearchSimilarInspections(ctx context.Context, query string, limit int) ([]InspectionSearchResult, error) {
	if s.embeddings == nil {
		return nil, fmt.Errorf("embedding service is not configured")
	}
	result := <-s.embeddings.GetEmbedding(query)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to embed query: %w", result.Error)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, op_number, final_decision, overall_score,
		 1 - (report_embedding <=> $1) AS similarity
		 FROM inspections
		 WHERE report_embedding IS NOT NULL
		 ORDER BY report_embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(result.Embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search inspections: %w", err)
	}
	defer rows.Close()

	var results []InspectionSearchResult
	for rows.Next() {
		var r InspectionSearchResult
		var decision string
		if err := rows.Scan(&r.ID, &r.OPNumber, &decision, &r.OverallScore, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search results: %w", err)
		}
		r.FinalDecision = inspection.Decision(decision)
		results = append(results, r)
	}
	return results, rows.Err()
}

// InitSchema creates the database schema if it doesn't exist.
func InitSchema(ctx context.Context, connString string) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS inspections (
            id UUID PRIMARY KEY,
            equipment_code VARCHAR(64) NOT NULL,
            op_number VARCHAR(64) NOT NULL,
            operator_name VARCHAR(255) NOT NULL,
            video_filename VARCHAR(255) NOT NULL,
            video_duration DOUBLE PRECISION NOT NULL,
            total_frames INTEGER NOT NULL,
            overall_score DOUBLE PRECISION NOT NULL,
            final_decision VARCHAR(32) NOT NULL,
            repr_frame BYTEA,
            report_embedding vector(4),
            created_at TIMESTAMPTZ NOT NULL
        );

        CREATE TABLE IF NOT EXISTS component_stats (
            id SERIAL PRIMARY KEY,
            inspection_id UUID REFERENCES inspections(id) ON DELETE CASCADE,
            component_name VARCHAR(64) NOT NULL,
            critical BOOLEAN NOT NULL,
            detected_in_frames INTEGER NOT NULL,
            total_frames INTEGER NOT NULL,
            detection_rate DOUBLE PRECISION NOT NULL,
            average_confidence DOUBLE PRECISION NOT NULL,
            final_status VARCHAR(16) NOT NULL,
            UNIQUE(inspection_id, component_name)
        );
    `)
	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_component_stats_inspection_id ON component_stats(inspection_id);
        CREATE INDEX IF NOT EXISTS idx_inspections_op_number ON inspections(op_number);
    `)
	if err != nil {
		return fmt.Errorf("failed to create database indexes: %w", err)
	}
	return nil
}

var _ Storage = (*PostgresStorage)(nil)
