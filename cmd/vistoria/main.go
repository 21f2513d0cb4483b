package main

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"log/slog"

	"github.com/lmittmann/tint"

	"github.com/lacretech/vistoria/internal/analyzer"
	"github.com/lacretech/vistoria/internal/config"
	"github.com/lacretech/vistoria/internal/detector"
	"github.com/lacretech/vistoria/internal/embeddings"
	"github.com/lacretech/vistoria/internal/extractor"
	"github.com/lacretech/vistoria/internal/report"
	"github.com/lacretech/vistoria/internal/storage"
)

func main() {
	ctx := context.Background()

	// Configure logger
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Parse command line arguments
	videoPath := ""
	operatorName := ""
	opNumber := ""
	numFrames := extractor.DefaultFrameCount
	save := false
	skipFailed := false

	for i := 1; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--video":
			if i+1 < len(os.Args) {
				videoPath = os.Args[i+1]
				i++
			}
		case "--operator":
			if i+1 < len(os.Args) {
				operatorName = os.Args[i+1]
				i++
			}
		case "--op":
			if i+1 < len(os.Args) {
				opNumber = os.Args[i+1]
				i++
			}
		case "--frames":
			if i+1 < len(os.Args) {
				if n, err := strconv.Atoi(os.Args[i+1]); err == nil {
					numFrames = n
				}
				i++
			}
		case "--output":
			if i+1 < len(os.Args) {
				cfg.OutputDir = os.Args[i+1]
				i++
			}
		case "--detector":
			if i+1 < len(os.Args) {
				cfg.Detector = os.Args[i+1]
				i++
			}
		case "--save":
			save = true
		case "--skip-failed-frames":
			skipFailed = true
		}
	}

	if videoPath == "" || operatorName == "" || opNumber == "" {
		fmt.Println("Usage: vistoria --video path/to/video.mp4 --operator \"Nome do Técnico\" --op OP-2025-001 [--frames 10] [--output dir] [--detector gcv|fake] [--save] [--skip-failed-frames]")
		os.Exit(1)
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		log.Fatalf("Failed to load thresholds: %v", err)
	}

	var frameDetector detector.FrameDetector
	switch cfg.Detector {
	case "fake":
		logger.Warn("using fake detector, results are not real inspections")
		frameDetector = detector.NewFake(0.9)
	default:
		gcv, err := detector.NewGCV(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize vision detector: %v", err)
		}
		defer gcv.Close()
		frameDetector = gcv
	}

	processor := analyzer.NewProcessor(frameDetector, thresholds, logger)
	processor.MaxWorkers = cfg.MaxWorkers
	processor.SkipFailedFrames = skipFailed

	result, err := processor.Inspect(ctx, videoPath, analyzer.Operator{
		Name:     operatorName,
		OPNumber: opNumber,
	}, numFrames)
	if err != nil {
		log.Printf("Error processing video: %v", err)
		os.Exit(1)
	}

	fmt.Println(report.FormatText(result.Checklist))

	if err := writeAnnotatedFrame(cfg.OutputDir, result); err != nil {
		logger.Warn("failed to write annotated frame", "err", err)
	}

	if save {
		id, err := saveInspection(ctx, cfg, result)
		if err != nil {
			log.Printf("Error saving inspection: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Inspeção salva! ID: %s\n", id)
	}
}

// writeAnnotatedFrame saves the first frame with its detection overlay next to
// the inspection records, as the run's representative image.
func writeAnnotatedFrame(outputDir string, result *analyzer.RunResult) error {
	if len(result.Frames) == 0 {
		return nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	annotated := report.Annotate(result.Frames[0], result.Analyses[0])

	f, err := os.Create(filepath.Join(outputDir, "annotated_frame.jpg"))
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, annotated, &jpeg.Options{Quality: 90})
}

func saveInspection(ctx context.Context, cfg *config.Config, result *analyzer.RunResult) (string, error) {
	var store storage.Storage

	if cfg.DatabaseURL != "" {
		if err := storage.InitSchema(ctx, cfg.DatabaseURL); err != nil {
			return "", err
		}
		embedder := embeddings.NewService(cfg.MaxWorkers)
		defer embedder.Close()

		pg, err := storage.NewPostgresStorage(ctx, cfg.DatabaseURL, embedder)
		if err != nil {
			return "", err
		}
		defer pg.Close()
		store = pg
	} else {
		store = storage.NewFileStorage(cfg.OutputDir)
	}

	var repr image.Image
	if len(result.Frames) > 0 {
		repr = result.Frames[0]
	}
	return store.SaveInspection(ctx, result.Checklist, repr)
}
