//go:build !gocv
// +build !gocv

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
)

// sampleFrames seeks to each position with ffmpeg and decodes a single frame
// from its mjpeg pipe output.
func sampleFrames(ctx context.Context, path string, info VideoInfo, positions []int) ([]image.Image, error) {
	frames := make([]image.Image, 0, len(positions))

	for _, pos := range positions {
		var timestamp float64
		if info.FPS > 0 {
			timestamp = float64(pos) / info.FPS
		}

		cmd := exec.CommandContext(ctx,
			"ffmpeg",
			"-ss", fmt.Sprintf("%.3f", timestamp),
			"-i", path,
			"-frames:v", "1",
			"-f", "image2pipe",
			"-vcodec", "mjpeg",
			"-",
		)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("ffmpeg failed at frame %d: %v\nOutput: %s", pos, err, stderr.String())
		}

		frame, err := jpeg.Decode(&stdout)
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", pos, err)
		}
		frames = append(frames, frame)
	}

	return frames, nil
}
