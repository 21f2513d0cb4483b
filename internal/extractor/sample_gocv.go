//go:build gocv
// +build gocv

package extractor

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// sampleFrames seeks the capture to each position and decodes the frame
// through OpenCV. Built with -tags gocv; the default build shells out to
// ffmpeg instead.
func sampleFrames(ctx context.Context, path string, info VideoInfo, positions []int) ([]image.Image, error) {
	_ = info

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video '%s': %w", path, err)
	}
	defer cap.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	frames := make([]image.Image, 0, len(positions))
	for _, pos := range positions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cap.Set(gocv.VideoCapturePosFrames, float64(pos))
		if ok := cap.Read(&mat); !ok || mat.Empty() {
			return nil, fmt.Errorf("failed to read frame at position %d", pos)
		}

		frame, err := mat.ToImage()
		if err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", pos, err)
		}
		frames = append(frames, frame)
	}

	return frames, nil
}
