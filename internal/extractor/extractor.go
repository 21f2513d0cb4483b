package extractor

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxFileSize is the upload cap for inspection videos.
const MaxFileSize = 100 * 1024 * 1024

// DefaultFrameCount is how many uniformly spaced frames an inspection samples.
const DefaultFrameCount = 10

var supportedFormats = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
	".wmv": true,
}

// VideoInfo describes a probed inspection video.
type VideoInfo struct {
	Filename    string
	SizeMB      float64
	Duration    float64
	FPS         float64
	TotalFrames int
	Width       int
	Height      int
	Format      string
}

// ValidateVideoFile checks the file exists, has a supported extension and is
// under the size cap.
func ValidateVideoFile(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("video file does not exist at path: '%s'", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return fmt.Errorf("unsupported video format: %s", ext)
	}
	if stat.Size() > MaxFileSize {
		return fmt.Errorf("video file too large: %d bytes (max %d)", stat.Size(), MaxFileSize)
	}
	return nil
}

// Probe reads the video's stream metadata with ffprobe.
func Probe(ctx context.Context, path string) (VideoInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("video file does not exist at path: '%s'", path)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames:format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe failed: %v\nOutput: %s", err, string(output))
	}

	info := VideoInfo{
		Filename: filepath.Base(path),
		SizeMB:   float64(stat.Size()) / (1024 * 1024),
		Format:   strings.ToLower(filepath.Ext(path)),
	}
	for _, line := range strings.Split(string(output), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || value == "N/A" {
			continue
		}
		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "nb_frames":
			info.TotalFrames, _ = strconv.Atoi(value)
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		case "r_frame_rate":
			info.FPS = parseRate(value)
		}
	}

	// Some containers omit the frame count; derive it from duration.
	if info.TotalFrames == 0 && info.FPS > 0 {
		info.TotalFrames = int(info.Duration * info.FPS)
	}
	if info.TotalFrames == 0 {
		return VideoInfo{}, fmt.Errorf("could not determine frame count for '%s'", path)
	}
	return info, nil
}

// parseRate parses ffprobe's fractional frame rate ("30000/1001").
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// ExtractFrames decodes numFrames uniformly spaced frames from the video.
// Videos shorter than numFrames yield every frame; at least one frame is
// always returned or the extraction fails.
func ExtractFrames(ctx context.Context, path string, numFrames int) ([]image.Image, VideoInfo, error) {
	if err := ValidateVideoFile(path); err != nil {
		return nil, VideoInfo{}, err
	}

	info, err := Probe(ctx, path)
	if err != nil {
		return nil, VideoInfo{}, err
	}

	if numFrames <= 0 {
		numFrames = DefaultFrameCount
	}
	if info.TotalFrames < numFrames {
		numFrames = info.TotalFrames
	}

	positions := UniformPositions(info.TotalFrames, numFrames)
	frames, err := sampleFrames(ctx, path, info, positions)
	if err != nil {
		return nil, VideoInfo{}, err
	}
	if len(frames) == 0 {
		return nil, VideoInfo{}, fmt.Errorf("no frames could be extracted from '%s'", path)
	}
	return frames, info, nil
}

// UniformPositions returns n frame indexes evenly spread over [0, total-1].
func UniformPositions(total, n int) []int {
	if total <= 0 || n <= 0 {
		return nil
	}
	if n > total {
		n = total
	}
	if n == 1 {
		return []int{0}
	}

	positions := make([]int, n)
	step := float64(total-1) / float64(n-1)
	for i := range positions {
		positions[i] = int(step * float64(i))
	}
	// Pin the endpoint so float rounding never drops the final frame.
	positions[n-1] = total - 1
	return positions
}
