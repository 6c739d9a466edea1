package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobeProber implements DurationProber with the ffprobe binary.
type FFprobeProber struct {
	ffprobePath string
}

// NewFFprobeProber creates a prober; an ffmpeg path is accepted and mapped to
// the ffprobe binary next to it.
func NewFFprobeProber(path string) *FFprobeProber {
	if path == "" {
		path = "ffprobe"
	}
	if strings.HasSuffix(path, "ffmpeg") {
		path = strings.TrimSuffix(path, "ffmpeg") + "ffprobe"
	}
	return &FFprobeProber{ffprobePath: path}
}

// ProbeDuration pipes the blob into ffprobe and reads format.duration.
func (p *FFprobeProber) ProbeDuration(ctx context.Context, data []byte) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		"-i", "pipe:0",
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed: %w\nFFprobe Error: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseDuration(out.Bytes())
}

func parseDuration(output []byte) (float64, error) {
	var probeData struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}
	if probeData.Format.Duration == "" || probeData.Format.Duration == "N/A" {
		return 0, fmt.Errorf("duration not reported by ffprobe")
	}

	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string '%s': %w", probeData.Format.Duration, err)
	}
	return duration, nil
}
