// Package transcode wraps the audio recording and its title image into a
// single video artifact by invoking ffmpeg.
package transcode

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"kamishibai/internal/logging"
	"kamishibai/internal/services"
)

// Runner invokes the external encoder with a fixed, reproducible argument
// contract: the image loops as the only video frame, the audio becomes the
// program's audio track, and the output stops at the shorter input.
type Runner struct {
	binary string
	logger *slog.Logger
}

// New builds a Runner for the given ffmpeg binary.
func New(binary string, logger *slog.Logger) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Runner{binary: binary, logger: logging.WithComponent(logger, "transcode")}
}

// Args returns the encoder argument list for the given inputs. Exposed so
// the contract stays testable without running the encoder.
func Args(imagePath, audioPath, outputPath string) []string {
	return []string{
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-b:v", "1M",
		"-r", "1",
		"-af", "volume=2.0",
		"-c:a", "aac",
		"-b:a", "128k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-y",
		outputPath,
	}
}

// Transcode produces the video artifact at outputPath. A non-zero exit is
// surfaced with the encoder's captured stderr and fails only this item.
func (r *Runner) Transcode(ctx context.Context, audioPath, imagePath, outputPath string) error {
	args := Args(imagePath, audioPath, outputPath)
	r.logger.Debug("launching encoder", logging.String("command", r.binary+" "+strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := tail(stderr.String(), 2000)
		return services.Wrap(services.ErrExternalTool, "transcode", "run ffmpeg", detail, err)
	}
	return nil
}

// tail keeps the last max bytes of the encoder's diagnostics, which is where
// ffmpeg reports the actual failure.
func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max:]
}
