package transcode_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"kamishibai/internal/logging"
	"kamishibai/internal/services"
	"kamishibai/internal/transcode"
)

func TestArgsContract(t *testing.T) {
	got := transcode.Args("thumb.png", "story.m4a", "video.mp4")
	want := []string{
		"-loop", "1",
		"-i", "thumb.png",
		"-i", "story.m4a",
		"-c:v", "libx264",
		"-b:v", "1M",
		"-r", "1",
		"-af", "volume=2.0",
		"-c:a", "aac",
		"-b:a", "128k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-y",
		"video.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestTranscodeMissingBinaryIsExternalToolError(t *testing.T) {
	runner := transcode.New("kamishibai-test-missing-encoder", logging.NewNop())
	err := runner.Transcode(context.Background(), "a.m4a", "t.png", "out.mp4")
	if err == nil {
		t.Fatal("expected error for missing encoder binary")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestTranscodeHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := transcode.New("ffmpeg", logging.NewNop())
	if err := runner.Transcode(ctx, "a.m4a", "t.png", "out.mp4"); err == nil {
		t.Fatal("expected error with canceled context")
	}
}
