package services_test

import (
	"errors"
	"strings"
	"testing"

	"kamishibai/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "transcode", "run ffmpeg", "encoding failed", inner)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	for _, fragment := range []string{"transcode", "run ffmpeg", "encoding failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error message %q", fragment, err.Error())
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "upload", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected generic detail, got %q", err.Error())
	}
}

func TestFatalClassification(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrConfiguration, "config", "", "missing bucket", nil), true},
		{services.Wrap(services.ErrUnauthorized, "auth", "", "token rejected", nil), true},
		{services.Wrap(services.ErrExternalTool, "transcode", "", "", nil), false},
		{services.Wrap(services.ErrTransient, "upload", "", "", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.Fatal(tc.err); got != tc.fatal {
			t.Fatalf("Fatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
