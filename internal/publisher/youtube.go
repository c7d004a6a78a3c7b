package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"kamishibai/internal/logging"
	"kamishibai/internal/services"
)

// YouTube implements Publisher against the YouTube Data API v3.
type YouTube struct {
	service   *youtube.Service
	chunkSize int
	logger    *slog.Logger
}

// NewYouTube builds a client from an authenticated token source.
func NewYouTube(ctx context.Context, tokenSource oauth2.TokenSource, chunkSizeMiB int, logger *slog.Logger) (*YouTube, error) {
	service, err := youtube.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("build youtube service: %w", err)
	}
	if chunkSizeMiB <= 0 {
		chunkSizeMiB = 8
	}
	return &YouTube{
		service:   service,
		chunkSize: chunkSizeMiB * 1024 * 1024,
		logger:    logging.WithComponent(logger, "publisher"),
	}, nil
}

// Upload creates the video with snippet and status in one insert call and
// streams the media in chunks, reporting fractional progress as the API
// acknowledges each chunk.
func (y *YouTube) Upload(ctx context.Context, videoPath string, video Video, progress func(float64)) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publisher", "open video", videoPath, err)
	}
	defer file.Close()

	body := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       video.Title,
			Description: video.Description,
			Tags:        video.Tags,
			CategoryId:  video.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           video.PrivacyStatus,
			PublishAt:               video.PublishAt,
			SelfDeclaredMadeForKids: video.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	call := y.service.Videos.Insert([]string{"snippet", "status"}, body).
		Media(file, googleapi.ChunkSize(y.chunkSize)).
		ProgressUpdater(func(current, total int64) {
			if progress != nil && total > 0 {
				progress(float64(current) / float64(total))
			}
		})

	response, err := call.Context(ctx).Do()
	if err != nil {
		return "", classify("upload video", err)
	}
	y.logger.Debug("video uploaded", logging.String(logging.FieldVideoID, response.Id))
	return response.Id, nil
}

// SetThumbnail attaches the rendered title image to the uploaded video.
func (y *YouTube) SetThumbnail(ctx context.Context, videoID, imagePath string) error {
	file, err := os.Open(imagePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "publisher", "open thumbnail", imagePath, err)
	}
	defer file.Close()

	if _, err := y.service.Thumbnails.Set(videoID).Media(file).Context(ctx).Do(); err != nil {
		return classify("set thumbnail", err)
	}
	return nil
}

func classify(operation string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrUnauthorized, "publisher", operation, "", err)
		}
	}
	return services.Wrap(services.ErrTransient, "publisher", operation, "", err)
}
