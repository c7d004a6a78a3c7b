// Package publisher uploads video artifacts to the publishing platform.
package publisher

import "context"

// Video carries the metadata for one scheduled publication.
type Video struct {
	Title         string
	Description   string
	Tags          []string
	CategoryID    string
	PrivacyStatus string
	// PublishAt is the scheduled publish time in RFC 3339 with an explicit
	// UTC offset.
	PublishAt   string
	MadeForKids bool
}

// Publisher is the platform surface the pipeline consumes. Upload and
// SetThumbnail are two independent remote calls: a successful upload followed
// by a failed thumbnail attach leaves the video published without a custom
// thumbnail.
type Publisher interface {
	// Upload performs a chunked resumable upload of the file at videoPath
	// and returns the new video's identifier. The optional progress callback
	// receives completion fractions in [0, 1].
	Upload(ctx context.Context, videoPath string, video Video, progress func(fraction float64)) (string, error)
	// SetThumbnail attaches the image at imagePath to an existing video.
	SetThumbnail(ctx context.Context, videoID, imagePath string) error
}
