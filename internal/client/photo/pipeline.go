// Package photo implements the per-item photo attachment pipeline:
// validation, downscale/re-encode, upload to object storage and thumbnail
// generation. Every step fails with a classified error; a thumbnail failure
// yields a partial result rather than rolling back the main upload.
package photo

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rgoncalves/fieldsync/internal/common"
	"github.com/rgoncalves/fieldsync/internal/logging"

	_ "golang.org/x/image/webp" // register WebP decoding
)

const (
	// MaxFileSize bounds the accepted original payload.
	MaxFileSize = 10 * 1024 * 1024

	// maxDimension bounds the re-encoded image on its longer side.
	maxDimension = 1920

	// thumbnailSize is the square thumbnail edge in pixels.
	thumbnailSize = 300

	mainQuality  = 85
	thumbQuality = 80
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Uploader stores a binary under key and returns its public URL.
// Implemented by S3Uploader; tests substitute a fake.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Result carries the public URLs of a finished upload. ThumbnailURL is
// empty when thumbnail generation or upload failed; callers must tolerate
// that.
type Result struct {
	URL          string
	ThumbnailURL string
}

// Pipeline validates, processes and uploads measurement photos.
type Pipeline struct {
	uploader Uploader
	log      logging.Logger

	// now is a test seam for the storage-key timestamp.
	now func() time.Time
}

// NewPipeline returns a Pipeline writing through the given uploader.
func NewPipeline(uploader Uploader, log logging.Logger) *Pipeline {
	return &Pipeline{uploader: uploader, log: log, now: time.Now}
}

// Upload runs the full pipeline for one photo belonging to the measurement
// item ownerItemID of client clientID. The main image failing to upload is
// an error; the thumbnail failing is not.
func (p *Pipeline) Upload(ctx context.Context, data []byte, filename, mimeType, ownerItemID string, clientID int64) (*Result, error) {
	if err := validate(data, mimeType); err != nil {
		return nil, err
	}

	processed, err := process(data)
	if err != nil {
		return nil, err
	}

	// Path namespaced by client and owning item; the timestamp makes the
	// key unique. Collisions are not expected and not specially handled.
	key := fmt.Sprintf("%d/%s/%d.jpg", clientID, ownerItemID, p.now().UnixMilli())

	url, err := p.uploader.Upload(ctx, key, processed, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %v", common.ErrTransientNetwork, key, err)
	}

	result := &Result{URL: url}

	thumb, err := thumbnail(data)
	if err != nil {
		p.log.Warn(ctx, "thumbnail generation failed", "key", key, "error", err)
		return result, nil
	}

	thumbKey := strings.TrimSuffix(key, ".jpg") + "_thumb.jpg"
	thumbURL, err := p.uploader.Upload(ctx, thumbKey, thumb, "image/jpeg")
	if err != nil {
		p.log.Warn(ctx, "thumbnail upload failed", "key", thumbKey, "error", err)
		return result, nil
	}

	result.ThumbnailURL = thumbURL
	return result, nil
}

// validate checks MIME type and size before any processing or network call.
func validate(data []byte, mimeType string) error {
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return fmt.Errorf("%w: file type %q not allowed, use JPEG, PNG or WebP", common.ErrValidation, mimeType)
	}
	if len(data) > MaxFileSize {
		return fmt.Errorf("%w: file exceeds maximum size of %d MB", common.ErrValidation, MaxFileSize/1024/1024)
	}
	return nil
}

// process decodes the original and re-encodes it as JPEG with neither
// dimension exceeding maxDimension, preserving aspect ratio. Pure
// transformation, no side effects.
func process(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", common.ErrProcessing, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(mainQuality)); err != nil {
		return nil, fmt.Errorf("%w: encode image: %v", common.ErrProcessing, err)
	}
	return buf.Bytes(), nil
}

// thumbnail center-crops to the shorter dimension and scales to a fixed
// square.
func thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", common.ErrProcessing, err)
	}

	img = imaging.Fill(img, thumbnailSize, thumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbQuality)); err != nil {
		return nil, fmt.Errorf("%w: encode thumbnail: %v", common.ErrProcessing, err)
	}
	return buf.Bytes(), nil
}
