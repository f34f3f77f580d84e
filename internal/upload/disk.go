// internal/upload/disk.go
//
// Local-disk Sink.
//
// Context
// -------
// Assets land under one flat directory with server-generated names:
// a UUID plus an extension derived from the declared content type.
// Writes go to a ".part" temp file first and are renamed into place
// only after a full, uncanceled write, so a client disconnect mid-
// upload can never leave a half-written file behind a live name.

package upload

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/metrics"
)

// Disk writes uploads beneath a single directory.
type Disk struct {
	dir string
}

var _ Sink = (*Disk)(nil)

// NewDisk ensures dir exists and returns a Disk sink.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{dir: dir}, nil
}

// Store implements Sink.
func (d *Disk) Store(ctx context.Context, contentType string, data []byte) (string, error) {
	name := uuid.NewString() + extensionFor(contentType)
	tmp := filepath.Join(d.dir, name+".part")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}

	// The rename is the finalize step.  A canceled request stops here
	// and the .part file is left for the cleanup job.
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, filepath.Join(d.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	metrics.UploadBytesTotal.Add(float64(len(data)))
	return name, nil
}

// extensionFor maps the handful of content types the site accepts onto
// file extensions.  Unknown types get ".bin" rather than trusting any
// client-supplied filename.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "audio/mpeg":
		return ".mp3"
	case "video/mp4":
		return ".mp4"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
