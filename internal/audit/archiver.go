// Package audit archives raw model output to Google Cloud Storage so
// degraded normalizations can be inspected after the fact. Archiving is
// best-effort: failures are logged and never surface to the request.
package audit

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GCSArchiver writes model output to a GCS bucket.
type GCSArchiver struct {
	bucket string
	log    zerolog.Logger
}

// NewGCSArchiver returns an archiver for the given bucket, or nil when
// no bucket is configured.
func NewGCSArchiver(bucket string, log zerolog.Logger) *GCSArchiver {
	if bucket == "" {
		return nil
	}
	return &GCSArchiver{bucket: bucket, log: log}
}

// Archive writes the raw text to
// gs://<bucket>/model-output/<kind>/<date>/<uuid>.txt.
func (a *GCSArchiver) Archive(ctx context.Context, kind, raw string) {
	objectName := fmt.Sprintf("model-output/%s/%s/%s.txt",
		kind, time.Now().Format("2006/01/02"), uuid.NewString())

	client, err := storage.NewClient(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("Failed to create storage client for audit archive")
		return
	}
	defer client.Close()

	wc := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "text/plain"
	if _, err := wc.Write([]byte(raw)); err != nil {
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to write audit object")
		wc.Close()
		return
	}
	if err := wc.Close(); err != nil {
		a.log.Warn().Err(err).Str("object", objectName).Msg("Failed to finalize audit object")
		return
	}

	a.log.Debug().
		Str("gcs_uri", fmt.Sprintf("gs://%s/%s", a.bucket, objectName)).
		Msg("Archived model output")
}
