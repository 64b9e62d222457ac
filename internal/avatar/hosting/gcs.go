// Package hosting is the image-hosting collaborator: it normalises uploads
// and stores them in a Cloud Storage bucket, returning a public URL.
package hosting

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"contactbook/internal/platform/config"
)

const uploadTimeout = 2 * time.Minute

// GCSHost uploads avatars to a single bucket. An object is overwritten on
// every upload and the URL carries its generation, so each upload yields a
// distinct URL.
type GCSHost struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	size          int
	logger        *slog.Logger
}

// NewGCS opens a storage client. With EmulatorHost set it talks to a local
// emulator without credentials.
func NewGCS(ctx context.Context, cfg config.ImageHostingConfig, logger *slog.Logger) (*GCSHost, error) {
	var opts []option.ClientOption
	emulator := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	switch {
	case emulator != "":
		if !strings.Contains(emulator, "://") {
			emulator = "http://" + emulator
		}
		opts = append(opts,
			option.WithEndpoint(emulator+"/storage/v1/"),
			option.WithoutAuthentication(),
		)
	case cfg.CredentialsFile != "":
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(storage.ScopeReadWrite),
		)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" && emulator != "" {
		base = emulator
	}
	if base == "" {
		base = "https://storage.googleapis.com"
	}

	logger.InfoContext(ctx, "image hosting initialized",
		"bucket", cfg.Bucket,
		"emulator_host", emulator,
		"public_base_url", base,
		"size", cfg.Size,
	)

	return &GCSHost{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: base,
		size:          cfg.Size,
		logger:        logger,
	}, nil
}

// Upload crops raw to the configured square size, writes it as
// <publicID>.png and returns its versioned public URL.
func (h *GCSHost) Upload(ctx context.Context, publicID string, raw []byte) (string, error) {
	processed, err := Fill(raw, h.size)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := ObjectKey(publicID)
	w := h.client.Bucket(h.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/png"
	w.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(w, bytes.NewReader(processed)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write avatar to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close GCS writer: %w", err)
	}

	var generation int64
	if attrs := w.Attrs(); attrs != nil {
		generation = attrs.Generation
	}
	return PublicURL(h.publicBaseURL, h.bucket, key, generation), nil
}

// Close releases the storage client.
func (h *GCSHost) Close() error {
	return h.client.Close()
}

// ObjectKey is the object name for a public id.
func ObjectKey(publicID string) string {
	return strings.TrimLeft(publicID, "/") + ".png"
}

// PublicURL builds base/bucket/key with each key segment escaped. A non-zero
// generation is appended as ?v= so clients never reuse a stale image.
func PublicURL(base, bucket, key string, generation int64) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u := fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(bucket), strings.Join(segments, "/"))
	if generation != 0 {
		u += "?v=" + strconv.FormatInt(generation, 10)
	}
	return u
}
