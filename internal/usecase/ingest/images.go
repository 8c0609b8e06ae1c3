package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shelfstream/prodex/internal/domain"
	"github.com/shelfstream/prodex/internal/metrics"
	s3store "github.com/shelfstream/prodex/internal/storage/s3"
)

// maxImageBytes caps the size of a fetched remote image.
const maxImageBytes = 20 << 20

// ImageUploader resolves the three accepted image reference shapes into
// hosted object URLs. All images of one product upload concurrently; the
// first failure fails the whole product.
type ImageUploader struct {
	media      MediaStore
	httpClient *http.Client
	logger     *zap.Logger
}

// NewImageUploader creates an image uploader. timeout bounds each remote
// image fetch.
func NewImageUploader(media MediaStore, timeout time.Duration, logger *zap.Logger) *ImageUploader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ImageUploader{
		media:      media,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve implements ImageResolver. The returned slice matches refs by
// position.
func (u *ImageUploader) Resolve(ctx context.Context, tenantID, sku string, refs []string) ([]string, error) {
	urls := make([]string, len(refs))
	errs := make([]error, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, ref string) {
			defer wg.Done()
			url, err := u.resolveOne(ctx, tenantID, sku, idx, ref)
			urls[idx] = url
			errs[idx] = err
		}(i, ref)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			u.logger.Warn("Image upload failed",
				zap.String("tenant_id", tenantID),
				zap.String("sku", sku),
				zap.Int("index", i),
				zap.Error(err),
			)
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
	}
	return urls, nil
}

func (u *ImageUploader) resolveOne(ctx context.Context, tenantID, sku string, idx int, ref string) (string, error) {
	img, err := domain.ClassifyImageRef(ref)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("invalid", "error").Inc()
		return "", err
	}

	kind := kindLabel(img.Kind)

	data := img.Data
	contentType := img.ContentType()
	ext := extension(img)

	if img.Kind == domain.ImageRemoteURL {
		data, contentType, err = u.fetch(ctx, img.URL)
		if err != nil {
			metrics.ImageUploadsTotal.WithLabelValues(kind, "error").Inc()
			return "", err
		}
		ext = extensionFromContentType(contentType)
	}

	key := s3store.ObjectKey(tenantID, sku, idx, ext)
	url, err := u.media.Put(ctx, key, contentType, data)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", err
	}

	metrics.ImageUploadsTotal.WithLabelValues(kind, "success").Inc()
	return url, nil
}

func (u *ImageUploader) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("build image request: %w", err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func kindLabel(k domain.ImageRefKind) string {
	switch k {
	case domain.ImageRemoteURL:
		return "url"
	case domain.ImageDataURI:
		return "data_uri"
	default:
		return "base64"
	}
}

func extension(img domain.ImageRef) string {
	if img.Kind == domain.ImageRawBase64 {
		return "jpg"
	}
	return img.Subtype
}

func extensionFromContentType(contentType string) string {
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok || sub == "" {
		return "jpg"
	}
	return sub
}
