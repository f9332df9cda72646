// Package upload transfers document content to an HTTP object store.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"onboarding/internal/onboarding/models"
	"onboarding/internal/onboarding/ports"
	dErrors "onboarding/pkg/domain-errors"
)

const defaultTimeout = 60 * time.Second

// HTTPUploader PUTs each file to <baseURL>/<object id>/<file name> and
// hashes the bytes while they stream.
type HTTPUploader struct {
	client  *http.Client
	baseURL *url.URL
}

type Option func(*HTTPUploader)

func WithHTTPClient(c *http.Client) Option {
	return func(u *HTTPUploader) {
		u.client = c
	}
}

func NewHTTPUploader(baseURL string, opts ...Option) (*HTTPUploader, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid upload base URL %q", baseURL)
	}
	u := &HTTPUploader{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: parsed,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

func (u *HTTPUploader) Upload(ctx context.Context, file models.UploadFile) (ports.UploadResult, error) {
	if file.Content == nil {
		return ports.UploadResult{}, dErrors.New(dErrors.CodeInvalidInput, "file has no content")
	}
	target := *u.baseURL
	target.Path = path.Join(target.Path, uuid.NewString(), path.Base(file.Name))

	h := sha256.New()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.String(), io.TeeReader(file.Content, h))
	if err != nil {
		return ports.UploadResult{}, fmt.Errorf("build upload request: %w", err)
	}
	if file.Size > 0 {
		req.ContentLength = file.Size
	}
	if file.MimeType != "" {
		req.Header.Set("Content-Type", file.MimeType)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return ports.UploadResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "document storage unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.UploadResult{}, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("document storage rejected upload with status %d", resp.StatusCode))
	}
	return ports.UploadResult{
		URL:  target.String(),
		Hash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
