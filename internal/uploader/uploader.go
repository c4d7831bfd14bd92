// Package uploader pushes product and bespoke-request images to the external
// CDN with bounded concurrency.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotConfigured is returned when no CDN endpoint was set.
var ErrNotConfigured = errors.New("cdn upload endpoint not configured")

// defaultConcurrency bounds the parallel uploads per batch.
const defaultConcurrency = 4

// Image is one file to upload.
type Image struct {
	Name string
	Data []byte
}

// Result is the settled outcome for one image. Exactly one of URL and Err is
// meaningful.
type Result struct {
	Name string
	URL  string
	Err  error
}

// Uploader sends images to the CDN upload endpoint.
type Uploader struct {
	endpoint   string
	limit      int
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates an uploader. A limit below one uses the default.
func New(endpoint string, limit int, logger *zap.Logger) *Uploader {
	if limit < 1 {
		limit = defaultConcurrency
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return &Uploader{
		endpoint:   strings.TrimRight(endpoint, "/"),
		limit:      limit,
		httpClient: rc.StandardClient(),
		logger:     logger,
	}
}

// UploadAll uploads every image concurrently, at most limit in flight. All
// uploads settle before returning; one failure does not abort the others.
// Results are returned in input order.
func (u *Uploader) UploadAll(ctx context.Context, images []Image) []Result {
	results := make([]Result, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.limit)

	for i, img := range images {
		g.Go(func() error {
			url, err := u.uploadOne(ctx, img)
			results[i] = Result{Name: img.Name, URL: url, Err: err}
			if err != nil {
				u.logger.Warn("image upload failed", zap.String("name", img.Name), zap.Error(err))
			}
			// Per-image failures are reported in the result, never via the
			// group, so the remaining uploads still run.
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (u *Uploader) uploadOne(ctx context.Context, img Image) (string, error) {
	if u.endpoint == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", img.Name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("upload status %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("cdn returned no url")
	}

	return out.URL, nil
}
