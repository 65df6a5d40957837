// Package assets uploads report screenshots to the asset backend, which answers with the public
// URLs the issue body embeds.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/httpclient"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultEndpoint = "https://asset-upload.deckverified.games/"

	MaxImageBytes       = 1 << 20
	MaxImagesPerRequest = 7

	maxConcurrentBatches = 2
	formField            = "images"
	fallbackMIME         = "image/jpeg"
	userAgent            = "deckreport/asset-uploader"
)

// Uploader turns local image paths into public URLs. The result is a set: its order carries no
// relation to the input order.
type Uploader interface {
	Upload(ctx context.Context, paths []string, token string) ([]string, error)
}

type file struct {
	name string
	mime string
	data []byte
}

type uploadResponse struct {
	Results []struct {
		URL string `json:"url"`
	} `json:"results"`
}

type HTTPUploader struct {
	endpoint string
	client   httpclient.HTTPClient
}

var _ Uploader = (*HTTPUploader)(nil)

func NewUploader(endpoint string, client httpclient.HTTPClient) *HTTPUploader {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{endpoint: endpoint, client: client}
}

// Upload reads every path, skipping anything that is not a regular file, and posts them in
// batches of MaxImagesPerRequest. The returned URLs follow batch order. A single image over MaxImageBytes fails the whole upload before
// any request is made.
func (u *HTTPUploader) Upload(ctx context.Context, paths []string, token string) ([]string, error) {
	files, err := collect(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []string{}, nil
	}

	batches := chunk(files, MaxImagesPerRequest)
	results := make([][]string, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentBatches)

	for i, batch := range batches {
		g.Go(func() error {
			got, err := u.postBatch(gctx, i, batch, token)
			if err != nil {
				return err
			}
			results[i] = got
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error(ctx, "asset upload failed", err, "images_count", len(files))
		return nil, domainErrors.ErrUploadFailed.WithError(err)
	}

	// URLs keep the order of the selected images regardless of which batch finished first.
	urls := make([]string, 0, len(files))
	for _, got := range results {
		urls = append(urls, got...)
	}

	logger.Debug(ctx, "assets uploaded", "images_count", len(files), "urls_count", len(urls))
	return urls, nil
}

func collect(ctx context.Context, paths []string) ([]file, error) {
	files := make([]file, 0, len(paths))
	for _, raw := range paths {
		p := NormalizePath(raw)
		info, err := os.Stat(p)
		if p == "" || err != nil || !info.Mode().IsRegular() {
			logger.Warn(ctx, "skipping non-file image", "path", p)
			continue
		}
		if info.Size() > MaxImageBytes {
			return nil, tooLarge(p, info.Size())
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, domainErrors.ErrUploadFailed.WithError(err).WithContext("path", p)
		}
		if len(data) > MaxImageBytes {
			return nil, tooLarge(p, int64(len(data)))
		}

		name := filepath.Base(p)
		if name == "" || name == "." || name == string(filepath.Separator) {
			name = "image-" + strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		files = append(files, file{name: name, mime: guessMIME(data), data: data})
	}
	return files, nil
}

func tooLarge(path string, size int64) error {
	return domainErrors.ErrImageTooLarge.
		WithContext("detail", fmt.Sprintf("%s is %d bytes (max %d)", filepath.Base(path), size, MaxImageBytes)).
		WithContext("path", path)
}

// NormalizePath strips a file:// scheme from a selected screenshot path.
func NormalizePath(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), "file://")
}

func guessMIME(data []byte) string {
	m := mimetype.Detect(data)
	if strings.HasPrefix(m.String(), "image/") {
		return m.String()
	}
	return fallbackMIME
}

func chunk(files []file, size int) [][]file {
	var out [][]file
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		out = append(out, files[start:end])
	}
	return out
}

func (u *HTTPUploader) postBatch(ctx context.Context, idx int, batch []file, token string) ([]string, error) {
	body, contentType, err := encodeMultipart(batch)
	if err != nil {
		return nil, fmt.Errorf("error encoding batch %d: %w", idx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error uploading batch %d: %w", idx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading upload response for batch %d: %w", idx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("asset upload failed for batch %d: %d\n%s", idx, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed uploadResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON from server (batch %d): %w", idx, err)
	}
	urls := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(batch []file) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.SetBoundary("----deckreport-" + strings.ReplaceAll(uuid.NewString(), "-", "")); err != nil {
		return nil, "", err
	}
	for _, f := range batch {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, formField, quoteEscaper.Replace(f.name)))
		h.Set("Content-Type", f.mime)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
