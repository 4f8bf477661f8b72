package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// ProgressFunc receives the upload percentage, 0 to 100.
type ProgressFunc func(percent float64)

// progressReader reports bytesRead/total as the HTTP transport consumes the body.
// Reported values never go down and the last one is always 100.
type progressReader struct {
	r     io.Reader
	total int64
	fn    ProgressFunc

	mu   sync.Mutex
	sent int64
	last float64
	done bool
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn, last: -1}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)

	p.mu.Lock()
	p.sent += int64(n)
	switch {
	case p.total <= 0:
		// unknown size, only the final 100 is reported
	case p.sent >= p.total:
		p.emit(100)
	default:
		p.emit(float64(p.sent) * 100 / float64(p.total))
	}
	if err == io.EOF {
		p.emit(100)
	}
	p.mu.Unlock()

	return n, err
}

// emit must be called with mu held.
func (p *progressReader) emit(pct float64) {
	if p.fn == nil || p.done || pct <= p.last {
		return
	}
	p.last = pct
	if pct >= 100 {
		p.done = true
	}
	p.fn(pct)
}

// UploadedImage is an object in the images bucket.
type UploadedImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// UploadImage sends the image bytes straight to the images bucket. size is the
// body length in bytes and drives the progress fraction.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, body io.Reader, size int64, progress ProgressFunc) (*UploadedImage, error) {
	pr := newProgressReader(body, size, progress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/storage/images", pr)
	if err != nil {
		return nil, fmt.Errorf("client.UploadImage: create request: %w", err)
	}
	if size > 0 {
		req.ContentLength = size
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-File-Name", filename)

	var out UploadedImage
	if err := c.send(req, &out); err != nil {
		return nil, fmt.Errorf("client.UploadImage: %w", err)
	}
	pr.mu.Lock()
	pr.emit(100)
	pr.mu.Unlock()
	return &out, nil
}

// DeleteImage removes an image the signed-in user uploaded.
func (c *Client) DeleteImage(ctx context.Context, key string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/storage/images/"+url.PathEscape(key), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteImage: %w", err)
	}
	return nil
}
