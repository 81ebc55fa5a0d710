package api

import (
	"context"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/kvasir-media/clipstream/internal/model"
)

// Upload issues a single multipart transfer to the type-selected endpoint
// and streams integer progress percentages (0–100, non-decreasing) to
// onProgress while the body is written. The terminal result is the return
// value, delivered exactly once, after all progress callbacks.
func (c *Client) Upload(ctx context.Context, kind model.VideoType, path, title, description string, onProgress func(pct int)) (*model.VideoRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat upload source: %w", err)
	}

	endpoint := "/api/videos/upload/long"
	if kind == model.TypeShort {
		endpoint = "/api/videos/upload/short"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		src := &progressReader{
			r:        f,
			total:    stat.Size(),
			report:   onProgress,
			lastSent: -1,
		}
		err := writeUploadBody(mw, src, filepath.Base(path), title, description)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.uploader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var out videoResponse
	// some deployments reply with just a message; the record is optional
	if err := decodeLoose(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return out.Video, nil
}

func writeUploadBody(mw *multipart.Writer, src io.Reader, filename, title, description string) error {
	part, err := mw.CreateFormFile("video", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	if err := mw.WriteField("title", title); err != nil {
		return err
	}
	return mw.WriteField("description", description)
}

// progressReader reports rounded integer percentages as file bytes are
// consumed. Reports are strictly increasing, so observers see a
// non-decreasing sequence ending at 100.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	lastSent int
	report   func(pct int)

	mu sync.Mutex
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.report != nil && p.total > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		pct := int(math.Round(float64(p.sent) * 100 / float64(p.total)))
		if pct > 100 {
			pct = 100
		}
		emit := pct > p.lastSent
		if emit {
			p.lastSent = pct
		}
		p.mu.Unlock()
		if emit {
			p.report(pct)
		}
	}
	return n, err
}
