// Package storage abstracts where uploaded product images and branding assets live.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"
)

var ErrEmptyUpload = errors.New("upload is empty")

// ProgressFunc receives the uploaded fraction in [0, 1].
type ProgressFunc func(fraction float64)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Progress    ProgressFunc
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Key string
	URL string
}

// ObjectStorage abstracts blob storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, key string) error
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds "{folder}/{unixnano}_{filename}" with the filename reduced
// to a safe character set.
func ObjectKey(folder, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if name == "" || name == "." {
		name = "file"
	}
	return fmt.Sprintf("%s/%d_%s", folder, now.UnixNano(), name)
}

// progressReader reports the fraction of size consumed so far.
type progressReader struct {
	r        io.Reader
	size     int64
	read     int64
	report   ProgressFunc
	mu       sync.Mutex
	lastSent float64
}

func withProgress(r io.Reader, size int64, fn ProgressFunc) io.Reader {
	if fn == nil || size <= 0 {
		return r
	}
	return &progressReader{r: r, size: size, report: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		fraction := float64(p.read) / float64(p.size)
		if fraction > 1 {
			fraction = 1
		}
		send := fraction-p.lastSent >= 0.01 || (fraction == 1 && p.lastSent < 1)
		if send {
			p.lastSent = fraction
		}
		p.mu.Unlock()
		if send {
			p.report(fraction)
		}
	}
	return n, err
}
