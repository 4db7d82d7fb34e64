// Package source opens dataset locators (local paths, file:// and http(s)://
// URLs) as byte streams, transparently decompressing gzip content.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Reader is an opened source. Reads return decompressed content while
// BytesRead and Size report the raw transfer, which is what progress
// displays can compare.
type Reader struct {
	Locator    string
	Compressed bool

	r       io.Reader
	raw     *countingReader
	size    int64
	closers []io.Closer
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

// BytesRead returns the raw bytes consumed from the underlying file or response.
func (r *Reader) BytesRead() int64 {
	return r.raw.n.Load()
}

// Size returns the raw size of the source, or -1 when unknown.
func (r *Reader) Size() int64 {
	return r.size
}

// Close releases the decompressor and the underlying file or response body.
func (r *Reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Opener opens locators. The zero value uses http.DefaultClient.
type Opener struct {
	Client *http.Client
}

// Open opens locator with the default Opener.
func Open(ctx context.Context, locator string) (*Reader, error) {
	return (&Opener{}).Open(ctx, locator)
}

// Open resolves locator to a byte stream. Failures are returned as
// *csvingest.DecodeError: an unreachable source cannot be decoded.
func (o *Opener) Open(ctx context.Context, locator string) (*Reader, error) {
	body, size, err := o.openRaw(ctx, locator)
	if err != nil {
		return nil, &csvingest.DecodeError{Source: locator, Err: err}
	}

	raw := &countingReader{r: body}
	br := bufio.NewReaderSize(raw, 64*1024)
	rd := &Reader{
		Locator: locator,
		r:       br,
		raw:     raw,
		size:    size,
		closers: []io.Closer{body},
	}

	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		rd.Close()
		return nil, &csvingest.DecodeError{Source: locator, Err: fmt.Errorf("read header bytes: %w", err)}
	}
	if len(magic) == len(gzipMagic) && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		zr, err := gzip.NewReader(br)
		if err != nil {
			rd.Close()
			return nil, &csvingest.DecodeError{Source: locator, Err: fmt.Errorf("open gzip stream: %w", err)}
		}
		rd.r = zr
		rd.Compressed = true
		rd.closers = append(rd.closers, zr)
	}

	return rd, nil
}

func (o *Opener) openRaw(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	switch {
	case IsURL(locator):
		return o.openHTTP(ctx, locator)
	case strings.HasPrefix(locator, "file://"):
		u, err := url.Parse(locator)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid file URL: %w", err)
		}
		return openFile(u.Path)
	default:
		return openFile(locator)
	}
}

func (o *Opener) openHTTP(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", csvingest.DefaultAppName)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("getting via http: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("got status %s via http GET", resp.Status)
	}

	size := resp.ContentLength
	if size < 0 || resp.Uncompressed {
		size = -1
	}
	return resp.Body, size, nil
}

func openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat file: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	return f, st.Size(), nil
}

// IsURL reports whether locator is fetched over HTTP.
func IsURL(locator string) bool {
	l := strings.ToLower(locator)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
