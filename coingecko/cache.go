package coingecko

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/reserve/date"
	"github.com/rs/zerolog"
)

// diskCache is an http.RoundTripper caching successful responses on disk.
//
// Entries are keyed by the current UTC day, so they expire daily.
type diskCache struct {
	base   http.RoundTripper
	dir    string
	logger zerolog.Logger
	today  func() date.Date // nil is date.Today
}

func (c *diskCache) key(req *http.Request) string {
	today := date.Today
	if c.today != nil {
		today = c.today
	}
	day := today()
	return fmt.Sprintf("%s-%x", day, sha1.Sum([]byte(req.Method+" "+req.URL.String())))
}

// RoundTrip returns a cached response for the day, or performs the request and
// caches a successful response.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := c.key(req)
	if resp, err := c.get(key, req); err == nil {
		c.logger.Debug().Str("url", req.URL.Path).Msg("cache hit")
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.logger.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores resp on disk. DumpResponse leaves resp.Body readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
