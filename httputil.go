package expenses

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
)

// http utils for the bank feed clients.

// diskCache is a day-scoped disk cache for HTTP responses. The cache key
// embeds today's date, so entries expire by never being looked up again.
//
// Only GET responses are cached: the token endpoints are POSTs and replaying
// one of those from disk would hand out a stale access token.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}

	key := fmt.Sprintf("%s %s %s", Today(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("method", resp.Request.Method).Str("host", resp.Request.URL.Host).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		logger.Debug().Err(err).Msg("cache write failed, ignored")
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	// Cached responses are bank data, keep them owner-only like the ledger.
	return os.WriteFile(filepath.Join(os.TempDir(), key), content, 0o600)
}

// CachedClient returns an http.Client whose GET responses are cached on disk
// until the end of the day. Listing accounts and fetching transaction pages
// are idempotent for a given URL, re-running a sync should not hammer the
// provider.
func CachedClient() *http.Client {
	return &http.Client{Transport: &diskCache{http.DefaultTransport}}
}
