package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultCacheTTL  = 60 * time.Second
	DefaultCacheSize = 1024
	maxErrorBody     = 64 << 10
)

// Params are query parameters. They are part of the cache key.
type Params map[string]string

// Config configures a Client. Zero values fall back to the defaults above.
type Config struct {
	BaseURL    string // e.g. http://localhost:3000/api
	Timeout    time.Duration
	CacheTTL   time.Duration
	CacheSize  int
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

type cachedResponse struct {
	status int
	body   []byte
}

// Client talks to the roomtour API. GET responses are memoized for CacheTTL.
type Client struct {
	base  *url.URL
	http  *http.Client
	cache *expirable.LRU[string, cachedResponse]
	log   zerolog.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &SetupError{Err: fmt.Errorf("invalid base URL %q", cfg.BaseURL)}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		base:  base,
		http:  httpClient,
		cache: expirable.NewLRU[string, cachedResponse](cfg.CacheSize, nil, cfg.CacheTTL),
		log:   cfg.Logger,
	}, nil
}

// CacheKey renders "get:<path>:<params as JSON>". Map keys are sorted by
// encoding/json, so equal params give equal keys.
func CacheKey(method, path string, params Params) string {
	if params == nil {
		params = Params{}
	}
	encoded, _ := json.Marshal(params)
	return strings.ToLower(method) + ":" + path + ":" + string(encoded)
}

// ClearCache drops every memoized response.
func (c *Client) ClearCache() {
	c.cache.Purge()
	c.log.Debug().Msg("API cache cleared")
}

// ClearCacheFor drops the GET response of path+params and reports whether
// one was cached.
func (c *Client) ClearCacheFor(path string, params Params) bool {
	deleted := c.cache.Remove(CacheKey(http.MethodGet, path, params))
	c.log.Debug().Str("path", path).Bool("deleted", deleted).Msg("API cache entry cleared")
	return deleted
}

func (c *Client) resolve(path string, params Params) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Get fetches path and decodes the JSON body into dest, serving from cache
// when a fresh copy exists.
func (c *Client) Get(ctx context.Context, path string, params Params, dest interface{}) error {
	key := CacheKey(http.MethodGet, path, params)
	if hit, ok := c.cache.Get(key); ok {
		c.log.Debug().Str("path", path).Msg("Using cached response")
		return decode(hit.body, dest)
	}

	status, body, err := c.send(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return err
	}
	c.cache.Add(key, cachedResponse{status: status, body: body})
	return decode(body, dest)
}

func (c *Client) Post(ctx context.Context, path string, in, dest interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, dest)
}

func (c *Client) Put(ctx context.Context, path string, in, dest interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, dest)
}

func (c *Client) Patch(ctx context.Context, path string, in, dest interface{}) error {
	return c.sendJSON(ctx, http.MethodPatch, path, in, dest)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, _, err := c.send(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, dest interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &SetupError{Err: fmt.Errorf("encode body: %w", err)}
	}
	_, body, err := c.send(ctx, method, path, nil, payload, "application/json")
	if err != nil {
		return err
	}
	return decode(body, dest)
}

// File is one part of a multipart upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// PostFiles sends files under field as multipart/form-data.
func (c *Client) PostFiles(ctx context.Context, path, field string, files []File, dest interface{}) error {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return &SetupError{Err: fmt.Errorf("create part %s: %w", f.Name, err)}
		}
		if _, err := part.Write(f.Data); err != nil {
			return &SetupError{Err: fmt.Errorf("write part %s: %w", f.Name, err)}
		}
	}
	if err := w.Close(); err != nil {
		return &SetupError{Err: fmt.Errorf("close multipart: %w", err)}
	}

	_, body, err := c.send(ctx, http.MethodPost, path, nil, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		return err
	}
	return decode(body, dest)
}

func (c *Client) send(ctx context.Context, method, path string, params Params, payload []byte, contentType string) (int, []byte, error) {
	target := c.resolve(path, params)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, &SetupError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.log.Debug().Str("method", method).Str("url", target).Msg("API request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("method", method).Str("url", target).Msg("API request got no response")
		return 0, nil, &NetworkError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		c.log.Warn().Str("method", method).Str("url", target).Int("status", resp.StatusCode).Msg("API error")
		return resp.StatusCode, nil, newResponseError(method, target, resp.StatusCode, body)
	}
	return resp.StatusCode, body, nil
}

func decode(body []byte, dest interface{}) error {
	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
