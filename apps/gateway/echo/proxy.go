package echogw

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/offline"
)

// staticAsset is how static responses are stored in the staticCache
// collection: body base64-encoded inside the record's JSON document.
type staticAsset struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

const appShellKey = "/"

// forwarded end-to-end; everything else hop-local is dropped
var forwardedHeaders = []string{"Authorization", "Content-Type", "Accept", "X-Idempotency-Key"}

// handleAPI applies the network-first policy: try upstream, copy a
// successful response into the API cache, fall back to the last cached
// copy for this exact request, else synthesize an offline placeholder.
func (s *server) handleAPI(ctx echo.Context) error {
	req := ctx.Request()
	path := strings.TrimPrefix(req.URL.Path, "/api")
	cacheKey := apiCacheKey(req.Method, path, req.URL.RawQuery)

	resp, body, err := s.forwardAPI(req, path)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		s.deps.Monitor.SetOnline(true)
		if req.Method == http.MethodGet {
			rec := offline.Record{ID: cacheKey, Data: body, StoredAt: time.Now().UTC()}
			if perr := s.deps.Store.Put(req.Context(), offline.CollectionAPICache, rec); perr != nil {
				s.deps.Logger.Warn(fmt.Sprintf("gateway: caching %q failed: %v", cacheKey, perr), perr)
			}
		}
		return ctx.Blob(resp.StatusCode, contentTypeOf(resp), body)
	}
	if err != nil {
		// transport-level failure is our offline signal
		s.deps.Monitor.SetOnline(false)
		s.deps.Logger.Debug(fmt.Sprintf("gateway: upstream unreachable for %s: %v", path, err))
	}

	if rec, gerr := s.deps.Store.Get(req.Context(), offline.CollectionAPICache, cacheKey); gerr == nil && rec != nil && s.fresh(*rec) {
		return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSON, rec.Data)
	}

	return s.offlinePlaceholder(ctx, path)
}

func (s *server) forwardAPI(req *http.Request, path string) (*http.Response, []byte, error) {
	target := s.deps.Conf.Upstream.BaseURL + path
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}

	var body io.Reader
	if req.Body != nil {
		defer func() { _ = req.Body.Close() }()
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, nil, err
		}
		if len(data) > 0 {
			body = bytes.NewReader(data)
		}
	}

	upReq, err := http.NewRequestWithContext(req.Context(), req.Method, target, body)
	if err != nil {
		return nil, nil, err
	}
	for _, h := range forwardedHeaders {
		if v := req.Header.Get(h); v != "" {
			upReq.Header.Set(h, v)
		}
	}

	resp, err := s.client.Do(upReq)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, data, nil
}

// handleStatic applies the cache-first policy: serve from the static
// cache, otherwise fetch the asset, store a copy and return it. When both
// fail, navigation requests get the cached application shell.
func (s *server) handleStatic(ctx echo.Context) error {
	req := ctx.Request()
	key := req.URL.Path

	if asset, ok := s.cachedAsset(ctx, key); ok {
		return ctx.Blob(http.StatusOK, asset.ContentType, asset.Body)
	}

	asset, err := s.fetchStatic(ctx, key)
	if err == nil {
		return ctx.Blob(http.StatusOK, asset.ContentType, asset.Body)
	}
	s.deps.Logger.Debug(fmt.Sprintf("gateway: static fetch %q failed: %v", key, err))

	if isNavigation(req) {
		if shell, ok := s.cachedAsset(ctx, appShellKey); ok {
			return ctx.Blob(http.StatusOK, shell.ContentType, shell.Body)
		}
	}
	return echo.NewHTTPError(http.StatusServiceUnavailable, "asset unavailable offline")
}

func (s *server) cachedAsset(ctx echo.Context, key string) (staticAsset, bool) {
	rec, err := s.deps.Store.Get(ctx.Request().Context(), offline.CollectionStaticCache, key)
	if err != nil || rec == nil {
		return staticAsset{}, false
	}
	var asset staticAsset
	if err = json.Unmarshal(rec.Data, &asset); err != nil {
		return staticAsset{}, false
	}
	return asset, true
}

func (s *server) fetchStatic(ctx echo.Context, key string) (staticAsset, error) {
	req, err := http.NewRequestWithContext(ctx.Request().Context(), http.MethodGet, s.deps.Conf.Upstream.AppBaseURL+key, nil)
	if err != nil {
		return staticAsset{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return staticAsset{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return staticAsset{}, fmt.Errorf("fetching %s: %s", key, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return staticAsset{}, err
	}
	asset := staticAsset{ContentType: contentTypeOf(resp), Body: body}
	if err = offline.PutValue(ctx.Request().Context(), s.deps.Store, offline.CollectionStaticCache, key, asset); err != nil {
		s.deps.Logger.Warn(fmt.Sprintf("gateway: caching asset %q failed: %v", key, err), err)
	}
	return asset, nil
}

// fresh applies the configured staleness bound; zero serves indefinitely.
func (s *server) fresh(rec offline.Record) bool {
	maxAge := s.deps.Conf.Offline.CacheMaxAge
	if maxAge <= 0 {
		return true
	}
	return time.Now().UTC().Sub(rec.StoredAt) <= maxAge
}

// apiCacheKey is the request identity shared with the preloader's
// write-ahead entries.
func apiCacheKey(method, path, rawQuery string) string {
	key := method + " " + path
	if rawQuery != "" {
		key += "?" + rawQuery
	}
	return key
}

func contentTypeOf(resp *http.Response) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return echo.MIMEApplicationJSON
}

func isNavigation(req *http.Request) bool {
	return req.Method == http.MethodGet && strings.Contains(req.Header.Get("Accept"), "text/html")
}
