package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHTTPCacheTTL     = time.Hour
	defaultHTTPCacheMaxBody = 1 << 20 // 1 MiB
)

// CacheBackend is the slice of the redis client the HTTP cache needs.
type CacheBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CacheKeyFunc derives the cache key for a request. Returning ok=false
// bypasses the cache for that request.
type CacheKeyFunc func(c *gin.Context) (key string, ok bool)

// HTTPCacheOptions tunes the response cache.
type HTTPCacheOptions struct {
	TTL          time.Duration
	MaxBodyBytes int
}

type cachedHTTPResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.maxBodyBytes <= 0 || w.overflow || len(data) == 0 {
		return
	}
	remaining := w.maxBodyBytes - len(w.body)
	if remaining <= 0 || len(data) > remaining {
		w.overflow = true
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache caches successful GET responses in redis under the key keyFn
// derives, so a write path holding the same key can invalidate the cached
// copy with a single DEL. Only 200 responses are stored: a rejection or an
// error must never be served stale.
func HTTPCache(backend CacheBackend, log *zap.Logger, opts HTTPCacheOptions, keyFn CacheKeyFunc) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultHTTPCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}

	return func(c *gin.Context) {
		if backend == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key, ok := keyFn(c)
		if !ok {
			c.Next()
			return
		}

		if payload, hit := readCachedResponse(c.Request.Context(), backend, key); hit {
			c.Header("x-bx-cache", "hit")
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{
			ResponseWriter: c.Writer,
			maxBodyBytes:   opts.MaxBodyBytes,
		}
		c.Writer = buffer
		c.Next()

		if c.Writer.Status() != http.StatusOK || buffer.overflow || len(buffer.body) == 0 {
			return
		}

		payload := cachedHTTPResponse{
			Status:      http.StatusOK,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if err := backend.Set(c.Request.Context(), key, raw, opts.TTL); err != nil {
			log.Warn("response cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func readCachedResponse(ctx context.Context, backend CacheBackend, key string) (cachedHTTPResponse, bool) {
	raw, err := backend.Get(ctx, key)
	if err != nil || raw == "" {
		return cachedHTTPResponse{}, false
	}
	var payload cachedHTTPResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return cachedHTTPResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedHTTPResponse{}, false
	}
	payload.Body = body
	return payload, true
}
