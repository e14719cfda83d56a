package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin/pkg/middleware/requestid"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
)

// ResponseMeta seeds the per-request metadata map that JSON handlers attach
// to the envelope.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := map[string]interface{}{}
		if id := requestid.Value(c); id != "" {
			meta["request_id"] = id
		}
		c.Set(responseMetaKey, meta)
		c.Set("response_started", time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the backend read was served from the query cache.
func SetCacheHit(c *gin.Context, hit bool) {
	ensureMeta(c)[cacheHitKey] = hit
}

// Meta returns the metadata for the current response, stamping the elapsed
// processing time.
func Meta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := ensureMeta(c)
	if started, ok := c.Get("response_started"); ok {
		if ts, ok := started.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(ts).Milliseconds()
		}
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if raw, exists := c.Get(responseMetaKey); exists {
		if typed, ok := raw.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
