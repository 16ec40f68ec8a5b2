package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasuganosora/modguard/audit"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"

	// maxTraceIDLen bounds caller-supplied trace IDs so a hostile client
	// cannot stuff arbitrary blobs into the audit log.
	maxTraceIDLen = 64
)

// TraceID attaches a trace ID to every request. A caller-supplied
// X-Trace-ID is honored when it fits the length bound, so punishment
// actions triggered from the game server keep one ID across both logs;
// otherwise a fresh UUID is minted. The ID is echoed on the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" || len(id) > maxTraceIDLen {
			id = uuid.New().String()
		}
		c.Set(TraceIDKey, id)
		c.Header(TraceIDHeader, id)
		// Carry the ID and client address down to whatever logs audit
		// entries on this request.
		ctx := audit.WithRequestInfo(c.Request.Context(), id, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTraceID returns the request's trace ID, or "" outside the middleware.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		return v.(string)
	}
	return ""
}
