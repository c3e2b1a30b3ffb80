package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/aquasync-backend/internal/pkg/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext makes every request correlatable: incoming trace and
// request ids are honored, the active otel span fills the trace gap, and
// fresh ids cover the rest. Both ids echo back on the response headers.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := resolveTraceID(c)
		reqID := headerOrNew(c, headerRequestID)

		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func headerOrNew(c *gin.Context, header string) string {
	if v := strings.TrimSpace(c.GetHeader(header)); v != "" {
		return v
	}
	return uuid.New().String()
}

func resolveTraceID(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(headerTraceID)); v != "" {
		return v
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.New().String()
}
