package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/unilib/pkg/metrics"
	"github.com/xiebiao/unilib/pkg/tracing"
)

// Metrics HTTP请求指标中间件
// 按(method, path, status)维度统计请求数与耗时
// path用路由模板(/api/v1/books/:id)而不是实际URL,避免标签基数爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()

		c.Next()

		metrics.HTTPRequestsInProgress.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求归并到一个桶
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": status,
		})
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// Tracing 分布式追踪中间件
// 为每个请求创建根Span,TraceID写回响应头便于排查
func Tracing(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		spanName := c.Request.Method + " " + c.FullPath()
		ctx, span := tracing.StartSpan(c.Request.Context(), serviceName, spanName)
		defer span.End()

		// 下游的存储调用通过Request Context挂到同一条Trace
		c.Request = c.Request.WithContext(ctx)

		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			c.Header("X-Trace-ID", traceID)
		}

		c.Next()
	}
}
