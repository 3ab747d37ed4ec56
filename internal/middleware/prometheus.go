package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// 请求次数，按功能区与状态码分组
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stackqa_http_requests_total",
			Help: "HTTP requests by feature area, route and status",
		},
		[]string{"area", "method", "route", "status"},
	)

	// 响应耗时
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stackqa_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"area", "method"},
	)

	httpRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stackqa_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpRequestsInFlight)
}

// routeArea groups route templates by feature so dashboards can split
// vote traffic from search and feed traffic.
func routeArea(route string) string {
	route = strings.TrimPrefix(route, "/api/v1")
	switch {
	case strings.HasPrefix(route, "/posts/"):
		return "votes"
	case route == "/questions/search":
		return "search"
	case strings.HasPrefix(route, "/questions/feed/"):
		return "feeds"
	case route == "/bookmarks", strings.HasSuffix(route, "/bookmark"):
		return "bookmarks"
	case strings.HasPrefix(route, "/questions"), strings.HasPrefix(route, "/answers/"):
		return "posts"
	case route == "":
		return "unmatched"
	}
	return "system"
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath() // 路由模板，避免 id 撑爆标签
		if route == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		area := routeArea(route)
		if route == "" {
			route = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(area, c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(area, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
