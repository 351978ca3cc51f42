package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware 记录每个请求的次数与耗时，路由取注册时的模板路径避免标签爆炸
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Handler 返回 /metrics 处理器
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
