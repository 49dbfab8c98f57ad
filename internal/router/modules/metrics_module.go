package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
)

type MetricsModule struct {
	Limits middleware.RateStore
}

func NewMetricsModule(limits middleware.RateStore) *MetricsModule {
	return &MetricsModule{Limits: limits}
}

func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	// Public Prometheus endpoint, rate-limited per IP
	rl := middleware.RateLimit(m.Limits, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/metrics", rl, gin.WrapH(promhttp.Handler()))
}
