package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/application"
	handlers "github.com/oksasatya/maisrole-api/internal/interface/http"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
)

type HostModule struct {
	Handler *handlers.HostHandler
	Limits  middleware.RateStore
}

func NewHostModule(h *handlers.HostHandler, limits middleware.RateStore) *HostModule {
	return &HostModule{Handler: h, Limits: limits}
}

func (m *HostModule) Register(rg *gin.RouterGroup) {
	credLimiter := middleware.RateLimit(m.Limits, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/hosts/register", credLimiter, m.Handler.Register)
	rg.POST("/hosts/login", credLimiter, m.Handler.Login)
	rg.GET("/hosts/all", m.Handler.GetAll)
	rg.GET("/hosts/:id", m.Handler.Get)

	self := middleware.OwnerFromParam("id")
	rg.PUT("/hosts/:id", middleware.Authorize(application.PolicyUpdateHost, self), m.Handler.Update)
	rg.DELETE("/hosts/:id", middleware.Authorize(application.PolicyDeleteHost, self), m.Handler.Delete)
}
