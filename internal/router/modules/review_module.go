package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/application"
	handlers "github.com/oksasatya/maisrole-api/internal/interface/http"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
)

// ReviewModule serves reviews by their own id. Deletion checks identity and
// roles on the route; the author is matched once the review is loaded.
type ReviewModule struct {
	Handler *handlers.ReviewHandler
}

func NewReviewModule(h *handlers.ReviewHandler) *ReviewModule {
	return &ReviewModule{Handler: h}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	rg.GET("/reviews/:id", m.Handler.Get)
	rg.DELETE("/reviews/:id", middleware.Authorize(application.PolicyDeleteReview.Unscoped(), nil), m.Handler.Delete)
}
