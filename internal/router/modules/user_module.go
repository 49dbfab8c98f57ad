package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/application"
	handlers "github.com/oksasatya/maisrole-api/internal/interface/http"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
)

// UserModule wires user accounts and their reviews.
// Public: POST /users/register, POST /users/login, POST /logout, GET /users/all, GET /users/:id
// Guarded: PUT|DELETE /users/:id, GET|POST /users/:id/reviews
type UserModule struct {
	Handler *handlers.UserHandler
	Reviews *handlers.ReviewHandler
	Limits  middleware.RateStore
}

func NewUserModule(h *handlers.UserHandler, reviews *handlers.ReviewHandler, limits middleware.RateStore) *UserModule {
	return &UserModule{Handler: h, Reviews: reviews, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	credLimiter := middleware.RateLimit(m.Limits, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP and route

	rg.POST("/users/register", credLimiter, m.Handler.Register)
	rg.POST("/users/login", credLimiter, m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)
	rg.GET("/users/all", m.Handler.GetAll)
	rg.GET("/users/:id", m.Handler.Get)

	self := middleware.OwnerFromParam("id")
	guarded := rg.Group("/users/:id")
	guarded.Use(middleware.RateLimit(m.Limits, 120, time.Minute, middleware.KeyByIdentity(), nil))
	{
		guarded.PUT("", middleware.Authorize(application.PolicyUpdateUser, self), m.Handler.Update)
		guarded.DELETE("", middleware.Authorize(application.PolicyDeleteUser, self), m.Handler.Delete)
		guarded.GET("/reviews", middleware.Authorize(application.PolicyListOwnReviews, self), m.Reviews.ListByAuthor)
		guarded.POST("/reviews", middleware.Authorize(application.PolicyPostReview, self), m.Reviews.Post)
	}
}
