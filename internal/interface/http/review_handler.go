package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/interface/middleware"
	"github.com/oksasatya/maisrole-api/pkg/validation"
)

type reviewService interface {
	ListByAuthor(ctx context.Context, userID int64) ([]entity.Review, error)
	Get(ctx context.Context, id int64) (*entity.Review, error)
	Post(ctx context.Context, userID int64, rating int, text string) (*entity.Review, error)
	DeleteOwned(ctx context.Context, id int64, caller *entity.Identity) error
}

type ReviewHandler struct {
	Svc reviewService
}

func NewReviewHandler(svc reviewService) *ReviewHandler {
	return &ReviewHandler{Svc: svc}
}

type postReviewRequest struct {
	Rating *int   `json:"rating" binding:"required,rating"`
	Text   string `json:"text" binding:"max=2000"`
}

// ListByAuthor serves GET /users/:id/reviews.
func (h *ReviewHandler) ListByAuthor(c *gin.Context) {
	userID, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	reviews, err := h.Svc.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toReviewViews(reviews), "reviews")
}

// Post serves POST /users/:id/reviews; the path id is the author.
func (h *ReviewHandler) Post(c *gin.Context) {
	userID, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	var req postReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.FailValidation(c, validation.ToDetails(err))
		return
	}
	rv, err := h.Svc.Post(c.Request.Context(), userID, *req.Rating, req.Text)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusCreated, toReviewView(*rv), "review posted")
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	rv, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, toReviewView(*rv), "review")
}

// Delete expects the route to have checked identity and roles. Ownership is
// checked by the service against the review's author.
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := h.Svc.DeleteOwned(c.Request.Context(), id, middleware.IdentityFrom(c)); err != nil {
		middleware.Fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "review deleted")
}
