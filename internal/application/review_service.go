package application

import (
	"context"
	"strings"

	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

type ReviewService struct {
	tx      repository.TxManager
	reviews repository.ReviewRepository
	users   repository.UserRepository
}

func NewReviewService(tx repository.TxManager, reviews repository.ReviewRepository, users repository.UserRepository) *ReviewService {
	return &ReviewService{tx: tx, reviews: reviews, users: users}
}

// ListByAuthor returns the user's reviews ordered by id. No reviews is NotFound.
func (s *ReviewService) ListByAuthor(ctx context.Context, userID int64) ([]entity.Review, error) {
	reviews, err := s.reviews.FindAllByAuthorID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return requireNonEmpty(reviews, oops.Code("NO_REVIEWS").With("user_id", userID).
		Public("User has no reviews posted.").Wrap(domain.ErrNotFound))
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*entity.Review, error) {
	return s.reviews.FindByID(ctx, id)
}

// Post adds a review authored by userID. The post date is set by storage.
func (s *ReviewService) Post(ctx context.Context, userID int64, rating int, text string) (*entity.Review, error) {
	rv := &entity.Review{AuthorID: userID, Rating: rating, Text: strings.TrimSpace(text)}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.users.ExistsByID(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return userNotFound(userID)
		}
		return s.reviews.Save(ctx, rv)
	})
	if err != nil {
		return nil, err
	}
	accountWrites.WithLabelValues("review", "post").Inc()
	return rv, nil
}

// DeleteOwned loads the review, authorizes caller against its author under
// PolicyDeleteReview and deletes it, all in one transaction.
func (s *ReviewService) DeleteOwned(ctx context.Context, id int64, caller *entity.Identity) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rv, err := s.reviews.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := Authorize(caller, PolicyDeleteReview, rv.AuthorID); err != nil {
			return err
		}
		return s.reviews.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	accountWrites.WithLabelValues("review", "delete").Inc()
	return nil
}
