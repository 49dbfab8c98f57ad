package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

type ReviewRepository struct {
	store *Store
}

func NewReviewRepository(store *Store) *ReviewRepository {
	return &ReviewRepository{store: store}
}

func reviewNotFound(id int64) error {
	return oops.Code("REVIEW_NOT_FOUND").With("id", id).Public("Review not found").Wrap(domain.ErrNotFound)
}

func (r *ReviewRepository) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	var rv entity.Review
	err := r.store.conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, post_date, rating, text FROM reviews WHERE id = $1
	`, id).Scan(&rv.ID, &rv.AuthorID, &rv.PostDate, &rv.Rating, &rv.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, reviewNotFound(id)
	}
	if err != nil {
		return nil, translateError(err, "find review")
	}
	return &rv, nil
}

func (r *ReviewRepository) FindAllByAuthorID(ctx context.Context, authorID int64) ([]entity.Review, error) {
	rows, err := r.store.conn(ctx).Query(ctx, `
		SELECT id, user_id, post_date, rating, text FROM reviews WHERE user_id = $1 ORDER BY id
	`, authorID)
	if err != nil {
		return nil, translateError(err, "list reviews")
	}
	defer rows.Close()

	out := make([]entity.Review, 0)
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.AuthorID, &rv.PostDate, &rv.Rating, &rv.Text); err != nil {
			return nil, translateError(err, "scan review")
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "list reviews")
	}
	return out, nil
}

// Save inserts a new review. Reviews are immutable once posted.
func (r *ReviewRepository) Save(ctx context.Context, rv *entity.Review) error {
	if rv.ID != 0 {
		return oops.Code("REVIEW_IMMUTABLE").With("id", rv.ID).Errorf("reviews cannot be modified")
	}
	err := r.store.conn(ctx).QueryRow(ctx, `
		INSERT INTO reviews (user_id, rating, text)
		VALUES ($1, $2, $3)
		RETURNING id, post_date
	`, rv.AuthorID, rv.Rating, rv.Text).Scan(&rv.ID, &rv.PostDate)
	return translateError(err, "insert review")
}

func (r *ReviewRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.store.conn(ctx).Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "delete review")
	}
	if tag.RowsAffected() == 0 {
		return reviewNotFound(id)
	}
	return nil
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
