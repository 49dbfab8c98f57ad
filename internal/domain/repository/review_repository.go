package repository

import (
	"context"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

type ReviewRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Review, error)
	// FindAllByAuthorID returns the author's reviews ordered by id ascending.
	FindAllByAuthorID(ctx context.Context, authorID int64) ([]entity.Review, error)
	Save(ctx context.Context, r *entity.Review) error
	DeleteByID(ctx context.Context, id int64) error
}
