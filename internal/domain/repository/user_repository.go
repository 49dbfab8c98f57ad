package repository

import (
	"context"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

// UserRepository persists the User aggregate together with its personal data
// and role set. Lookups of a missing row return domain.ErrNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts when u.ID is zero and updates otherwise; u.ID is set on insert.
	Save(ctx context.Context, u *entity.User) error
	DeleteByID(ctx context.Context, id int64) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
