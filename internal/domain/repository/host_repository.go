package repository

import (
	"context"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

// HostRepository persists the Host aggregate with its contact and agenda.
type HostRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Host, error)
	FindByEmail(ctx context.Context, email string) (*entity.Host, error)
	FindAll(ctx context.Context) ([]entity.Host, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, h *entity.Host) error
	DeleteByID(ctx context.Context, id int64) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
