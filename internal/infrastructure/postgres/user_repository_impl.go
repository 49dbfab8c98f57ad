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

const selectUser = `
	SELECT u.id, u.username, u.password_hash, u.created_at, u.updated_at,
	       p.first_name, p.last_name, p.date_of_birth, p.cell_number, p.email,
	       COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles
	FROM users u
	JOIN user_personal_data p ON p.user_id = u.id
	LEFT JOIN user_roles r ON r.user_id = u.id
`

const groupUser = ` GROUP BY u.id, p.user_id`

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u     entity.User
		roles []string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		&u.PersonalData.FirstName, &u.PersonalData.LastName, &u.PersonalData.DateOfBirth,
		&u.PersonalData.CellNumber, &u.PersonalData.Email, &roles)
	if err != nil {
		return nil, err
	}
	u.Roles = entity.NewRoleSet()
	for _, r := range roles {
		if role, ok := entity.ParseRole(r); ok {
			u.Roles[role] = struct{}{}
		}
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	row := r.store.conn(ctx).QueryRow(ctx, selectUser+where+groupUser, arg)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("key", arg).Public("User not found").Wrap(domain.ErrNotFound)
	}
	if err != nil {
		return nil, translateError(err, "find user")
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.findOne(ctx, ` WHERE u.id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, ` WHERE u.username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, ` WHERE p.email = $1`, email)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	rows, err := r.store.conn(ctx).Query(ctx, selectUser+groupUser+` ORDER BY u.id`)
	if err != nil {
		return nil, translateError(err, "list users")
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translateError(err, "scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "list users")
	}
	return users, nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.store.conn(ctx).QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, translateError(err, "exists")
	}
	return ok, nil
}

func (r *UserRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM user_personal_data WHERE email = $1)`, email)
}

// Save writes the root row, the personal data row and the role set in one
// transaction.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		if u.ID == 0 {
			return r.insert(ctx, u)
		}
		return r.update(ctx, u)
	})
}

func (r *UserRepository) insert(ctx context.Context, u *entity.User) error {
	q := r.store.conn(ctx)
	err := q.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return translateError(err, "insert user")
	}
	pd := u.PersonalData
	if _, err := q.Exec(ctx, `
		INSERT INTO user_personal_data (user_id, first_name, last_name, date_of_birth, cell_number, email)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, pd.FirstName, pd.LastName, pd.DateOfBirth, pd.CellNumber, pd.Email); err != nil {
		return translateError(err, "insert personal data")
	}
	return r.writeRoles(ctx, u.ID, u.Roles)
}

func (r *UserRepository) update(ctx context.Context, u *entity.User) error {
	q := r.store.conn(ctx)
	err := q.QueryRow(ctx, `
		UPDATE users SET username = $1, password_hash = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, u.Username, u.PasswordHash, u.ID).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("USER_NOT_FOUND").With("id", u.ID).Public("User not found").Wrap(domain.ErrNotFound)
	}
	if err != nil {
		return translateError(err, "update user")
	}
	pd := u.PersonalData
	if _, err := q.Exec(ctx, `
		UPDATE user_personal_data
		SET first_name = $1, last_name = $2, date_of_birth = $3, cell_number = $4, email = $5
		WHERE user_id = $6
	`, pd.FirstName, pd.LastName, pd.DateOfBirth, pd.CellNumber, pd.Email, u.ID); err != nil {
		return translateError(err, "update personal data")
	}
	if _, err := q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, u.ID); err != nil {
		return translateError(err, "clear roles")
	}
	return r.writeRoles(ctx, u.ID, u.Roles)
}

func (r *UserRepository) writeRoles(ctx context.Context, userID int64, roles entity.RoleSet) error {
	if len(roles) == 0 {
		return nil
	}
	_, err := r.store.conn(ctx).Exec(ctx, `
		INSERT INTO user_roles (user_id, role)
		SELECT $1, unnest($2::text[])
	`, userID, roles.Strings())
	return translateError(err, "insert roles")
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.store.conn(ctx).Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return translateError(err, "update password")
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Public("User not found").Wrap(domain.ErrNotFound)
	}
	return nil
}

// DeleteByID removes the user; personal data, roles and reviews go with it
// through ON DELETE CASCADE.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.store.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Public("User not found").Wrap(domain.ErrNotFound)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
