package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

var userColumns = []string{
	"id", "username", "password_hash", "created_at", "updated_at",
	"first_name", "last_name", "date_of_birth", "cell_number", "email", "roles",
}

func TestUserRepository_FindByID(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *entity.User
		wantKind  error
	}{
		{
			name: "found with roles",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(userColumns).
					AddRow(int64(7), "alice01", "hash", now, now, "Alice", "Doe", "1990-01-01", "555", "alice@example.com", []string{"ADMIN", "USER"})
				mock.ExpectQuery(`FROM users u`).WithArgs(int64(7)).WillReturnRows(rows)
			},
			want: &entity.User{
				ID:           7,
				Username:     "alice01",
				PasswordHash: "hash",
				Roles:        entity.NewRoleSet(entity.RoleAdmin, entity.RoleUser),
				PersonalData: entity.UserPersonalData{
					FirstName: "Alice", LastName: "Doe", DateOfBirth: "1990-01-01",
					CellNumber: "555", Email: "alice@example.com",
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		{
			name: "missing row is not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users u`).WithArgs(int64(8)).
					WillReturnRows(pgxmock.NewRows(userColumns))
			},
			wantKind: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			repo := NewUserRepository(NewStore(mock))
			id := int64(7)
			if tt.wantKind != nil {
				id = 8
			}
			got, err := repo.FindByID(context.Background(), id)
			if tt.wantKind != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows(userColumns).
		AddRow(int64(1), "first", "h1", now, now, "", "", "", "", "a@x.io", []string{"USER"}).
		AddRow(int64(2), "second", "h2", now, now, "", "", "", "", "b@x.io", []string{})
	mock.ExpectQuery(`ORDER BY u.id`).WillReturnRows(rows)

	users, err := NewUserRepository(NewStore(mock)).FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.True(t, users[0].Roles.Has(entity.RoleUser))
	assert.Empty(t, users[1].Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SaveInsert(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantMsg   string
	}{
		{
			name: "inserts root, personal data and roles in one transaction",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).WithArgs("newuser", "hashed").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
				mock.ExpectExec(`INSERT INTO user_personal_data`).
					WithArgs(int64(42), "New", "User", "2000-02-02", "123", "new@example.com").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`INSERT INTO user_roles`).WithArgs(int64(42), []string{"USER"}).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "unique violation on email becomes already exists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).WithArgs("newuser", "hashed").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
				mock.ExpectExec(`INSERT INTO user_personal_data`).
					WithArgs(int64(42), "New", "User", "2000-02-02", "123", "new@example.com").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintUserEmail})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrAlreadyExists,
			wantMsg: "Email already taken.",
		},
		{
			name: "check violation on username length becomes invalid input",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).WithArgs("newuser", "hashed").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: constraintUsernameLen})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrInvalidInput,
			wantMsg: "Username must be between 5 and 30 characters long.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			u := &entity.User{
				Username:     "newuser",
				PasswordHash: "hashed",
				Roles:        entity.NewRoleSet(entity.RoleUser),
				PersonalData: entity.UserPersonalData{
					FirstName: "New", LastName: "User", DateOfBirth: "2000-02-02",
					CellNumber: "123", Email: "new@example.com",
				},
			}
			err = NewUserRepository(NewStore(mock)).Save(context.Background(), u)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, domain.Message(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(42), u.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_SaveUpdateMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE users SET username`).WithArgs("ghost", "h", int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))
	mock.ExpectRollback()

	u := &entity.User{ID: 99, Username: "ghost", PasswordHash: "h"}
	err = NewUserRepository(NewStore(mock)).Save(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteByID(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		dbErr    error
		wantKind error
	}{
		{name: "deleted", affected: 1},
		{name: "missing", affected: 0, wantKind: domain.ErrNotFound},
		{name: "storage fault propagates", dbErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec(`DELETE FROM users WHERE id`).WithArgs(int64(3))
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))
			}

			err = NewUserRepository(NewStore(mock)).DeleteByID(context.Background(), 3)
			switch {
			case tt.dbErr != nil:
				require.Error(t, err)
				assert.False(t, domain.IsKnown(err))
				assert.Contains(t, err.Error(), "connection reset")
			case tt.wantKind != nil:
				assert.ErrorIs(t, err, tt.wantKind)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM user_personal_data WHERE email`).WithArgs("taken@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewUserRepository(NewStore(mock)).ExistsByEmail(context.Background(), "taken@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
