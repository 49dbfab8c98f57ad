package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
)

// Constraint names from db/migrations.
const (
	constraintUsername    = "uq_users_username"
	constraintUserEmail   = "uq_user_personal_data_email"
	constraintHostEmail   = "uq_host_contacts_email"
	constraintUsernameLen = "ck_users_username_len"
)

var uniqueMessages = map[string]string{
	constraintUsername:  domain.MsgUsernameTaken,
	constraintUserEmail: domain.MsgEmailTaken,
	constraintHostEmail: domain.MsgHostCredentialTaken,
}

var checkMessages = map[string]string{
	constraintUsernameLen: "Username must be between 5 and 30 characters long.",
}

// translateError turns a unique violation into domain.ErrAlreadyExists, a
// check violation into domain.ErrInvalidInput and codes every other failure
// as a storage fault.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
		msg, ok := checkMessages[pgErr.ConstraintName]
		if !ok {
			msg = "Invalid value."
		}
		return oops.Code("CHECK_VIOLATION").
			With("operation", op).
			With("constraint", pgErr.ConstraintName).
			Public(msg).
			Wrap(domain.ErrInvalidInput)
	}
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		msg, ok := uniqueMessages[pgErr.ConstraintName]
		if !ok {
			msg = "Resource already exists."
		}
		return oops.Code("UNIQUE_VIOLATION").
			With("operation", op).
			With("constraint", pgErr.ConstraintName).
			Public(msg).
			Wrap(domain.ErrAlreadyExists)
	}
	return oops.Code("DB_ERROR").With("operation", op).Wrap(err)
}
