package application

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

// CredentialStore answers uniqueness questions against current persisted
// state. Call it inside the write transaction; the unique constraints in
// storage catch whatever races past it.
type CredentialStore struct {
	users repository.UserRepository
	hosts repository.HostRepository
}

func NewCredentialStore(users repository.UserRepository, hosts repository.HostRepository) *CredentialStore {
	return &CredentialStore{users: users, hosts: hosts}
}

// Credential bounds. Usernames are counted in characters after trimming;
// passwords are capped in bytes because bcrypt reads at most 72.
const (
	MinUsernameLen   = 5
	MaxUsernameLen   = 30
	MinPasswordLen   = 8
	MaxPasswordBytes = 72
)

// ValidateUsername checks an already trimmed username against the length bounds.
func ValidateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < MinUsernameLen || n > MaxUsernameLen {
		return oops.Code("INVALID_USERNAME").With("length", n).
			Public("Username must be between " + strconv.Itoa(MinUsernameLen) + " and " + strconv.Itoa(MaxUsernameLen) + " characters long.").
			Wrap(domain.ErrInvalidInput)
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return domain.Invalid("PASSWORD_TOO_SHORT", "Password must be at least "+strconv.Itoa(MinPasswordLen)+" characters long.")
	}
	if len(password) > MaxPasswordBytes {
		return domain.Invalid("PASSWORD_TOO_LONG", "Password must be at most "+strconv.Itoa(MaxPasswordBytes)+" bytes long.")
	}
	return nil
}

// NormalizeEmail is applied to every email before it is stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialStore) CheckUsernameAvailable(ctx context.Context, username string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return oops.Code("USERNAME_TAKEN").With("username", username).Public(domain.MsgUsernameTaken).Wrap(domain.ErrAlreadyExists)
	}
	return nil
}

// CheckEmailAvailable checks the email against the aggregate of the given
// kind only. A user and a host may share an address.
func (s *CredentialStore) CheckEmailAvailable(ctx context.Context, email string, kind entity.ActorKind) error {
	email = NormalizeEmail(email)
	var (
		taken bool
		err   error
		msg   string
	)
	switch kind {
	case entity.ActorHost:
		taken, err = s.hosts.ExistsByEmail(ctx, email)
		msg = domain.MsgHostCredentialTaken
	default:
		taken, err = s.users.ExistsByEmail(ctx, email)
		msg = domain.MsgEmailTaken
	}
	if err != nil {
		return err
	}
	if taken {
		return oops.Code("EMAIL_TAKEN").With("kind", kind).Public(msg).Wrap(domain.ErrAlreadyExists)
	}
	return nil
}
