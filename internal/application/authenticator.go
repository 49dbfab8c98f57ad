package application

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

// Authenticator verifies presented credentials against the repositories on
// every call. It keeps no session state.
type Authenticator struct {
	users  repository.UserRepository
	hosts  repository.HostRepository
	hasher PasswordHasher
	logger *logrus.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticator(users repository.UserRepository, hosts repository.HostRepository, hasher PasswordHasher, logger *logrus.Logger) *Authenticator {
	return &Authenticator{users: users, hosts: hosts, hasher: hasher, logger: logger}
}

// AuthenticateUser checks a username and password. An unknown username is
// NotFound and a wrong password is Unauthorized; both carry the same message.
func (a *Authenticator) AuthenticateUser(ctx context.Context, username, password string) (*entity.User, error) {
	const msg = "Incorrect username or password"
	u, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.burnDummyVerify(password)
			authAttempts.WithLabelValues(string(entity.ActorUser), "not_found").Inc()
			return nil, oops.Code("ACCOUNT_NOT_FOUND").Public(msg).Wrap(domain.ErrNotFound)
		}
		return nil, err
	}
	if err := a.verify(u.PasswordHash, password, entity.ActorUser, msg); err != nil {
		return nil, err
	}
	a.upgradeHash(ctx, u.PasswordHash, password, func(hash string) error {
		return a.users.UpdatePasswordHash(ctx, u.ID, hash)
	})
	return u, nil
}

// AuthenticateHost checks a contact email and password.
func (a *Authenticator) AuthenticateHost(ctx context.Context, email, password string) (*entity.Host, error) {
	const msg = "Incorrect email or password"
	h, err := a.hosts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.burnDummyVerify(password)
			authAttempts.WithLabelValues(string(entity.ActorHost), "not_found").Inc()
			return nil, oops.Code("ACCOUNT_NOT_FOUND").Public(msg).Wrap(domain.ErrNotFound)
		}
		return nil, err
	}
	if err := a.verify(h.PasswordHash, password, entity.ActorHost, msg); err != nil {
		return nil, err
	}
	a.upgradeHash(ctx, h.PasswordHash, password, func(hash string) error {
		return a.hosts.UpdatePasswordHash(ctx, h.ID, hash)
	})
	return h, nil
}

func (a *Authenticator) verify(hash, password string, kind entity.ActorKind, msg string) error {
	ok, err := a.hasher.Verify(hash, password)
	if err != nil {
		return oops.Code("PASSWORD_VERIFY_FAILED").With("kind", kind).Wrap(err)
	}
	if !ok {
		authAttempts.WithLabelValues(string(kind), "mismatch").Inc()
		return oops.Code("INVALID_CREDENTIALS").Public(msg).Wrap(domain.ErrUnauthorized)
	}
	authAttempts.WithLabelValues(string(kind), "success").Inc()
	return nil
}

// burnDummyVerify spends one hash comparison so that a missing account takes
// as long as a wrong password.
func (a *Authenticator) burnDummyVerify(password string) {
	a.dummyOnce.Do(func() {
		h, err := a.hasher.Hash("maisrole-timing-equalizer")
		if err != nil {
			a.logger.WithError(err).Warn("dummy hash generation failed")
			return
		}
		a.dummyHash = h
	})
	if a.dummyHash != "" {
		_, _ = a.hasher.Verify(a.dummyHash, password)
	}
}

// upgradeHash re-stores the credential when the configured algorithm changed.
// Failure leaves the old hash in place.
func (a *Authenticator) upgradeHash(ctx context.Context, hash, password string, store func(string) error) {
	if !a.hasher.NeedsRehash(hash) {
		return
	}
	fresh, err := a.hasher.Hash(password)
	if err == nil {
		err = store(fresh)
	}
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).Warn("password rehash failed")
	}
}
