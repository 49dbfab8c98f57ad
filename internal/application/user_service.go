package application

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

// UserService is the only entry point that mutates a User aggregate.
type UserService struct {
	tx      repository.TxManager
	users   repository.UserRepository
	reviews repository.ReviewRepository
	creds   *CredentialStore
	hasher  PasswordHasher
	events  EventPublisher
	logger  *logrus.Logger
}

func NewUserService(
	tx repository.TxManager,
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	creds *CredentialStore,
	hasher PasswordHasher,
	events EventPublisher,
	logger *logrus.Logger,
) *UserService {
	if events == nil {
		events = NopPublisher{}
	}
	return &UserService{tx: tx, users: users, reviews: reviews, creds: creds, hasher: hasher, events: events, logger: logger}
}

type RegisterUserInput struct {
	Username     string
	Password     string
	PersonalData entity.UserPersonalData
}

// UpdateUserInput replaces only the fields that are set. Roles is applied
// only when non-nil; callers gate it with PolicyGrantRoles.
type UpdateUserInput struct {
	Username    *string
	Password    *string
	FirstName   *string
	LastName    *string
	DateOfBirth *string
	CellNumber  *string
	Email       *string
	Roles       []entity.Role
}

func userNotFound(id int64) error {
	return oops.Code("USER_NOT_FOUND").With("id", id).Public("User not found").Wrap(domain.ErrNotFound)
}

// Get returns the user with its reviews.
func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.FindAllByAuthorID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Reviews = reviews
	return u, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]entity.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return requireNonEmpty(users, oops.Code("NO_USERS").Public("No users registered").Wrap(domain.ErrNotFound))
}

// Register creates a user with the USER role. Any roles in the request are
// ignored.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (*entity.User, error) {
	u := &entity.User{
		Username:     strings.TrimSpace(in.Username),
		Roles:        entity.NewRoleSet(entity.RoleUser),
		PersonalData: in.PersonalData,
	}
	u.PersonalData.Email = NormalizeEmail(u.PersonalData.Email)
	if err := ValidateUsername(u.Username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.creds.CheckUsernameAvailable(ctx, u.Username); err != nil {
			return err
		}
		if err := s.creds.CheckEmailAvailable(ctx, u.PersonalData.Email, entity.ActorUser); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
		}
		u.PasswordHash = hash
		return s.users.Save(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	accountWrites.WithLabelValues("user", "register").Inc()
	s.publish(ctx, AccountEvent{
		Type: EventUserRegistered, Kind: entity.ActorUser, AccountID: u.ID,
		Email: u.PersonalData.Email, Name: u.PersonalData.FirstName,
	})
	return u, nil
}

// Update applies the set fields of in to user id. The review list is never
// touched. A missing id is NotFound.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	if in.Username != nil {
		if err := ValidateUsername(strings.TrimSpace(*in.Username)); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
	}
	if in.Roles != nil && len(in.Roles) == 0 {
		return nil, domain.Invalid("EMPTY_ROLES", "At least one role is required.")
	}
	var out *entity.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Username != nil {
			name := strings.TrimSpace(*in.Username)
			if name != u.Username {
				if err := s.creds.CheckUsernameAvailable(ctx, name); err != nil {
					return err
				}
				u.Username = name
			}
		}
		if in.Email != nil {
			email := NormalizeEmail(*in.Email)
			if email != u.PersonalData.Email {
				if err := s.creds.CheckEmailAvailable(ctx, email, entity.ActorUser); err != nil {
					return err
				}
				u.PersonalData.Email = email
			}
		}
		if in.Password != nil {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
			}
			u.PasswordHash = hash
		}
		setIf(&u.PersonalData.FirstName, in.FirstName)
		setIf(&u.PersonalData.LastName, in.LastName)
		setIf(&u.PersonalData.DateOfBirth, in.DateOfBirth)
		setIf(&u.PersonalData.CellNumber, in.CellNumber)
		if in.Roles != nil {
			u.Roles = entity.NewRoleSet(in.Roles...)
		}
		if err := s.users.Save(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	accountWrites.WithLabelValues("user", "update").Inc()
	return out, nil
}

// Delete removes the user and, through the aggregate, its personal data and
// reviews.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	var email, name string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		email, name = u.PersonalData.Email, u.PersonalData.FirstName
		return s.users.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	accountWrites.WithLabelValues("user", "delete").Inc()
	s.publish(ctx, AccountEvent{Type: EventUserDeleted, Kind: entity.ActorUser, AccountID: id, Email: email, Name: name})
	return nil
}

// publish is best effort; the write has already committed.
func (s *UserService) publish(ctx context.Context, ev AccountEvent) {
	publishEvent(ctx, s.events, s.logger, ev)
}

func publishEvent(ctx context.Context, pub EventPublisher, logger *logrus.Logger, ev AccountEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
			"event":      ev.Type,
			"account_id": ev.AccountID,
		}).Warn("account event publish failed")
	}
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
