package application

import (
	"context"
	"strings"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

// HostService is the only entry point that mutates a Host aggregate.
type HostService struct {
	tx     repository.TxManager
	hosts  repository.HostRepository
	creds  *CredentialStore
	hasher PasswordHasher
	events EventPublisher
	logger *logrus.Logger
}

func NewHostService(
	tx repository.TxManager,
	hosts repository.HostRepository,
	creds *CredentialStore,
	hasher PasswordHasher,
	events EventPublisher,
	logger *logrus.Logger,
) *HostService {
	if events == nil {
		events = NopPublisher{}
	}
	return &HostService{tx: tx, hosts: hosts, creds: creds, hasher: hasher, events: events, logger: logger}
}

type RegisterHostInput struct {
	Name     string
	Password string
	Contact  entity.Contact
	Agenda   []entity.Weekday
}

// UpdateHostInput replaces only the fields that are set. A non-nil Agenda
// replaces the whole weekday set.
type UpdateHostInput struct {
	Name      *string
	Password  *string
	Email     *string
	Phone     *string
	Mobile    *string
	Instagram *string
	Facebook  *string
	Agenda    []entity.Weekday
}

func (s *HostService) Get(ctx context.Context, id int64) (*entity.Host, error) {
	h, err := s.hosts.FindByID(ctx, id)
	if err != nil {
		return nil, oops.With("id", id).Wrap(err)
	}
	return h, nil
}

func (s *HostService) GetAll(ctx context.Context) ([]entity.Host, error) {
	hosts, err := s.hosts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return requireNonEmpty(hosts, oops.Code("NO_HOSTS").Public("No hosts registered").Wrap(domain.ErrNotFound))
}

func (s *HostService) Register(ctx context.Context, in RegisterHostInput) (*entity.Host, error) {
	h := &entity.Host{
		Name:    strings.TrimSpace(in.Name),
		Contact: in.Contact,
		Agenda:  entity.NewAgenda(in.Agenda...),
	}
	h.Contact.Email = NormalizeEmail(h.Contact.Email)
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.creds.CheckEmailAvailable(ctx, h.Contact.Email, entity.ActorHost); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
		}
		h.PasswordHash = hash
		return s.hosts.Save(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	accountWrites.WithLabelValues("host", "register").Inc()
	publishEvent(ctx, s.events, s.logger, AccountEvent{
		Type: EventHostRegistered, Kind: entity.ActorHost, AccountID: h.ID,
		Email: h.Contact.Email, Name: h.Name,
	})
	return h, nil
}

func (s *HostService) Update(ctx context.Context, id int64, in UpdateHostInput) (*entity.Host, error) {
	if in.Password != nil {
		if err := ValidatePassword(*in.Password); err != nil {
			return nil, err
		}
	}
	var out *entity.Host
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		h, err := s.hosts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Email != nil {
			email := NormalizeEmail(*in.Email)
			if email != h.Contact.Email {
				if err := s.creds.CheckEmailAvailable(ctx, email, entity.ActorHost); err != nil {
					return err
				}
				h.Contact.Email = email
			}
		}
		if in.Password != nil {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
			}
			h.PasswordHash = hash
		}
		setIf(&h.Name, in.Name)
		setIf(&h.Contact.Phone, in.Phone)
		setIf(&h.Contact.Mobile, in.Mobile)
		setIf(&h.Contact.Instagram, in.Instagram)
		setIf(&h.Contact.Facebook, in.Facebook)
		if in.Agenda != nil {
			h.Agenda = entity.NewAgenda(in.Agenda...)
		}
		if err := s.hosts.Save(ctx, h); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	accountWrites.WithLabelValues("host", "update").Inc()
	return out, nil
}

// Delete removes the host together with its contact and agenda.
func (s *HostService) Delete(ctx context.Context, id int64) error {
	var email, name string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		h, err := s.hosts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		email, name = h.Contact.Email, h.Name
		return s.hosts.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	accountWrites.WithLabelValues("host", "delete").Inc()
	publishEvent(ctx, s.events, s.logger, AccountEvent{Type: EventHostDeleted, Kind: entity.ActorHost, AccountID: id, Email: email, Name: name})
	return nil
}
