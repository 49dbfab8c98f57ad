package application

import (
	"context"
	"time"

	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

// PasswordHasher hashes and verifies account credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) (bool, error)
	// NeedsRehash reports whether hash was produced by a different algorithm
	// or cost than the hasher would use today.
	NeedsRehash(hash string) bool
}

// TokenIssuer signs and verifies access tokens.
type TokenIssuer interface {
	Issue(id entity.Identity) (token string, expiresAt time.Time, err error)
	Verify(token string) (entity.Identity, error)
}

// Account event types published after a write commits.
const (
	EventUserRegistered = "user.registered"
	EventHostRegistered = "host.registered"
	EventUserDeleted    = "user.deleted"
	EventHostDeleted    = "host.deleted"
)

type AccountEvent struct {
	Type       string
	Kind       entity.ActorKind
	AccountID  int64
	Email      string
	Name       string
	OccurredAt time.Time
}

type EventPublisher interface {
	Publish(ctx context.Context, ev AccountEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, AccountEvent) error { return nil }
