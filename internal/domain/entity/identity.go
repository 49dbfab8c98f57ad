package entity

// ActorKind distinguishes the two account aggregates.
type ActorKind string

const (
	ActorUser ActorKind = "user"
	ActorHost ActorKind = "host"
)

// Identity is the authenticated principal carried by a token.
type Identity struct {
	ID    int64
	Kind  ActorKind
	Roles RoleSet
}
