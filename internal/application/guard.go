package application

import (
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

// Policy declares who may invoke an operation. SelfScoped additionally
// requires the caller to own the target resource. A non-empty Kind pins the
// policy to one actor kind.
type Policy struct {
	Name       string
	Roles      []entity.Role
	SelfScoped bool
	Kind       entity.ActorKind
}

// Declared policies, one per protected operation.
var (
	PolicyUpdateUser = Policy{
		Name: "users.update", Roles: []entity.Role{entity.RoleUser, entity.RoleAdmin},
		SelfScoped: true, Kind: entity.ActorUser,
	}
	PolicyDeleteUser = Policy{
		Name: "users.delete", Roles: []entity.Role{entity.RoleUser},
		SelfScoped: true, Kind: entity.ActorUser,
	}
	PolicyGrantRoles = Policy{
		Name: "users.grant_roles", Roles: []entity.Role{entity.RoleAdmin},
		Kind: entity.ActorUser,
	}
	PolicyListOwnReviews = Policy{
		Name: "reviews.list_own", Roles: []entity.Role{entity.RoleUser, entity.RoleAdmin},
		SelfScoped: true, Kind: entity.ActorUser,
	}
	PolicyPostReview = Policy{
		Name: "reviews.post", Roles: []entity.Role{entity.RoleUser},
		SelfScoped: true, Kind: entity.ActorUser,
	}
	PolicyDeleteReview = Policy{
		Name: "reviews.delete", Roles: []entity.Role{entity.RoleUser, entity.RoleAdmin},
		SelfScoped: true, Kind: entity.ActorUser,
	}
	PolicyUpdateHost = Policy{
		Name: "hosts.update", Roles: []entity.Role{entity.RoleHost},
		SelfScoped: true, Kind: entity.ActorHost,
	}
	PolicyDeleteHost = Policy{
		Name: "hosts.delete", Roles: []entity.Role{entity.RoleHost},
		SelfScoped: true, Kind: entity.ActorHost,
	}
)

// Unscoped returns p without the ownership requirement, for routes whose
// owner is only known after a lookup.
func (p Policy) Unscoped() Policy {
	p.SelfScoped = false
	return p
}

// Authorize decides whether id may act under p on a resource owned by
// ownerID. ownerID is ignored unless p is self-scoped. It returns nil to
// allow, and an Unauthenticated or Forbidden error to deny.
func Authorize(id *entity.Identity, p Policy, ownerID int64) error {
	err := decide(id, p, ownerID)
	decision := "allow"
	if err != nil {
		decision = "deny"
	}
	guardDecisions.WithLabelValues(p.Name, decision).Inc()
	return err
}

func decide(id *entity.Identity, p Policy, ownerID int64) error {
	if id == nil {
		return oops.Code("UNAUTHENTICATED").With("policy", p.Name).
			Public("Must log in").Wrap(domain.ErrUnauthenticated)
	}
	if p.Kind != "" && id.Kind != p.Kind {
		return oops.Code("FORBIDDEN_KIND").With("policy", p.Name).With("kind", id.Kind).
			Public("Access denied").Wrap(domain.ErrForbidden)
	}
	if !id.Roles.Intersects(p.Roles) {
		return oops.Code("FORBIDDEN_ROLE").With("policy", p.Name).With("roles", id.Roles.Strings()).
			Public("Access denied").Wrap(domain.ErrForbidden)
	}
	if p.SelfScoped && id.ID != ownerID {
		return oops.Code("FORBIDDEN_OWNER").With("policy", p.Name).With("identity", id.ID).With("owner", ownerID).
			Public("Access denied").Wrap(domain.ErrForbidden)
	}
	return nil
}
