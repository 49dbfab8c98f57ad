package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/pkg/helpers"
)

const ctxIdentityKey = "identity"

// Identify reads a bearer token (or the access cookie) and stores the
// verified identity in the context. Requests without a valid token pass
// through anonymously; Authorize decides whether that is acceptable.
func Identify(tokens application.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			c.Next()
			return
		}
		id, err := tokens.Verify(tok)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}
		c.Set(ctxIdentityKey, &id)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil {
		return tok
	}
	return ""
}

// IdentityFrom returns the verified caller, or nil when anonymous.
func IdentityFrom(c *gin.Context) *entity.Identity {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*entity.Identity)
	return id
}

// OwnerFunc resolves the id of the account that owns the target resource.
type OwnerFunc func(c *gin.Context) (int64, error)

// OwnerFromParam reads the owner id from a path parameter.
func OwnerFromParam(name string) OwnerFunc {
	return func(c *gin.Context) (int64, error) {
		return ParseID(c, name)
	}
}

// ParseID parses a positive int64 path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, oops.Code("INVALID_ID").With("param", name).Public("Invalid " + name).Wrap(ErrBadRequest)
	}
	return id, nil
}

// Check evaluates p for the current caller and writes the denial when it
// fails. It returns true when the request may proceed.
func Check(c *gin.Context, p application.Policy, ownerID int64) bool {
	if err := application.Authorize(IdentityFrom(c), p, ownerID); err != nil {
		Fail(c, err)
		return false
	}
	return true
}

// Authorize guards a route with p. Self-scoped policies resolve the owner
// through owner before the handler runs.
func Authorize(p application.Policy, owner OwnerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ownerID int64
		if p.SelfScoped && IdentityFrom(c) != nil {
			if owner == nil {
				Fail(c, oops.Code("POLICY_MISCONFIGURED").With("policy", p.Name).Errorf("self-scoped policy without owner"))
				return
			}
			id, err := owner(c)
			if err != nil {
				Fail(c, err)
				return
			}
			ownerID = id
		}
		if !Check(c, p, ownerID) {
			return
		}
		c.Next()
	}
}
