package helpers

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
)

// JWTManager issues and verifies HS256 access tokens carrying an identity.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Issuer string

	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl, Issuer: issuer, now: time.Now}
}

type Claims struct {
	Kind  string   `json:"kind"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (m *JWTManager) Issue(id entity.Identity) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		Kind:  string(id.Kind),
		Roles: id.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			Issuer:    m.Issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return s, exp, nil
}

// Verify returns the identity in tokenStr. Any defect in the token is
// reported as domain.ErrUnauthenticated.
func (m *JWTManager) Verify(tokenStr string) (entity.Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, oops.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.Secret, nil
	}, jwt.WithIssuer(m.Issuer), jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return entity.Identity{}, invalidToken(err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return entity.Identity{}, invalidToken(err)
	}
	kind := entity.ActorKind(claims.Kind)
	if kind != entity.ActorUser && kind != entity.ActorHost {
		return entity.Identity{}, invalidToken(oops.Errorf("unknown actor kind %q", claims.Kind))
	}
	roles := entity.NewRoleSet()
	for _, r := range claims.Roles {
		if role, ok := entity.ParseRole(r); ok {
			roles[role] = struct{}{}
		}
	}
	return entity.Identity{ID: id, Kind: kind, Roles: roles}, nil
}

func invalidToken(cause error) error {
	b := oops.Code("TOKEN_INVALID").Public("Invalid or expired token")
	if cause != nil {
		b = b.With("cause", cause.Error())
	}
	return b.Wrap(domain.ErrUnauthenticated)
}
