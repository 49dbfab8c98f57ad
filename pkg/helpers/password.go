package helpers

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgoBcrypt   = "bcrypt"
	AlgoArgon2id = "argon2id"
)

// PasswordHasher hashes with one configured algorithm and verifies hashes of
// either supported format, so stored credentials survive an algorithm switch.
type PasswordHasher struct {
	Algorithm  string
	BcryptCost int
	Argon2     *argon2id.Params
}

func NewPasswordHasher(algorithm string, bcryptCost int) *PasswordHasher {
	if algorithm != AlgoArgon2id {
		algorithm = AlgoBcrypt
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordHasher{Algorithm: algorithm, BcryptCost: bcryptCost, Argon2: argon2id.DefaultParams}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	if h.Algorithm == AlgoArgon2id {
		s, err := argon2id.CreateHash(plain, h.Argon2)
		if err != nil {
			return "", oops.Code("HASH_FAILED").With("algorithm", AlgoArgon2id).Wrap(err)
		}
		return s, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.BcryptCost)
	if err != nil {
		return "", oops.Code("HASH_FAILED").With("algorithm", AlgoBcrypt).Wrap(err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A mismatch is not an error.
func (h *PasswordHasher) Verify(hash, plain string) (bool, error) {
	switch algorithmOf(hash) {
	case AlgoArgon2id:
		ok, err := argon2id.ComparePasswordAndHash(plain, hash)
		if err != nil {
			return false, oops.Code("HASH_INVALID").With("algorithm", AlgoArgon2id).Wrap(err)
		}
		return ok, nil
	case AlgoBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, oops.Code("HASH_INVALID").With("algorithm", AlgoBcrypt).Wrap(err)
		}
		return true, nil
	}
	return false, oops.Code("HASH_INVALID").Errorf("unrecognised password hash format")
}

func (h *PasswordHasher) NeedsRehash(hash string) bool {
	algo := algorithmOf(hash)
	if algo != h.Algorithm {
		return true
	}
	if algo == AlgoBcrypt {
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost != h.BcryptCost
	}
	return false
}

func algorithmOf(hash string) string {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return AlgoArgon2id
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return AlgoBcrypt
	}
	return ""
}
