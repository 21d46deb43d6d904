package cryptox

import (
	"crypto/hmac"

	"github.com/avolkovs/keepsake/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Account passwords use bcrypt; share passwords use argon2id with the salt
// stored in front of the hash. The two live side by side because account
// hashes carry a scheme version in the users table, while a share hash is a
// single opaque blob on a short-lived row.

// AccountPasswordScheme is the current scheme version stored next to each
// account hash. Bump it when the bcrypt cost (or algorithm) changes so
// existing hashes can be migrated on next login.
const AccountPasswordScheme = 1

const accountBcryptCost = 12

// HashAccountPassword hashes an account password with bcrypt.
func HashAccountPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, accountBcryptCost)
}

// VerifyAccountPassword reports whether password matches the stored bcrypt hash.
func VerifyAccountPassword(hash, password []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

// HashSharePassword hashes a share password with argon2id. The result is
// salt || digest in one slice.
func HashSharePassword(password string) []byte {
	salt := common.GenerateRandByteArray(saltSize)
	digest := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	out := make([]byte, 0, len(salt)+len(digest))
	out = append(out, salt...)
	return append(out, digest...)
}

// VerifySharePassword reports whether password matches a HashSharePassword
// result. An empty or short stored hash never matches.
func VerifySharePassword(stored []byte, password string) bool {
	if len(stored) <= saltSize {
		return false
	}
	salt := stored[:saltSize]
	digest := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hmac.Equal(stored[saltSize:], digest)
}
