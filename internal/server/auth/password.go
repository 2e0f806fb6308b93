package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func NewSalt() ([]byte, error) {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id key from password and salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword compares in constant time.
func VerifyPassword(password, salt, hash []byte) bool {
	candidate := HashPassword(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
