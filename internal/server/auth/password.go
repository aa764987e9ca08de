package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"secureshare/internal/common"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	hashLen      = 32
	saltLen      = 32
)

// HashPassword derives an argon2id hash of password under a fresh salt.
// Both are stored; the password itself never is.
func HashPassword(password []byte) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltLen)
	hash = argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, hashLen)
	return hash, salt
}

// VerifyPassword re-derives the hash from the candidate and compares in
// constant time.
func VerifyPassword(password, salt, expected []byte) bool {
	candidate := argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, hashLen)
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
