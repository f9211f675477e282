package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash at the given cost. Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost. Passwords longer than 72
// bytes are rejected with bcrypt.ErrPasswordTooLong.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash never
// matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
