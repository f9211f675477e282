package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding and decoding functions
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidAccessToken is returned by ParseAccessToken for any malformed,
// expired or wrongly signed token.
var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// RefreshToken is an opaque long-lived token. Raw goes to the client; only
// its SHA‑256 hash is persisted.
type RefreshToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// AccessClaims are the claims carried by access tokens. Subject holds the
// decimal user id.
type AccessClaims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c AccessClaims) UserID() (uint64, error) {
    return strconv.ParseUint(c.Subject, 10, 64)
}

// NewAccessToken builds and signs an HS256 JWT for a user with sub, role,
// exp and iat claims.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := AccessClaims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, algorithm and expiry and returns the
// claims.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
    claims := &AccessClaims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return nil, ErrInvalidAccessToken
    }
    if _, err := claims.UserID(); err != nil {
        return nil, ErrInvalidAccessToken
    }
    return claims, nil
}

// NewRefreshToken returns a cryptographically secure random token valid for ttl.
func NewRefreshToken(ttl time.Duration) (RefreshToken, error) {
    raw, err := randomHex(48) // 48 bytes -> 96 hex chars
    if err != nil {
        return RefreshToken{}, err
    }
    return RefreshToken{Raw: raw, Exp: time.Now().UTC().Add(ttl)}, nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as hex.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
