package middleware

// identity.go exposes the identity stored by JWTAuth to handlers and to the
// rate limiter key builder.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// CurrentUserID returns the authenticated user id, or false for anonymous
// requests.
func CurrentUserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// CurrentRole returns the role claim of the authenticated user.
func CurrentRole(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// userKey is the user part of rate limit keys. Anonymous callers share "anon".
func userKey(c echo.Context) string {
    if id, ok := CurrentUserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
