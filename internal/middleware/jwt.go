package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/tourism-portal/internal/utils" // access token parsing
)

// Context keys set by JWTAuth.
const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.  The
// provided secret must match the one used when issuing tokens.  Handlers read
// the authenticated account via CurrentUserID and CurrentRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header looks like "Bearer <jwt>".
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            // ParseAccessToken only accepts HS256 and checks exp.
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            uid, err := claims.UserID()
            if err != nil || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(ctxUserID, uid)
            c.Set(ctxRole, claims.Role)
            return next(c)
        }
    }
}
