package handler

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourism-portal/internal/auth"
    "github.com/iliyamo/tourism-portal/internal/repository"
    "github.com/iliyamo/tourism-portal/internal/validation"
)

// requestTimeout bounds the store work done for one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bindValid binds the request body into req and runs the registered validator.
func bindValid(c echo.Context, req any) error {
    if err := c.Bind(req); err != nil {
        return errBadBody
    }
    return c.Validate(req)
}

var errBadBody = errors.New("invalid body")

func parseID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, validation.Errors{"id": "must be a positive integer"}
    }
    return id, nil
}

// respondError translates domain errors into JSON responses. Anything it does
// not recognise is logged and reported as a 500 without detail.
func respondError(c echo.Context, log *slog.Logger, err error) error {
    var (
        verr      validation.Errors
        notActive *auth.AccountNotActiveError
    )
    switch {
    case errors.As(err, &verr):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": verr})
    case errors.Is(err, errBadBody):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    case errors.As(err, &notActive):
        return c.JSON(http.StatusForbidden, echo.Map{"error": notActive.Error()})
    case errors.Is(err, auth.ErrAuthenticationFailed):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrAuthenticationFailed.Error()})
    case errors.Is(err, auth.ErrSessionInvalid):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    case errors.Is(err, auth.ErrNoSession):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    case errors.Is(err, repository.ErrUsernameExists):
        return c.JSON(http.StatusConflict, echo.Map{"errors": validation.Errors{"username": "is already taken"}})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"errors": validation.Errors{"email": "is already registered"}})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
    }
    log.ErrorContext(c.Request().Context(), "request failed",
        "method", c.Request().Method, "path", c.Path(), "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
