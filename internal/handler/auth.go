package handler

import (
    "context"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourism-portal/internal/auth"
    "github.com/iliyamo/tourism-portal/internal/middleware"
    "github.com/iliyamo/tourism-portal/internal/model"
)

// Authenticator is the account flow behind the auth endpoints.
type Authenticator interface {
    Login(ctx context.Context, in auth.LoginInput) (*auth.Result, error)
    Logout(ctx context.Context, userID uint64, refreshRaw string) error
    Refresh(ctx context.Context, refreshRaw string) (*auth.Result, error)
    Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
}

// UserReader loads a single account.
type UserReader interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth  Authenticator
    Users UserReader
    Log   *slog.Logger
}

func NewAuthHandler(a Authenticator, users UserReader, log *slog.Logger) *AuthHandler {
    return &AuthHandler{Auth: a, Users: users, Log: log}
}

// ----- DTOs -----

type registerReq struct {
    Name                 string `json:"name" validate:"required,max=100"`
    Username             string `json:"username" validate:"required,min=3,max=50"`
    Email                string `json:"email" validate:"required,email,max=150"`
    Password             string `json:"password" validate:"required,min=8,max=72"`
    PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type loginReq struct {
    Identifier string `json:"identifier" validate:"required,max=150"`
    Password   string `json:"password" validate:"required"`
    Remember   bool   `json:"remember"`
}

type refreshReq struct {
    RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

// userView is the account shape returned to clients. The password hash never
// leaves the store layer.
type userView struct {
    ID           uint64 `json:"id"`
    Name         string `json:"name"`
    Username     string `json:"username"`
    Email        string `json:"email"`
    Role         string `json:"role"`
    Status       string `json:"status"`
    OnlineStatus string `json:"online_status"`
}

func newUserView(u *model.User) userView {
    return userView{
        ID:           u.ID,
        Name:         u.Name,
        Username:     u.Username,
        Email:        u.Email,
        Role:         u.RoleName,
        Status:       u.StatusLabel,
        OnlineStatus: u.OnlineDisplay(),
    }
}

type authResp struct {
    User     userView  `json:"user"`
    Access   tokenPart `json:"access"`
    Refresh  tokenPart `json:"refresh"`
    Remember bool      `json:"remember"`
}

func newAuthResp(r *auth.Result) authResp {
    return authResp{
        User:     newUserView(r.User),
        Access:   tokenPart{Token: r.Session.Access.Token, Expires: r.Session.Access.Exp},
        Refresh:  tokenPart{Token: r.Session.Refresh.Raw, Expires: r.Session.Refresh.Exp},
        Remember: r.Session.Remember,
    }
}

// Register creates a pending Tourist account. No tokens are issued: the
// account cannot log in until an administrator approves it.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, h.Log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Auth.Register(ctx, auth.RegisterInput{
        Name:     req.Name,
        Username: req.Username,
        Email:    req.Email,
        Password: req.Password,
    })
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "user":    newUserView(u),
        "message": "Registration successful. Your account is awaiting approval.",
    })
}

// Login accepts an email or a username as identifier.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, h.Log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    res, err := h.Auth.Login(ctx, auth.LoginInput{
        Identifier: req.Identifier,
        Password:   req.Password,
        Remember:   req.Remember,
    })
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, newAuthResp(res))
}

// Refresh rotates the refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, h.Log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    res, err := h.Auth.Refresh(ctx, req.RefreshToken)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, newAuthResp(res))
}

// Logout ends the session named by the body's refresh_token. On the
// authenticated route an empty body ends every session of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req logoutReq
    if c.Request().ContentLength != 0 {
        if err := c.Bind(&req); err != nil {
            return respondError(c, h.Log, errBadBody)
        }
    }
    uid, _ := middleware.CurrentUserID(c)

    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Auth.Logout(ctx, uid, req.RefreshToken); err != nil {
        return respondError(c, h.Log, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, ok := middleware.CurrentUserID(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"user": newUserView(u)})
}
