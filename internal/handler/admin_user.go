package handler

import (
    "context"
    "log/slog"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourism-portal/internal/model"
    "github.com/iliyamo/tourism-portal/internal/validation"
)

// UserLister lists all accounts with their role and status labels.
type UserLister interface {
    List(ctx context.Context) ([]*model.User, error)
}

// AccountStatusSetter changes an account's lifecycle status.
type AccountStatusSetter interface {
    SetAccountStatus(ctx context.Context, userID uint64, label string) (*model.User, error)
}

// StatusCatalog lists the seeded statuses of one family.
type StatusCatalog interface {
    ListByType(ctx context.Context, typ model.StatusType) ([]model.Status, error)
}

// ContactLister returns recent contact form submissions.
type ContactLister interface {
    ListRecent(ctx context.Context, limit int) ([]*model.ContactMessage, error)
}

// AdminUserHandler serves account administration for Admins.
type AdminUserHandler struct {
    Users    UserLister
    Accounts AccountStatusSetter
    Statuses StatusCatalog
    Contacts ContactLister
    Log      *slog.Logger
}

type statusReq struct {
    Status string `json:"status" validate:"required,max=50"`
}

// ListUsers returns every account. A missing online status reads OFFLINE.
func (h *AdminUserHandler) ListUsers(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    users, err := h.Users.List(ctx)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    out := make([]userView, 0, len(users))
    for _, u := range users {
        out = append(out, newUserView(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListAccountStatuses returns the account status labels an admin may set.
func (h *AdminUserHandler) ListAccountStatuses(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    statuses, err := h.Statuses.ListByType(ctx, model.StatusTypeAccount)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    labels := make([]string, 0, len(statuses))
    for _, s := range statuses {
        labels = append(labels, s.Status)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": labels})
}

// SetStatus approves, blocks or deactivates an account. The label must be
// one of the seeded ACCOUNT statuses; case is normalized to the stored
// spelling. Blocking or returning an account to Pending revokes its
// sessions.
func (h *AdminUserHandler) SetStatus(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    var req statusReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, h.Log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    label, err := h.accountLabel(ctx, req.Status)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    u, err := h.Accounts.SetAccountStatus(ctx, id, label)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"user": newUserView(u)})
}

func (h *AdminUserHandler) accountLabel(ctx context.Context, want string) (string, error) {
    statuses, err := h.Statuses.ListByType(ctx, model.StatusTypeAccount)
    if err != nil {
        return "", err
    }
    labels := make([]string, 0, len(statuses))
    for _, s := range statuses {
        if strings.EqualFold(s.Status, strings.TrimSpace(want)) {
            return s.Status, nil
        }
        labels = append(labels, s.Status)
    }
    return "", validation.Errors{"status": "must be one of " + strings.Join(labels, ", ")}
}

// ListContactMessages returns the newest contact messages. ?limit caps the
// count at 200; the default is 50.
func (h *AdminUserHandler) ListContactMessages(c echo.Context) error {
    limit := 50
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 1 {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": echo.Map{"limit": "must be a positive integer"}})
        }
        limit = min(n, 200)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    msgs, err := h.Contacts.ListRecent(ctx, limit)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": nonNil(msgs)})
}
