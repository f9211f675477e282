// This file holds the public portal API. Routes are unauthenticated and only
// ever return active listings and approved operators.

package handler

import (
    "context"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourism-portal/internal/model"
    "github.com/iliyamo/tourism-portal/internal/queue"
)

// OperatorLister lists accounts by role and account status.
type OperatorLister interface {
    ListByRoleAndStatus(ctx context.Context, roleName, statusLabel string) ([]*model.User, error)
}

// ContactStore persists contact form submissions.
type ContactStore interface {
    Create(ctx context.Context, m *model.ContactMessage) error
}

// ContactPublisher announces stored contact messages.
type ContactPublisher interface {
    PublishContactSubmitted(ctx context.Context, ev queue.ContactSubmittedEvent) error
}

// PortalHandler serves the public tourism portal.
type PortalHandler struct {
    Attractions    AttractionStore
    Activities     ActivityStore
    Accommodations AccommodationStore
    Operators      OperatorLister
    Contacts       ContactStore
    Publisher      ContactPublisher // optional
    Log            *slog.Logger
}

// operatorView is the public face of an External Operator account.
type operatorView struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
}

type contactReq struct {
    Name    string `json:"name" validate:"required,max=100"`
    Email   string `json:"email" validate:"required,email,max=150"`
    Subject string `json:"subject" validate:"required,max=150"`
    Message string `json:"message" validate:"required,max=5000"`
}

func (h *PortalHandler) ListAttractions(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Attractions.List(ctx, true)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": nonNil(items)})
}

// ListActivities omits FAQs; they are returned by GetActivity.
func (h *PortalHandler) ListActivities(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Activities.List(ctx, true)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": nonNil(items)})
}

// GetActivity returns one active activity with its FAQs in display order.
// Inactive activities are reported as missing.
func (h *PortalHandler) GetActivity(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    a, err := h.Activities.GetByID(ctx, id)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    if a.Status != model.ListingActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    if a.FAQs == nil {
        a.FAQs = []model.ActivityFAQ{}
    }
    return c.JSON(http.StatusOK, a)
}

func (h *PortalHandler) ListAccommodations(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.Accommodations.List(ctx, true)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": nonNil(items)})
}

// ListOperators returns approved External Operator accounts.
func (h *PortalHandler) ListOperators(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    users, err := h.Operators.ListByRoleAndStatus(ctx, model.RoleExternalOperator, model.AccountApproved)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    out := make([]operatorView, 0, len(users))
    for _, u := range users {
        out = append(out, operatorView{ID: u.ID, Name: u.Name, Email: u.Email})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SubmitContact stores a contact message and publishes it for the log
// consumer. A publish failure is logged; the message is already stored.
func (h *PortalHandler) SubmitContact(c echo.Context) error {
    var req contactReq
    if err := bindValid(c, &req); err != nil {
        return respondError(c, h.Log, err)
    }
    m := &model.ContactMessage{
        Name:    strings.TrimSpace(req.Name),
        Email:   strings.ToLower(strings.TrimSpace(req.Email)),
        Subject: strings.TrimSpace(req.Subject),
        Message: strings.TrimSpace(req.Message),
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Contacts.Create(ctx, m); err != nil {
        return respondError(c, h.Log, err)
    }

    if h.Publisher != nil {
        ev := queue.ContactSubmittedEvent{
            MessageID: m.ID,
            Name:      m.Name,
            Email:     m.Email,
            Subject:   m.Subject,
            Message:   m.Message,
            CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
        }
        if err := h.Publisher.PublishContactSubmitted(ctx, ev); err != nil {
            h.Log.WarnContext(ctx, "publish contact.submitted failed", "message_id", m.ID, "error", err)
        }
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": m.ID, "message": "Thank you! Your message has been sent."})
}
