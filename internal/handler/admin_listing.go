package handler

import (
    "context"
    "log/slog"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/tourism-portal/internal/model"
)

// ListingAdmin serves create, read, update and delete for one listing type.
// R is the validated request body and build maps it onto a row.
type ListingAdmin[T any, R any] struct {
    store ListingStore[T]
    build func(req *R, id uint64) *T
    purge func(context.Context) error
    log   *slog.Logger
}

// List returns every row, including inactive ones.
func (h *ListingAdmin[T, R]) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, err := h.store.List(ctx, false)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": nonNil(items)})
}

func (h *ListingAdmin[T, R]) Get(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, h.log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    v, err := h.store.GetByID(ctx, id)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, v)
}

func (h *ListingAdmin[T, R]) Create(c echo.Context) error {
    req := new(R)
    if err := bindValid(c, req); err != nil {
        return respondError(c, h.log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    v := h.build(req, 0)
    if err := h.store.Create(ctx, v); err != nil {
        return respondError(c, h.log, err)
    }
    h.invalidate(ctx)
    return c.JSON(http.StatusCreated, v)
}

// Update replaces every editable field of the row.
func (h *ListingAdmin[T, R]) Update(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, h.log, err)
    }
    req := new(R)
    if err := bindValid(c, req); err != nil {
        return respondError(c, h.log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.store.Update(ctx, h.build(req, id)); err != nil {
        return respondError(c, h.log, err)
    }
    h.invalidate(ctx)
    v, err := h.store.GetByID(ctx, id)
    if err != nil {
        return respondError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, v)
}

func (h *ListingAdmin[T, R]) Delete(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return respondError(c, h.log, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.store.Delete(ctx, id); err != nil {
        return respondError(c, h.log, err)
    }
    h.invalidate(ctx)
    return c.NoContent(http.StatusNoContent)
}

func (h *ListingAdmin[T, R]) invalidate(ctx context.Context) {
    if h.purge == nil {
        return
    }
    if err := h.purge(ctx); err != nil {
        h.log.WarnContext(ctx, "portal cache purge failed", "error", err)
    }
}

// ----- request bodies -----

type attractionReq struct {
    Name        string   `json:"name" validate:"required,max=150"`
    Description string   `json:"description" validate:"required"`
    Location    string   `json:"location" validate:"required,max=255"`
    Category    string   `json:"category" validate:"required,max=100"`
    Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
    Image       *string  `json:"image" validate:"omitempty,max=255"`
    Status      string   `json:"status" validate:"required,oneof=active inactive"`
}

type faqReq struct {
    Question string `json:"question" validate:"required,max=255"`
    Answer   string `json:"answer" validate:"required"`
}

type activityReq struct {
    Name        string   `json:"name" validate:"required,max=150"`
    Description string   `json:"description" validate:"required"`
    Location    string   `json:"location" validate:"required,max=255"`
    Duration    string   `json:"duration" validate:"required,max=100"`
    Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
    Image       *string  `json:"image" validate:"omitempty,max=255"`
    Status      string   `json:"status" validate:"required,oneof=active inactive"`
    FAQs        []faqReq `json:"faqs" validate:"omitempty,max=50,dive"`
}

type accommodationReq struct {
    Name          string   `json:"name" validate:"required,max=150"`
    Description   string   `json:"description" validate:"required"`
    Address       string   `json:"address" validate:"required,max=255"`
    Type          string   `json:"type" validate:"required,max=100"`
    PriceRange    string   `json:"price_range" validate:"required,max=100"`
    ContactNumber *string  `json:"contact_number" validate:"omitempty,max=50"`
    Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
    Image         *string  `json:"image" validate:"omitempty,max=255"`
    Status        string   `json:"status" validate:"required,oneof=active inactive"`
}

func rating(r *float64) float64 {
    if r == nil {
        return 0
    }
    return *r
}

func trimmed(s *string) *string {
    if s == nil {
        return nil
    }
    v := strings.TrimSpace(*s)
    if v == "" {
        return nil
    }
    return &v
}

func buildAttraction(r *attractionReq, id uint64) *model.Attraction {
    return &model.Attraction{
        ID:          id,
        Name:        strings.TrimSpace(r.Name),
        Description: strings.TrimSpace(r.Description),
        Location:    strings.TrimSpace(r.Location),
        Category:    strings.TrimSpace(r.Category),
        Rating:      rating(r.Rating),
        Image:       trimmed(r.Image),
        Status:      model.ListingStatus(r.Status),
    }
}

// buildActivity keeps the request's FAQ order; it becomes sort_order.
func buildActivity(r *activityReq, id uint64) *model.Activity {
    a := &model.Activity{
        ID:          id,
        Name:        strings.TrimSpace(r.Name),
        Description: strings.TrimSpace(r.Description),
        Location:    strings.TrimSpace(r.Location),
        Duration:    strings.TrimSpace(r.Duration),
        Rating:      rating(r.Rating),
        Image:       trimmed(r.Image),
        Status:      model.ListingStatus(r.Status),
        FAQs:        make([]model.ActivityFAQ, 0, len(r.FAQs)),
    }
    for i, f := range r.FAQs {
        a.FAQs = append(a.FAQs, model.ActivityFAQ{
            ActivityID: id,
            Question:   strings.TrimSpace(f.Question),
            Answer:     strings.TrimSpace(f.Answer),
            SortOrder:  i,
        })
    }
    return a
}

func buildAccommodation(r *accommodationReq, id uint64) *model.Accommodation {
    return &model.Accommodation{
        ID:            id,
        Name:          strings.TrimSpace(r.Name),
        Description:   strings.TrimSpace(r.Description),
        Address:       strings.TrimSpace(r.Address),
        Type:          strings.TrimSpace(r.Type),
        PriceRange:    strings.TrimSpace(r.PriceRange),
        ContactNumber: trimmed(r.ContactNumber),
        Rating:        rating(r.Rating),
        Image:         trimmed(r.Image),
        Status:        model.ListingStatus(r.Status),
    }
}

// AdminListingHandler groups the listing administration endpoints.
type AdminListingHandler struct {
    Attractions    *ListingAdmin[model.Attraction, attractionReq]
    Activities     *ListingAdmin[model.Activity, activityReq]
    Accommodations *ListingAdmin[model.Accommodation, accommodationReq]
}

// NewAdminListingHandler wires the three listing stores. purge, when set, is
// called after every successful write to drop cached portal responses.
func NewAdminListingHandler(attr AttractionStore, act ActivityStore, acc AccommodationStore,
    purge func(context.Context) error, log *slog.Logger) *AdminListingHandler {
    return &AdminListingHandler{
        Attractions:    &ListingAdmin[model.Attraction, attractionReq]{store: attr, build: buildAttraction, purge: purge, log: log},
        Activities:     &ListingAdmin[model.Activity, activityReq]{store: act, build: buildActivity, purge: purge, log: log},
        Accommodations: &ListingAdmin[model.Accommodation, accommodationReq]{store: acc, build: buildAccommodation, purge: purge, log: log},
    }
}
