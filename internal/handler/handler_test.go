package handler

import (
    "context"
    "encoding/json"
    "io"
    "log/slog"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/tourism-portal/internal/validation"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newEcho() *echo.Echo {
    e := echo.New()
    e.Validator = validation.New()
    return e
}

func do(e *echo.Echo, method, path, body string, headers ...string) *httptest.ResponseRecorder {
    var r io.Reader
    if body != "" {
        r = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, r)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    for i := 0; i+1 < len(headers); i += 2 {
        req.Header.Set(headers[i], headers[i+1])
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return out
}

// memListing is an in-memory ListingStore keyed by a caller-supplied id
// accessor.
type memListing[T any] struct {
    rows   map[uint64]*T
    id     func(*T) *uint64
    active func(*T) bool
    next   uint64
}

func newMemListing[T any](id func(*T) *uint64, active func(*T) bool) *memListing[T] {
    return &memListing[T]{rows: map[uint64]*T{}, id: id, active: active, next: 1}
}

func (m *memListing[T]) List(_ context.Context, activeOnly bool) ([]*T, error) {
    var out []*T
    for i := uint64(1); i < m.next; i++ {
        if v, ok := m.rows[i]; ok && (!activeOnly || m.active(v)) {
            out = append(out, v)
        }
    }
    return out, nil
}

func (m *memListing[T]) GetByID(_ context.Context, id uint64) (*T, error) {
    v, ok := m.rows[id]
    if !ok {
        return nil, errNotFound
    }
    return v, nil
}

func (m *memListing[T]) Create(_ context.Context, v *T) error {
    *m.id(v) = m.next
    m.rows[m.next] = v
    m.next++
    return nil
}

func (m *memListing[T]) Update(_ context.Context, v *T) error {
    id := *m.id(v)
    if _, ok := m.rows[id]; !ok {
        return errNotFound
    }
    m.rows[id] = v
    return nil
}

func (m *memListing[T]) Delete(_ context.Context, id uint64) error {
    if _, ok := m.rows[id]; !ok {
        return errNotFound
    }
    delete(m.rows, id)
    return nil
}

func (m *memListing[T]) CountActive(ctx context.Context) (int, error) {
    items, _ := m.List(ctx, true)
    return len(items), nil
}
