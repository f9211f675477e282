package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/tourism-portal/internal/model"
	"github.com/iliyamo/tourism-portal/internal/repository"
)

// PresenceStore writes a user's online status reference.
type PresenceStore interface {
	SetOnlineStatus(ctx context.Context, id uint64, statusID *uint16) error
}

// PresenceTracker moves a user's online status between ONLINE and OFFLINE.
type PresenceTracker struct {
	users    PresenceStore
	statuses StatusStore
	log      *slog.Logger
}

func NewPresenceTracker(users PresenceStore, statuses StatusStore, log *slog.Logger) *PresenceTracker {
	return &PresenceTracker{users: users, statuses: statuses, log: log}
}

// MarkOffline points the user's online status at the ONLINE/OFFLINE record.
// When that record is missing the reference is cleared.
func (p *PresenceTracker) MarkOffline(ctx context.Context, userID uint64) error {
	_, err := p.mark(ctx, userID, model.OnlineOffline)
	return err
}

// MarkOnline is the login-time counterpart of MarkOffline. It returns the
// status id now referenced by the user, nil when the ONLINE record is
// missing.
func (p *PresenceTracker) MarkOnline(ctx context.Context, userID uint64) (*uint16, error) {
	return p.mark(ctx, userID, model.OnlineOnline)
}

func (p *PresenceTracker) mark(ctx context.Context, userID uint64, label string) (*uint16, error) {
	var ref *uint16
	st, err := p.statuses.FindByTypeAndLabel(ctx, model.StatusTypeOnline, label)
	switch {
	case err == nil:
		ref = &st.ID
	case errors.Is(err, repository.ErrNotFound):
		p.log.WarnContext(ctx, "online status record missing", "status", label, "user_id", userID)
	default:
		return nil, fmt.Errorf("lookup %s status: %w", label, err)
	}
	if err := p.users.SetOnlineStatus(ctx, userID, ref); err != nil {
		return nil, fmt.Errorf("set online status: %w", err)
	}
	return ref, nil
}
