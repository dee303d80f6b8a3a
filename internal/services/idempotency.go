package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

// DefaultIdempotencyTTL is how long a send can be replayed with the same key.
const DefaultIdempotencyTTL = 24 * time.Hour

// SendScope is the idempotency scope of a send: the channel plus its target
// (peer for private, thread owner for expert replies, empty otherwise).
func SendScope(channel domain.Channel, recipientID string) string {
	return repo.IdempotencyScope(channel, recipientID)
}

// HasReplay reports whether (userID, scope, key) maps to a stored send.
func (s *MessageService) HasReplay(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
	_, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dataAccess("get idempotency", err)
	}
	return true, nil
}

// Replay returns the message stored for (userID, scope, key), if any.
func (s *MessageService) Replay(ctx context.Context, userID, scope, key string) (*domain.Message, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, scope, key, s.Now.now())
	if err != nil {
		return nil, false
	}
	m, err := repo.GetMessage(ctx, s.DB, rec.MessageID)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Remember records msg as the result of (userID, scope, key). Failures only
// cost the ability to replay and are logged.
func (s *MessageService) Remember(ctx context.Context, userID, scope, key string, msg *domain.Message) {
	if key == "" || msg == nil {
		return
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, scope, key, msg.ID, http.StatusCreated, orDefault(s.IdempotencyTTL, DefaultIdempotencyTTL))
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("scope", scope).Msg("store idempotency record")
	}
}
