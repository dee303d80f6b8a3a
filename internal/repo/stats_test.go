package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

func TestSupportThreadStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, read, newest, err := SupportThreadStats(ctx, db, "u1")
	if err != nil || count != 0 || read != 0 || newest != nil {
		t.Fatalf("empty thread: count=%d read=%d newest=%v err=%v", count, read, newest, err)
	}

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*domain.Message{
		{Channel: "support", OwnerID: "u1", SenderID: "u1", SenderRole: "user", Content: "a", CreatedAt: t0},
		{Channel: "support", OwnerID: "u1", SenderID: "e", SenderRole: "expert", Content: "b", IsRead: true, CreatedAt: t0.Add(time.Minute)},
		{Channel: "support", OwnerID: "u2", SenderID: "u2", SenderRole: "user", Content: "c", CreatedAt: t0.Add(time.Hour)},
	}
	for _, m := range msgs {
		if err := CreateMessage(ctx, db, m); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	count, read, newest, err = SupportThreadStats(ctx, db, "u1")
	if err != nil {
		t.Fatalf("SupportThreadStats: %v", err)
	}
	if count != 2 || read != 1 {
		t.Fatalf("count=%d read=%d, want 2/1", count, read)
	}
	if newest == nil || !newest.Equal(t0.Add(time.Minute)) {
		t.Fatalf("newest = %v, want %v", newest, t0.Add(time.Minute))
	}
}
