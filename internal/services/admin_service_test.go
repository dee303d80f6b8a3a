package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

func TestUsersWithUnread_SortedDescending(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	now := t0

	unread := map[string]int{"quiet": 0, "chatty": 4, "mid": 2}
	for id, n := range unread {
		seedUser(t, db, id)
		for i := 0; i < n; i++ {
			putMsg(t, db, domain.Message{Channel: "support", OwnerID: id, SenderID: id, SenderRole: "user", Content: "?", CreatedAt: t0.Add(-48 * time.Hour)})
		}
	}
	// Expert replies and private messages do not count.
	putMsg(t, db, domain.Message{Channel: "support", OwnerID: "quiet", SenderID: "e", SenderRole: "expert", Content: "!"})
	putMsg(t, db, domain.Message{Channel: "private", OwnerID: "quiet", SenderID: "mid", SenderRole: "user", Content: "yo"})
	if err := repo.RecordHeartbeat(ctx, db, "mid", t0.Add(-time.Minute), nil, nil); err != nil {
		t.Fatalf("beat: %v", err)
	}

	s := &AdminService{DB: db, Fanout: 2, Now: fixedClock(&now)}
	rows, err := s.UsersWithUnread(ctx)
	if err != nil {
		t.Fatalf("UsersWithUnread: %v", err)
	}
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, fmt.Sprintf("%s=%d", r.ID, r.Unread))
		if r.Degraded {
			t.Fatalf("unexpected degraded row: %+v", r)
		}
	}
	want := "[chatty=4 mid=2 quiet=0]"
	if fmt.Sprint(got) != want {
		t.Fatalf("rows = %v, want %s", got, want)
	}
	if !rows[1].Online || rows[0].Online {
		t.Fatalf("online flags wrong: %+v", rows)
	}
}

func TestUsersWithUnread_ListFailure(t *testing.T) {
	s := &AdminService{DB: newBareDB(t)}
	_, err := s.UsersWithUnread(context.Background())
	var de *DataAccessError
	if !errors.As(err, &de) {
		t.Fatalf("expected DataAccessError, got %v", err)
	}
}

func TestUsersWithUnread_PerUserFailureFailsOpen(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")
	// Listing succeeds, every count fails.
	if err := db.Migrator().DropTable(&domain.Message{}); err != nil {
		t.Fatalf("drop messages: %v", err)
	}

	s := &AdminService{DB: db}
	rows, err := s.UsersWithUnread(context.Background())
	if err != nil {
		t.Fatalf("UsersWithUnread: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if !r.Degraded || r.Unread != 0 {
			t.Fatalf("expected degraded zero row, got %+v", r)
		}
	}
}

func TestMarkThreadRead(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "u1")
	ctx := context.Background()
	putMsg(t, db, domain.Message{Channel: "support", OwnerID: "u1", SenderID: "u1", SenderRole: "user", Content: "a"})
	putMsg(t, db, domain.Message{Channel: "support", OwnerID: "u1", SenderID: "u1", SenderRole: "user", Content: "b"})
	putMsg(t, db, domain.Message{Channel: "support", OwnerID: "u1", SenderID: "e", SenderRole: "expert", Content: "c"})

	s := &AdminService{DB: db}
	n, err := s.MarkThreadRead(ctx, "u1")
	if err != nil || n != 2 {
		t.Fatalf("MarkThreadRead: n=%d err=%v", n, err)
	}
	// The rider still has the expert reply unread.
	left, _ := repo.CountUnread(ctx, db, repo.UnreadFilter{OwnerID: "u1", Channel: domain.ChannelSupport})
	if left != 1 {
		t.Fatalf("unread left = %d, want 1", left)
	}
	if _, err := s.MarkThreadRead(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequireMaster(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, "rider")
	seedMaster(t, db, "boss")
	s := &AdminService{DB: db}
	ctx := context.Background()

	if err := s.RequireMaster(ctx, "boss"); err != nil {
		t.Fatalf("master rejected: %v", err)
	}
	for _, id := range []string{"rider", "ghost", ""} {
		if err := s.RequireMaster(ctx, id); !errors.Is(err, ErrForbidden) {
			t.Fatalf("%q: expected ErrForbidden, got %v", id, err)
		}
	}

	// A failed role lookup is a store problem, not a refusal.
	err := (&AdminService{DB: newBareDB(t)}).RequireMaster(ctx, "boss")
	var dae *DataAccessError
	if !errors.As(err, &dae) || errors.Is(err, ErrForbidden) {
		t.Fatalf("store down: err = %v, want DataAccessError", err)
	}
}
