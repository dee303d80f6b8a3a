package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

func TestGetIdempotency_BlankKey_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	rec, err := GetIdempotency(context.Background(), db, "u1", "support:u1", "   ", time.Now().UTC())
	if rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestIdempotency_CreateGetAndExpire(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	scope := IdempotencyScope(domain.ChannelPrivate, "u2")

	rec, err := CreateIdempotency(ctx, db, "u1", scope, "k1", "m1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.Scope != "private:u2" || rec.MessageID != "m1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", scope, "k1", time.Now().UTC())
	if err != nil || got.MessageID != "m1" || got.Status != 201 {
		t.Fatalf("GetIdempotency: got=%+v err=%v", got, err)
	}

	// Different scope with the same key is independent.
	if _, err := GetIdempotency(ctx, db, "u1", "private:u3", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other scope, got %v", err)
	}

	later := time.Now().UTC().Add(2 * time.Hour)
	if _, err := GetIdempotency(ctx, db, "u1", scope, "k1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired record to be hidden, got %v", err)
	}
	n, err := DeleteExpiredIdempotency(ctx, db, later)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredIdempotency: n=%d err=%v", n, err)
	}
}

func TestCreateIdempotency_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "support:u1", "k", "m1", 201, time.Hour); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := CreateIdempotency(ctx, db, "u1", "support:u1", "k", "m2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateIdempotency_NoTable(t *testing.T) {
	db := newTestDB(t, true)
	_, err := CreateIdempotency(context.Background(), db, "u1", "s", "k", "m", 201, time.Hour)
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected plain store error, got %v", err)
	}
}
