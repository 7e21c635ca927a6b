package quizsessions

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreTakeRemovesEntry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "p1", []int{3, 1, 2}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ids, err := store.Take(ctx, "p1")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{3, 1, 2}) {
		t.Fatalf("ids = %v, want [3 1 2]", ids)
	}

	if _, err := store.Take(ctx, "p1"); !errors.Is(err, ErrNoActiveQuiz) {
		t.Fatalf("second Take error = %v, want ErrNoActiveQuiz", err)
	}
}

func TestMemoryStoreExpiresEntries(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Put(context.Background(), "p1", []int{1}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	now = now.Add(2 * time.Minute)

	if _, err := store.Take(context.Background(), "p1"); !errors.Is(err, ErrNoActiveQuiz) {
		t.Fatalf("expired Take error = %v, want ErrNoActiveQuiz", err)
	}
}

func TestMemoryStorePutReplacesPreviousQuiz(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	_ = store.Put(ctx, "p1", []int{1, 2})
	_ = store.Put(ctx, "p1", []int{5, 6})

	ids, err := store.Take(ctx, "p1")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{5, 6}) {
		t.Fatalf("ids = %v, want [5 6]", ids)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	player := uuid.NewString()
	if err := store.Put(ctx, player, []int{4, 8}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	ids, err := store.Take(ctx, player)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []int{4, 8}) {
		t.Fatalf("ids = %v, want [4 8]", ids)
	}
	if _, err := store.Take(ctx, player); !errors.Is(err, ErrNoActiveQuiz) {
		t.Fatalf("second Take error = %v, want ErrNoActiveQuiz", err)
	}
}
