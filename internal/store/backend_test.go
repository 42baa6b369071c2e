package store

import (
	"context"
	"testing"
	"time"
)

func TestBackendDelegation(t *testing.T) {
	users := NewMemoryUserStore()
	sessions := NewMemorySessionStore()
	defer sessions.Close()

	b := NewBackend(BackendMemory, users, sessions)
	if b.Kind() != BackendMemory {
		t.Fatalf("unexpected kind: %s", b.Kind())
	}

	ctx := context.Background()
	if err := b.Create(ctx, &User{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	got, err := b.Get(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("Get = (%#v, %v)", got, err)
	}

	now := time.Now()
	if err := b.Sessions().Save(ctx, "tok", &Session{Username: "alice", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("Sessions().Save returned error: %v", err)
	}
	session, err := b.Sessions().Get(ctx, "tok")
	if err != nil || session == nil {
		t.Fatalf("Sessions().Get = (%#v, %v)", session, err)
	}
}

func TestBackendPromote(t *testing.T) {
	oldUsers := NewMemoryUserStore()
	oldSessions := NewMemorySessionStore()
	defer oldSessions.Close()

	b := NewBackend(BackendMemory, oldUsers, oldSessions)
	ctx := context.Background()
	if err := b.Create(ctx, &User{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 昇格後は新しいストアに委譲され、旧ストアのレコードは見えない
	newUsers := NewMemoryUserStore()
	newSessions := NewMemorySessionStore()
	defer newSessions.Close()
	b.Promote(BackendRedis, newUsers, newSessions)

	if b.Kind() != BackendRedis {
		t.Fatalf("unexpected kind after promote: %s", b.Kind())
	}
	got, err := b.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected old record to be invisible after promote, got %#v", got)
	}
	if err := b.Create(ctx, &User{Username: "alice", PasswordHash: "h2"}); err != nil {
		t.Fatalf("Create after promote returned error: %v", err)
	}
}
