package session

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/authgate/internal/store"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *store.MemorySessionStore) {
	t.Helper()
	s := store.NewMemorySessionStore()
	t.Cleanup(func() { s.Close() })
	m, err := NewManager(s, ttl)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	return m, s
}

func TestCreateAndResolve(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	username, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if username != "alice" {
		t.Fatalf("Resolve = %q, want alice", username)
	}
}

func TestTokensAreUnique(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		token, err := m.Create(ctx, "alice")
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if seen[token] {
			t.Fatalf("token repeated: %s", token)
		}
		seen[token] = true
	}
}

func TestCreateDoesNotInvalidateOtherSessions(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	ctx := context.Background()

	first, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("second Create returned error: %v", err)
	}

	// 同一ユーザーの既存セッションは影響を受けない
	for _, token := range []string{first, second} {
		username, err := m.Resolve(ctx, token)
		if err != nil || username != "alice" {
			t.Fatalf("Resolve(%s) = (%q, %v)", token, username, err)
		}
	}
}

func TestResolveUnknownToken(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)

	username, err := m.Resolve(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if username != "" {
		t.Fatalf("expected empty username, got %q", username)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)

	username, err := m.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if username != "" {
		t.Fatalf("expected empty username, got %q", username)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t, time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	username, err := m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if username != "" {
		t.Fatalf("expected destroyed token to resolve empty, got %q", username)
	}

	// 2回目の破棄もエラーにならない
	if err := m.Destroy(ctx, token); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	m, _ := newTestManager(t, 40*time.Millisecond)
	ctx := context.Background()

	token, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	username, err := m.Resolve(ctx, token)
	if err != nil || username != "alice" {
		t.Fatalf("Resolve before expiry = (%q, %v)", username, err)
	}

	time.Sleep(60 * time.Millisecond)
	username, err = m.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve after expiry returned error: %v", err)
	}
	if username != "" {
		t.Fatalf("expected expired token to resolve empty, got %q", username)
	}
}
