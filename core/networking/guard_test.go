package networking

import (
	"testing"
	"time"

	"medishare/core/storage"
)

func newTestGuard(t *testing.T) (*Guard, *storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewGuard(store), store
}

func TestAllowRequestUnderLimit(t *testing.T) {
	g, _ := newTestGuard(t)
	for i := 0; i < maxRequestsPerWindow; i++ {
		if !g.AllowRequest("10.0.0.1") {
			t.Fatalf("request %d blocked below the window limit", i)
		}
	}
}

func TestOverLimitBansProgressively(t *testing.T) {
	g, _ := newTestGuard(t)

	for i := 0; i < maxRequestsPerWindow+1; i++ {
		g.AllowRequest("10.0.0.2")
	}
	if !g.IsBanned("10.0.0.2") {
		t.Fatal("client not banned after exceeding the window")
	}
	if g.banCounts["10.0.0.2"] != 1 {
		t.Fatalf("ban count = %d, want 1", g.banCounts["10.0.0.2"])
	}

	// Another client stays unaffected.
	if !g.AllowRequest("10.0.0.3") {
		t.Fatal("unrelated client blocked")
	}
}

func TestBanExpiryClearsState(t *testing.T) {
	g, _ := newTestGuard(t)

	g.lock.Lock()
	g.banLocked("10.0.0.4", -time.Minute) // already expired
	g.lock.Unlock()

	if g.IsBanned("10.0.0.4") {
		t.Fatal("expired ban still enforced")
	}
	if _, ok := g.bannedClients["10.0.0.4"]; ok {
		t.Fatal("expired ban entry not removed")
	}
}

func TestBanStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStorage(dir)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}

	g := NewGuard(store)
	g.lock.Lock()
	g.banCounts["10.0.0.5"] = 2
	g.banLocked("10.0.0.5", time.Hour)
	g.lock.Unlock()
	store.Close()

	store2, err := storage.NewStorage(dir)
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	defer store2.Close()

	g2 := NewGuard(store2)
	if !g2.IsBanned("10.0.0.5") {
		t.Fatal("ban not restored after restart")
	}
	if g2.banCounts["10.0.0.5"] != 2 {
		t.Fatalf("ban count after restart = %d, want 2", g2.banCounts["10.0.0.5"])
	}
}
