package networking

import (
	"encoding/binary"
	"strings"
	"sync"
	"time"

	"medishare/core/storage"
)

// Guard enforces per-client admission for the API surface: a sliding
// request window per address, with progressive bans for repeat
// offenders. Ban state survives restarts when a store is attached.
type Guard struct {
	lock  sync.Mutex
	store *storage.Storage

	requestCounts map[string][]time.Time
	bannedClients map[string]time.Time
	banCounts     map[string]int // Tracks number of bans per IP for progressive banning
}

func NewGuard(store *storage.Storage) *Guard {
	g := &Guard{
		store:         store,
		requestCounts: make(map[string][]time.Time),
		bannedClients: make(map[string]time.Time),
		banCounts:     make(map[string]int),
	}
	g.loadPersistedBans()
	return g
}

// loadPersistedBans restores ban expiries and violation counts written
// by earlier runs.
func (g *Guard) loadPersistedBans() {
	if g.store == nil {
		return
	}
	iter := g.store.Iterator()
	defer iter.Release()
	for iter.Next() {
		key := string(iter.Key())
		switch {
		case strings.HasPrefix(key, "ban:"):
			address := strings.TrimPrefix(key, "ban:")
			expiry, err := time.Parse(time.RFC3339, string(iter.Value()))
			if err == nil && time.Now().Before(expiry) {
				g.bannedClients[address] = expiry
			}
		case strings.HasPrefix(key, "banCount:"):
			address := strings.TrimPrefix(key, "banCount:")
			if len(iter.Value()) == 8 {
				g.banCounts[address] = int(binary.BigEndian.Uint64(iter.Value()))
			}
		}
	}
}
