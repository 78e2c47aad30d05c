package networking

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Client banning logic for the Guard struct

// banLocked bans a client for a given duration.
// NOTE: Assumes caller holds g.lock!
func (g *Guard) banLocked(address string, duration time.Duration) {
	expiry := time.Now().Add(duration)
	g.bannedClients[address] = expiry
	fmt.Printf("[BAN] Client %s banned for %s (until %s)\n", address, duration, expiry.Format(time.RFC3339))
	// --- Persistent Ban State ---
	if g.store != nil && g.store.DB() != nil {
		err := g.store.DB().Put([]byte("ban:"+address), []byte(expiry.Format(time.RFC3339)), nil)
		if err != nil {
			fmt.Printf("[ERROR] Failed to persist ban for %s: %v\n", address, err)
		}
		count := g.banCounts[address]
		countBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(countBytes, uint64(count))
		err = g.store.DB().Put([]byte("banCount:"+address), countBytes, nil)
		if err != nil {
			fmt.Printf("[ERROR] Failed to persist ban count for %s: %v\n", address, err)
		}
	}
}

// isBannedLocked checks if a client is currently banned, dropping the
// entry once the expiry has passed.
// NOTE: Assumes caller holds g.lock!
func (g *Guard) isBannedLocked(address string) bool {
	expiry, ok := g.bannedClients[address]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		fmt.Printf("[UNBAN] Ban expired for %s (was until %s)\n", address, expiry.Format(time.RFC3339))
		delete(g.bannedClients, address)
		// --- Remove persistent ban state ---
		if g.store != nil && g.store.DB() != nil {
			err := g.store.DB().Delete([]byte("ban:"+address), nil)
			if err != nil {
				fmt.Printf("[ERROR] Failed to remove persistent ban for %s: %v\n", address, err)
			}
			err = g.store.DB().Delete([]byte("banCount:"+address), nil)
			if err != nil {
				fmt.Printf("[ERROR] Failed to remove persistent ban count for %s: %v\n", address, err)
			}
		}
		return false
	}
	return true
}

// IsBanned reports whether a client address is currently banned.
func (g *Guard) IsBanned(address string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.isBannedLocked(address)
}
