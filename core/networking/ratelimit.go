package networking

import (
	"fmt"
	"time"
)

// Rate limiting logic for the Guard struct

const rateLimitWindow = 60 * time.Second
const maxRequestsPerWindow = 600 // allows 10 requests per second sustained

// Progressive ban durations
var banDurations = []time.Duration{
	10 * time.Minute,
	1 * time.Hour,
	24 * time.Hour,
}

const permabanDuration = 100 * 365 * 24 * time.Hour // effectively permanent

// AllowRequest checks and updates the rate limit for a client address.
func (g *Guard) AllowRequest(address string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()

	now := time.Now()
	times := g.requestCounts[address]
	// Keep only recent requests
	var recent []time.Time
	for _, t := range times {
		if now.Sub(t) < rateLimitWindow {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	g.requestCounts[address] = recent
	if len(recent) > maxRequestsPerWindow {
		fmt.Printf("[RATE LIMIT] Would block request from %s (over limit)\n", address)
		// Only ban if not already banned
		if !g.isBannedLocked(address) {
			// Progressive ban logic
			g.banCounts[address]++
			banCount := g.banCounts[address]
			if banCount > len(banDurations) {
				g.banLocked(address, permabanDuration)
				fmt.Printf("[PERMABAN] Permanently banned %s after %d violations\n", address, banCount)
			} else {
				dur := banDurations[banCount-1]
				g.banLocked(address, dur)
				fmt.Printf("[BAN] %s banned for %s (violation #%d)\n", address, dur, banCount)
			}
		}
		return false // Rate limited
	}
	return true
}
