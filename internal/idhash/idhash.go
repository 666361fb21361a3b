// Package idhash computes deterministic record identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"token-autotrader/internal/domain"
)

// ComputePositionID computes a deterministic position ID using SHA256.
// Formula: SHA256(profile|pool|base_symbol|opened_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputePositionID(profile domain.StrategyProfile, pool, baseSymbol string, openedAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", string(profile), pool, baseSymbol, openedAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeWatchlistID computes a deterministic watchlist ID from its name
// and creation time.
func ComputeWatchlistID(name string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%d", name, createdAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
