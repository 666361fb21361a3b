package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StrategyProfile selects the risk posture handed to the decision engine.
type StrategyProfile string

const (
	ProfileAggressive   StrategyProfile = "aggressive"
	ProfileBalanced     StrategyProfile = "balanced"
	ProfileConservative StrategyProfile = "conservative"
)

// Valid reports whether p is one of the three known profiles.
func (p StrategyProfile) Valid() bool {
	switch p {
	case ProfileAggressive, ProfileBalanced, ProfileConservative:
		return true
	}
	return false
}

// BotConfig is the bot configuration. It is immutable per cycle: updates
// merge into the live config and take effect on the next cycle only.
type BotConfig struct {
	PollInterval          time.Duration
	WatchlistPollInterval time.Duration
	MaxPositions          int
	MaxInvestment         decimal.Decimal // total cap across all positions
	StrategyProfile       StrategyProfile
	PrioritizeWatchlisted bool
}

// DefaultConfig returns the configuration used when the host supplies none.
func DefaultConfig() BotConfig {
	return BotConfig{
		PollInterval:          60 * time.Second,
		WatchlistPollInterval: 30 * time.Second,
		MaxPositions:          5,
		MaxInvestment:         decimal.NewFromInt(1000),
		StrategyProfile:       ProfileBalanced,
		PrioritizeWatchlisted: true,
	}
}

// Validate checks field constraints.
func (c BotConfig) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.WatchlistPollInterval <= 0 {
		return fmt.Errorf("watchlist poll interval must be positive, got %v", c.WatchlistPollInterval)
	}
	if c.MaxPositions < 1 {
		return fmt.Errorf("max positions must be >= 1, got %d", c.MaxPositions)
	}
	if !c.MaxInvestment.IsPositive() {
		return fmt.Errorf("max investment must be > 0, got %s", c.MaxInvestment)
	}
	if !c.StrategyProfile.Valid() {
		return fmt.Errorf("unknown strategy profile %q", c.StrategyProfile)
	}
	return nil
}

// ConfigUpdate is a partial BotConfig. Nil fields are left unchanged.
type ConfigUpdate struct {
	PollInterval          *time.Duration
	WatchlistPollInterval *time.Duration
	MaxPositions          *int
	MaxInvestment         *decimal.Decimal
	StrategyProfile       *StrategyProfile
	PrioritizeWatchlisted *bool
}

// Apply merges u into c and returns the result.
func (c BotConfig) Apply(u ConfigUpdate) BotConfig {
	if u.PollInterval != nil {
		c.PollInterval = *u.PollInterval
	}
	if u.WatchlistPollInterval != nil {
		c.WatchlistPollInterval = *u.WatchlistPollInterval
	}
	if u.MaxPositions != nil {
		c.MaxPositions = *u.MaxPositions
	}
	if u.MaxInvestment != nil {
		c.MaxInvestment = *u.MaxInvestment
	}
	if u.StrategyProfile != nil {
		c.StrategyProfile = *u.StrategyProfile
	}
	if u.PrioritizeWatchlisted != nil {
		c.PrioritizeWatchlisted = *u.PrioritizeWatchlisted
	}
	return c
}
