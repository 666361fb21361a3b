package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BotStatus is a snapshot of the bot's observable state. It is written
// only by the bot; callers receive copies and hold no mutation rights.
type BotStatus struct {
	Running       bool            `json:"running"`
	LastPoll      time.Time       `json:"last_poll"`
	OpenPositions int             `json:"open_positions"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LastError     string          `json:"last_error,omitempty"`
}
