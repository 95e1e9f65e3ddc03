package market

import (
	"encoding/json"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/types"
)

// Status is the lifecycle phase of a market as seen by the client.
type Status int

const (
	StatusOpen Status = iota
	StatusClosed
	StatusResolved
)

const (
	// ListRefreshInterval is the cadence for list views and pending scans.
	ListRefreshInterval = 30 * time.Second
	// OpenRefreshInterval drives the countdown of a focused open market.
	OpenRefreshInterval = 1 * time.Second
	// SettledRefreshInterval is used for a focused market that is no longer open.
	SettledRefreshInterval = 10 * time.Second
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Resolve derives the lifecycle phase from raw market fields and the chain
// clock. A resolved market is Resolved whatever its close fields say.
func Resolve(m types.Market, now int64) Status {
	if m.Resolved {
		return StatusResolved
	}
	if m.IsClosed || now >= m.CloseTime {
		return StatusClosed
	}
	return StatusOpen
}

// IsBettingOpen reports whether a bet could still be accepted at chain time now.
func IsBettingOpen(m types.Market, now int64) bool {
	return Resolve(m, now) == StatusOpen
}

// StatusInfo is the derived view of a market at a given chain time.
type StatusInfo struct {
	Status           Status `json:"status"`
	IsBettingOpen    bool   `json:"isBettingOpen"`
	IsBettingClosed  bool   `json:"isBettingClosed"`
	IsResolved       bool   `json:"isResolved"`
	SecondsRemaining int64  `json:"secondsRemaining"`
	CurrentTime      int64  `json:"currentTime"`
	CloseTime        int64  `json:"closeTime"`
}

func Describe(m types.Market, now int64) StatusInfo {
	status := Resolve(m, now)
	remaining := m.CloseTime - now
	if remaining < 0 || status != StatusOpen {
		remaining = 0
	}
	return StatusInfo{
		Status:           status,
		IsBettingOpen:    status == StatusOpen,
		IsBettingClosed:  status != StatusOpen,
		IsResolved:       status == StatusResolved,
		SecondsRemaining: remaining,
		CurrentTime:      now,
		CloseTime:        m.CloseTime,
	}
}

// RefreshInterval returns how often a focused market view should be re-read.
func RefreshInterval(s Status) time.Duration {
	if s == StatusOpen {
		return OpenRefreshInterval
	}
	return SettledRefreshInterval
}

// Snapshot pairs a market with the status derived when it was fetched.
type Snapshot struct {
	Market    types.Market `json:"market"`
	Info      StatusInfo   `json:"status"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

func NewSnapshot(m types.Market, chainNow int64, fetchedAt time.Time) Snapshot {
	return Snapshot{
		Market:    m,
		Info:      Describe(m, chainNow),
		FetchedAt: fetchedAt,
	}
}

// Trustworthy reports whether the snapshot may still gate a transaction.
// Anything older than one polling interval must be re-read first.
func (s Snapshot) Trustworthy(now time.Time) bool {
	return now.Sub(s.FetchedAt) <= RefreshInterval(s.Info.Status)
}
