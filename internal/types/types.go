package types

import (
	"time"
)

// Market mirrors the contract's Market struct. Amounts are wei decimal strings.
type Market struct {
	ID               uint64 `json:"id"`
	Question         string `json:"question"`
	CloseTime        int64  `json:"closeTime"`
	BetAmount        string `json:"betAmount"`
	YesPool          string `json:"yesPool"`
	NoPool           string `json:"noPool"`
	IsClosed         bool   `json:"isClosed"`
	Resolved         bool   `json:"resolved"`
	Outcome          bool   `json:"outcome"`
	ParticipantCount uint64 `json:"participantCount"`
}

// Bet is a single address's position on a market.
type Bet struct {
	HasBet     bool   `json:"hasBet"`
	Prediction bool   `json:"prediction"`
	Amount     string `json:"amount"`
	Claimed    bool   `json:"claimed"`
	Won        bool   `json:"won"`
}

// UserStats is the on-chain aggregate for an address. WinRate is in basis points.
type UserStats struct {
	TotalBets      uint64 `json:"totalBets"`
	WonBets        uint64 `json:"wonBets"`
	LostBets       uint64 `json:"lostBets"`
	TotalWinnings  string `json:"totalWinnings"`
	NetProfit      string `json:"netProfit"`
	TotalAmountBet string `json:"totalAmountBet"`
	WinRate        uint64 `json:"winRate"`
}

// MarketStatusInfo is the contract's own view of a market's betting window.
type MarketStatusInfo struct {
	Question         string `json:"question"`
	SecondsRemaining int64  `json:"secondsRemaining"`
	IsBettingOpen    bool   `json:"isBettingOpen"`
	IsBettingClosed  bool   `json:"isBettingClosed"`
	IsResolved       bool   `json:"isResolved"`
	CurrentTime      int64  `json:"currentTime"`
	CloseTime        int64  `json:"closeTime"`
}

type ContractInfo struct {
	Organizer       string `json:"organizer"`
	ContractBalance string `json:"contractBalance"`
	MinBetAmount    string `json:"minBetAmount"`
	MaxBetAmount    string `json:"maxBetAmount"`
	MarketCount     uint64 `json:"marketCount"`
}

// CreateMarketResult is returned after a market creation is mined.
type CreateMarketResult struct {
	TxHash   string `json:"txHash"`
	MarketID uint64 `json:"marketId"`
}

// UserProfile is the off-chain record of a wallet. MonWon is a decimal string
// in display units; Balance is a wei decimal string.
type UserProfile struct {
	ID               int64      `json:"id"`
	WalletAddress    string     `json:"walletAddress"`
	Username         string     `json:"username"`
	Wins             int        `json:"wins"`
	Losses           int        `json:"losses"`
	WinRate          float64    `json:"winRate"`
	MonWon           string     `json:"monWon"`
	Balance          string     `json:"balance"`
	BalanceUpdatedAt *time.Time `json:"balanceUpdatedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// LeaderboardEntry is recomputed on every request and never stored.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Address   string `json:"address"`
	Name      string `json:"name"`
	Wins      int    `json:"wins"`
	WinRate   string `json:"winRate"`
	TotalWon  string `json:"totalWon"`
	TotalBets int    `json:"totalBets"`
}

// Balance is the freshly read native balance of a wallet.
type Balance struct {
	Balance          string    `json:"balance"`
	BalanceUpdatedAt time.Time `json:"balanceUpdatedAt"`
}
