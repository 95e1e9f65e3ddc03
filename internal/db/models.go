package db

import "strings"

// UserUpdate carries the profile fields a PATCH may touch. Nil fields are left unchanged.
type UserUpdate struct {
	Username *string `json:"username"`
	Wins     *int    `json:"wins"`
	Losses   *int    `json:"losses"`
	MonWon   *string `json:"monWon"`
}

func (u UserUpdate) touchesRecord() bool {
	return u.Username != nil || u.Wins != nil || u.Losses != nil || u.MonWon != nil
}

// WinRate returns 100*wins/(wins+losses), or 0 when no games were played.
func WinRate(wins, losses int) float64 {
	games := wins + losses
	if games <= 0 {
		return 0
	}
	return float64(wins) / float64(games) * 100
}

// NormalizeAddress is the stored form of a wallet address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

const userColumns = `id, wallet_address, username, wins, losses, win_rate, mon_won, balance,
		balance_updated_at, created_at, updated_at`
