package market

import (
	"math/big"
)

// View is a market as shown in a list: its snapshot plus derived figures.
type View struct {
	Snapshot
	TotalPool     string `json:"totalPool"` // ether
	Odds          Odds   `json:"odds"`
	TimeRemaining string `json:"timeRemaining"`
}

func NewView(s Snapshot) View {
	yes, okYes := new(big.Int).SetString(s.Market.YesPool, 10)
	no, okNo := new(big.Int).SetString(s.Market.NoPool, 10)
	total := new(big.Int)
	if okYes {
		total.Add(total, yes)
	}
	if okNo {
		total.Add(total, no)
	}

	odds := NeutralOdds
	if okYes && okNo {
		odds = ComputeOdds(yes, no)
	}

	return View{
		Snapshot:      s,
		TotalPool:     FormatEther(total),
		Odds:          odds,
		TimeRemaining: FormatTimeRemaining(s.Info.SecondsRemaining),
	}
}
