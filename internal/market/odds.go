package market

import (
	"fmt"
	"math/big"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
)

// Odds are decimal payout multipliers for each side of a market.
type Odds struct {
	YesOdds float64 `json:"yesOdds"`
	NoOdds  float64 `json:"noOdds"`
}

// NeutralOdds signals an unseeded market.
var NeutralOdds = Odds{YesOdds: 1.0, NoOdds: 1.0}

// ComputeOdds returns (yes+no)/yes and (yes+no)/no rounded to two decimals,
// or NeutralOdds when either pool is empty.
func ComputeOdds(yesPool, noPool *big.Int) Odds {
	if yesPool == nil || noPool == nil || yesPool.Sign() <= 0 || noPool.Sign() <= 0 {
		return NeutralOdds
	}
	total := new(big.Int).Add(yesPool, noPool)
	return Odds{
		YesOdds: roundRatio(total, yesPool),
		NoOdds:  roundRatio(total, noPool),
	}
}

// ComputeMarketOdds parses the market's wei pools and computes their odds.
func ComputeMarketOdds(yesPool, noPool string) (Odds, error) {
	yes, ok := new(big.Int).SetString(yesPool, 10)
	if !ok {
		return NeutralOdds, fmt.Errorf("invalid yes pool %q", yesPool)
	}
	no, ok := new(big.Int).SetString(noPool, 10)
	if !ok {
		return NeutralOdds, fmt.Errorf("invalid no pool %q", noPool)
	}
	return ComputeOdds(yes, no), nil
}

// roundRatio computes num/den to two decimals, rounding half up.
func roundRatio(num, den *big.Int) float64 {
	scaled := new(big.Int).Mul(num, big.NewInt(100))
	q, r := new(big.Int).QuoRem(scaled, den, new(big.Int))
	if new(big.Int).Mul(r, big.NewInt(2)).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	f, _ := new(big.Rat).SetFrac(q, big.NewInt(100)).Float64()
	return f
}

// ValidateBetAmount checks min <= amount <= max in wei.
func ValidateBetAmount(amount, min, max *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.NewValidationError("validate bet amount", "Bet amount is required")
	}
	if amount.Cmp(min) < 0 {
		return errors.NewValidationError("validate bet amount",
			fmt.Sprintf("Bet amount too low. Minimum: %s %s", FormatEther(min), Currency))
	}
	if amount.Cmp(max) > 0 {
		return errors.NewValidationError("validate bet amount",
			fmt.Sprintf("Bet amount too high. Maximum: %s %s", FormatEther(max), Currency))
	}
	return nil
}
