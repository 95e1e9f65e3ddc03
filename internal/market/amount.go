package market

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

const (
	// Currency is the display symbol of the chain's native token.
	Currency = "MON"
	// MaxDurationSeconds is the longest betting window the contract accepts.
	MaxDurationSeconds = 3600
	// PlaceBetGasLimit is attached to every bet so estimation never fails on
	// state-dependent reverts.
	PlaceBetGasLimit = uint64(500000)

	etherDecimals = 18
)

var (
	weiPerEther = big.NewInt(params.Ether)

	// DefaultMinBet and DefaultMaxBet mirror the contract constants and are
	// used when they cannot be read from chain.
	DefaultMinBet = new(big.Int).Div(weiPerEther, big.NewInt(10))
	DefaultMaxBet = new(big.Int).Mul(weiPerEther, big.NewInt(100))
)

// ParseEther converts a decimal ether string such as "0.25" into wei.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, etherDecimals)
	}
	digits := whole + frac + strings.Repeat("0", etherDecimals-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		wei.Neg(wei)
	}
	return wei, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatEther renders wei as an exact decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, weiPerEther)
	return trimZeros(r.FloatString(etherDecimals))
}

// FormatEtherString is FormatEther for a wei decimal string; invalid input renders as "0".
func FormatEtherString(wei string) string {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return "0"
	}
	return FormatEther(v)
}

// FormatDisplayWei renders wei for leaderboards: thousands separators and at
// most two decimals.
func FormatDisplayWei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return formatDisplay(new(big.Rat).SetFrac(wei, weiPerEther))
}

// FormatDisplayDecimal renders a decimal string already in display units.
func FormatDisplayDecimal(s string) string {
	r, ok := ParseDisplayAmount(s)
	if !ok {
		return "0"
	}
	return formatDisplay(r)
}

// ParseDisplayAmount parses a display amount, ignoring thousands separators.
func ParseDisplayAmount(s string) (*big.Rat, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.Contains(s, "/") {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

// NormalizeDisplayAmount rewrites a display amount as a plain decimal that a
// NUMERIC column accepts: "1,234.50" becomes "1234.5".
func NormalizeDisplayAmount(s string) (string, bool) {
	r, ok := ParseDisplayAmount(s)
	if !ok {
		return "", false
	}
	prec, exact := r.FloatPrec()
	if !exact {
		return "", false
	}
	return r.FloatString(prec), true
}

func formatDisplay(r *big.Rat) string {
	s := trimZeros(r.FloatString(2))
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	if out == "-0" {
		return "0"
	}
	return out
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
