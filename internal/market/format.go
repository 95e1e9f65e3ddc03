package market

import "fmt"

// FormatTimeRemaining renders a countdown such as "1h 1m 1s", "2m 5s" or "45s".
func FormatTimeRemaining(seconds int64) string {
	if seconds <= 0 {
		return "Closed"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// TruncateAddress shortens a hex address to 0x1234...abcd for display.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
