package laptiming

import (
	"fmt"
	"math"
)

// FormatLapTime renders seconds as ss.SSS below one minute and as
// mm'ss.SSS otherwise. 0 and -1 (no time) are rendered as "-".
func FormatLapTime(seconds float64) string {
	if seconds == 0 || seconds == -1 {
		return "-"
	}
	millis := int64(math.Round(seconds * 1000))
	if millis < 0 {
		return "-"
	}
	if millis < 60_000 {
		return fmt.Sprintf("%02d.%03d", millis/1000, millis%1000)
	}
	mins := millis / 60_000
	rest := millis % 60_000
	return fmt.Sprintf("%02d'%02d.%03d", mins, rest/1000, rest%1000)
}
