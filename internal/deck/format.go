package deck

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as m:ss.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// FormatTimeLive renders seconds as m:ss:cc with centiseconds.
func FormatTimeLive(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	cs := int(math.Floor(seconds * 100))
	return fmt.Sprintf("%d:%02d:%02d", cs/6000, (cs%6000)/100, cs%100)
}
