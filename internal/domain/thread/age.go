// internal/domain/thread/age.go
package thread

import (
	"fmt"
	"time"
)

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// RelativeAge renders how long ago t was, the way the feed shows it:
// "baru saja" under a minute (or unknown), then minutes "m", hours "j",
// days "h", and a short date ("16 Okt") after a week.
func RelativeAge(now, t time.Time) string {
	if t.IsZero() {
		return "baru saja"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "baru saja"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dj", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dh", int(d/(24*time.Hour)))
	}
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}
