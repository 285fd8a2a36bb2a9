package boost

import (
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

// IsQuiet reports whether now falls inside the household's quiet hours,
// evaluated against the local wall clock in loc (DST-aware). Start is
// inclusive, end exclusive. A start after the end means the window crosses
// midnight (21:30–07:00 suppresses late evening and early morning).
func IsQuiet(now time.Time, qh model.QuietHours, loc *time.Location) bool {
	start, err := model.ParseClock(qh.Start)
	if err != nil {
		return false
	}
	end, err := model.ParseClock(qh.End)
	if err != nil {
		return false
	}

	local := now.In(loc)
	current := local.Hour()*60 + local.Minute()

	if start > end {
		return current >= start || current < end
	}
	return current >= start && current < end
}
