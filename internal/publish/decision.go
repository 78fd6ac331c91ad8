// Package publish decides how and when a completed episode goes live and
// guarantees the call happens at most once per episode.
package publish

import "time"

// Mode selects what happens to the episode once assembly completes.
type Mode string

const (
	ModeNow      Mode = "now"
	ModeDraft    Mode = "draft"
	ModeSchedule Mode = "schedule"
)

// ParseMode converts a wire value into a Mode, defaulting to draft.
func ParseMode(value string) Mode {
	switch value {
	case string(ModeNow):
		return ModeNow
	case string(ModeSchedule):
		return ModeSchedule
	default:
		return ModeDraft
	}
}

// Decision is the user's publish choice, captured with the episode draft.
// For ModeSchedule the timestamp must stay far enough in the future at both
// validation time and fire time; the two checks can see different clocks
// because assembly takes a while.
type Decision struct {
	Mode        Mode
	Visibility  string
	ScheduledAt time.Time
}
