package usage

import "time"

// FreshAt returns the earliest time at or after now whose time step is
// newer than last.Counter. period is the length of one time step.
func FreshAt(last Record, now time.Time, period time.Duration) time.Time {
	step := int64(period / time.Second)
	next := time.Unix(int64(last.Counter+1)*step, 0)
	if now.Before(next) {
		return next
	}
	return now
}
