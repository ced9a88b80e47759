package models

import "time"

// NextUpdate returns the updated-at value for a record last stamped at prev.
// It never moves backwards, even if the wall clock does.
func NextUpdate(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
