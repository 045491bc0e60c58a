package services

import "time"

// timeNow is the clock used for record timestamps.
var timeNow = time.Now

// dateOnly drops the time of day, keeping the calendar date as midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
