package app

import "time"

// withdrawalWindow returns the half-open interval [start of now's calendar
// day, start of the next day) in now's location. Cumulative withdrawals are
// checked against the daily limit inside this window.
func withdrawalWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}
