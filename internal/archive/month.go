package archive

import "time"

// MonthBefore formats the calendar month preceding now as "YYYY-MM". It
// walks back from the first day of the current month rather than using
// AddDate(0, -1, 0), which normalizes day-of-month overflow into the
// wrong month (e.g. March 31 minus one month lands in early March).
func MonthBefore(now time.Time) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}
