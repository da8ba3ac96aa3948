// Package scheduler drives the batch jobs on calendar rules. The scheduler is
// an explicitly constructed instance wired at the composition root; rules are
// a small recurring-task abstraction (minute ticker plus calendar evaluation)
// so the mechanism stays swappable.
package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Rule decides when a job fires. Due reports whether a scheduled occurrence
// falls in the half-open interval (last, now]; occurrences are evaluated in
// UTC.
type Rule interface {
	Due(last, now time.Time) bool
	String() string
}

// DailyRule fires once per day at the given hour.
type DailyRule struct {
	Hour int
}

func (r DailyRule) Due(last, now time.Time) bool {
	occ := mostRecentDaily(now.UTC(), r.Hour)
	return occ.After(last.UTC()) && !occ.After(now.UTC())
}

// mostRecentDaily returns the latest "today/yesterday at hour" not after now.
func mostRecentDaily(now time.Time, hour int) time.Time {
	occ := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if occ.After(now) {
		occ = occ.AddDate(0, 0, -1)
	}
	return occ
}

func (r DailyRule) String() string {
	return fmt.Sprintf("daily at %02d:00 UTC", r.Hour)
}

// MonthDaysRule fires on fixed days of the month at the given hour; days that
// a short month lacks (e.g. 31 in February) are skipped that month.
type MonthDaysRule struct {
	Days []int
	Hour int
}

func (r MonthDaysRule) Due(last, now time.Time) bool {
	occ, ok := r.mostRecent(now.UTC())
	return ok && occ.After(last.UTC()) && !occ.After(now.UTC())
}

// mostRecent scans back up to two months for the latest configured day not
// after now.
func (r MonthDaysRule) mostRecent(now time.Time) (time.Time, bool) {
	days := append([]int(nil), r.Days...)
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	for back := 0; back < 3; back++ {
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -back, 0)
		for _, day := range days {
			occ := time.Date(month.Year(), month.Month(), day, r.Hour, 0, 0, 0, time.UTC)
			if occ.Month() != month.Month() {
				continue // day overflowed a short month
			}
			if !occ.After(now) {
				return occ, true
			}
		}
	}
	return time.Time{}, false
}

func (r MonthDaysRule) String() string {
	parts := make([]string, len(r.Days))
	for i, d := range r.Days {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("monthly on day %s at %02d:00 UTC", strings.Join(parts, ","), r.Hour)
}
