package Dates

import (
	"time"
)

// Layout is the wire format for calendar dates throughout the API.
const Layout = "2006-01-02"

func Today() string {
	return time.Now().Format(Layout)
}

// GenerateDateRange returns a continuous day-by-day sequence covering every
// date in known, clamped to start no later than six days ago and end no
// earlier than today. With no known dates that is exactly the last seven
// days ending today.
func GenerateDateRange(known []string) []string {
	return GenerateDateRangeAt(known, time.Now())
}

// GenerateDateRangeAt is GenerateDateRange with an explicit reference day.
func GenerateDateRangeAt(known []string, now time.Time) []string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -6)
	end := today

	for _, k := range known {
		d, err := time.ParseInLocation(Layout, k, time.UTC)
		if err != nil {
			continue
		}
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(Layout))
	}
	return dates
}

// RunningStreak walks the date range backward from today and counts the
// current run. A streak done today counts the consecutive done days ending
// today. A streak done yesterday but not yet today counts the run ending
// yesterday, so an unticked today does not break it. Otherwise the result
// is negative: the number of consecutive not-done days ending today,
// bounded by the start of the range.
func RunningStreak(dates []string, done map[string]bool) int {
	return RunningStreakAt(dates, done, Today())
}

// RunningStreakAt is RunningStreak with an explicit reference day. The
// range may extend past today (future-dated logs widen it); those days do
// not move the anchor.
func RunningStreakAt(dates []string, done map[string]bool, today string) int {
	if len(dates) == 0 {
		return 0
	}

	// Layout-formatted dates order lexicographically
	last := -1
	for i := len(dates) - 1; i >= 0; i-- {
		if dates[i] <= today {
			last = i
			break
		}
	}
	if last < 0 {
		return 0
	}

	if done[dates[last]] {
		n := 0
		for i := last; i >= 0 && done[dates[i]]; i-- {
			n++
		}
		return n
	}

	if last >= 1 && done[dates[last-1]] {
		n := 0
		for i := last - 1; i >= 0 && done[dates[i]]; i-- {
			n++
		}
		return n
	}

	n := 0
	for i := last; i >= 0 && !done[dates[i]]; i-- {
		n++
	}
	return -n
}

// LongestRun returns the longest sequence of consecutive done days within
// the range.
func LongestRun(dates []string, done map[string]bool) int {
	longest, current := 0, 0
	for _, d := range dates {
		if done[d] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}
