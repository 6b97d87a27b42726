package engine

import "time"

// dailySeen remembers which badges completed an entry today, to tell
// "first entry today" apart from "return to room". The set is keyed to
// the local wall-clock day it was built for and clears itself on the
// first use of a new day, so the distinction stays correct across
// multi-day uptime.
type dailySeen struct {
	day    string
	badges map[string]struct{}
}

func newDailySeen() *dailySeen {
	return &dailySeen{badges: make(map[string]struct{})}
}

// firstToday reports whether this is the badge's first entry of the
// current day and marks it seen.
func (s *dailySeen) firstToday(badgeID string, now time.Time) bool {
	day := now.Local().Format("2006-01-02")
	if day != s.day {
		s.day = day
		s.badges = make(map[string]struct{})
	}
	if _, ok := s.badges[badgeID]; ok {
		return false
	}
	s.badges[badgeID] = struct{}{}
	return true
}
