// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

// Period is a wall-clock listening window. History seeds are restricted to
// the active period when use_time_periods is set, so a morning run leans on
// morning listening.
type Period string

const (
	PeriodMorning   Period = "morning"    // 06-11
	PeriodAfternoon Period = "afternoon"  // 12-16
	PeriodEvening   Period = "evening"    // 17-21
	PeriodLateNight Period = "late_night" // 22-05
	PeriodAnytime   Period = "anytime"
)

// PeriodForHour maps an hour of day to its period.
func PeriodForHour(hour int) Period {
	switch {
	case hour >= 6 && hour <= 11:
		return PeriodMorning
	case hour >= 12 && hour <= 16:
		return PeriodAfternoon
	case hour >= 17 && hour <= 21:
		return PeriodEvening
	default:
		return PeriodLateNight
	}
}

// AllowsHour reports whether the period admits history entries viewed at the
// given hour. Anytime admits all hours.
func (p Period) AllowsHour(hour int) bool {
	switch p {
	case PeriodMorning:
		return hour >= 6 && hour <= 11
	case PeriodAfternoon:
		return hour >= 12 && hour <= 16
	case PeriodEvening:
		return hour >= 17 && hour <= 21
	case PeriodLateNight:
		return hour >= 22 || hour <= 5
	default:
		return true
	}
}
