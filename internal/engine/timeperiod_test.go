// Aria - Playlist Generation Engine for Plex Media Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aria

package engine

import "testing"

func TestPeriodForHour(t *testing.T) {
	tests := []struct {
		hour int
		want Period
	}{
		{6, PeriodMorning},
		{11, PeriodMorning},
		{12, PeriodAfternoon},
		{16, PeriodAfternoon},
		{17, PeriodEvening},
		{21, PeriodEvening},
		{22, PeriodLateNight},
		{2, PeriodLateNight},
		{5, PeriodLateNight},
	}
	for _, tc := range tests {
		if got := PeriodForHour(tc.hour); got != tc.want {
			t.Errorf("PeriodForHour(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestPeriodAllowsHour(t *testing.T) {
	if !PeriodLateNight.AllowsHour(23) || !PeriodLateNight.AllowsHour(3) {
		t.Error("late night should wrap around midnight")
	}
	if PeriodLateNight.AllowsHour(12) {
		t.Error("late night should not admit noon")
	}
	for hour := 0; hour < 24; hour++ {
		if !PeriodAnytime.AllowsHour(hour) {
			t.Errorf("anytime should admit hour %d", hour)
		}
	}
}
