package core

import (
	"testing"
	"time"
)

func TestMonthRangeCurrent(t *testing.T) {
	now := time.Date(2024, 3, 20, 15, 4, 5, 0, time.Local)
	w := MonthRange(now, 0)

	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2024, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.Local)
	if !w.Start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", w.End, wantEnd)
	}

	// Inclusive on both ends, exclusive 1ms past the end.
	if !w.Contains(wantStart) {
		t.Fatalf("start must be included")
	}
	if !w.Contains(wantEnd) {
		t.Fatalf("last millisecond must be included")
	}
	if w.Contains(wantEnd.Add(time.Millisecond)) {
		t.Fatalf("first instant of next month must be excluded")
	}
}

func TestMonthRangeOffsets(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)
	cases := []struct {
		offset     int
		wantYear   int
		wantMonth  time.Month
		wantEndDay int
	}{
		{0, 2024, time.January, 31},
		{-1, 2023, time.December, 31},
		{-2, 2023, time.November, 30},
		{1, 2024, time.February, 29}, // leap year
	}
	for i, tc := range cases {
		w := MonthRange(now, tc.offset)
		if w.Start.Year() != tc.wantYear || w.Start.Month() != tc.wantMonth || w.Start.Day() != 1 {
			t.Fatalf("case %d start = %v", i, w.Start)
		}
		if w.End.Day() != tc.wantEndDay || w.End.Month() != tc.wantMonth {
			t.Fatalf("case %d end = %v", i, w.End)
		}
	}
}

func TestMonthRangeMembership(t *testing.T) {
	now := time.Date(2024, 3, 20, 8, 0, 0, 0, time.Local)
	w := MonthRange(now, 0)

	in := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
	outBefore := time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local)
	outAfter := time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)

	if !w.Contains(in) {
		t.Fatalf("mid-month date must be included")
	}
	if w.Contains(outBefore) || w.Contains(outAfter) {
		t.Fatalf("neighbouring months must be excluded")
	}
}

func TestTodayRange(t *testing.T) {
	now := time.Date(2024, 7, 4, 13, 45, 0, 0, time.Local)
	w := TodayRange(now)

	if !w.Contains(time.Date(2024, 7, 4, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("local midnight must be included")
	}
	if !w.Contains(now) {
		t.Fatalf("now must be included")
	}
	if w.Contains(time.Date(2024, 7, 5, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("next midnight must be excluded")
	}
	if w.Contains(time.Date(2024, 7, 3, 23, 59, 59, 0, time.Local)) {
		t.Fatalf("yesterday must be excluded")
	}
}

func TestAllTimeRange(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	w := AllTimeRange(now)

	if w.Start.Year() != 2020 || w.Start.Month() != time.January || w.Start.Day() != 1 {
		t.Fatalf("floor = %v", w.Start)
	}
	if !w.End.Equal(now) {
		t.Fatalf("end = %v, want %v", w.End, now)
	}
	if !w.Contains(time.Date(2021, 6, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("dates after the floor must be included")
	}
}
