// /home/krylon/go/src/github.com/blicero/asklepios/tier/01_tier_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 18:02:33 krylon>

package tier

import (
	"testing"
	"time"
)

func TestParseScheduleTime(t *testing.T) {
	type testCase struct {
		input     string
		expect    TimeOfDay
		expectErr bool
	}

	var cases = []testCase{
		{input: "8:00 AM", expect: TimeOfDay{8, 0}},
		{input: "08:00", expect: TimeOfDay{8, 0}},
		{input: "8:00", expect: TimeOfDay{8, 0}},
		{input: "8:00 am", expect: TimeOfDay{8, 0}},
		{input: "8:00AM", expect: TimeOfDay{8, 0}},
		{input: "12:00 AM", expect: TimeOfDay{0, 0}},
		{input: "12:30 PM", expect: TimeOfDay{12, 30}},
		{input: "1:05 PM", expect: TimeOfDay{13, 5}},
		{input: "23:59", expect: TimeOfDay{23, 59}},
		{input: "0:00", expect: TimeOfDay{0, 0}},
		{input: "13:65", expectErr: true},
		{input: "24:00", expectErr: true},
		{input: "13:00 PM", expectErr: true},
		{input: "0:30 AM", expectErr: true},
		{input: "garbage", expectErr: true},
		{input: "", expectErr: true},
		{input: "8:0", expectErr: true},
	}

	for _, c := range cases {
		var (
			res TimeOfDay
			ok  bool
		)

		if res, ok = ParseScheduleTime(c.input); ok == c.expectErr {
			t.Errorf("ParseScheduleTime(%q): ok == %t, expected %t",
				c.input,
				ok,
				!c.expectErr)
		} else if ok && res != c.expect {
			t.Errorf("ParseScheduleTime(%q) = %s, expected %s",
				c.input,
				res,
				c.expect)
		}
	}
} // func TestParseScheduleTime(t *testing.T)

func TestMinutesSince(t *testing.T) {
	type testCase struct {
		tod    TimeOfDay
		now    time.Time
		expect float64
	}

	var cases = []testCase{
		{
			tod:    TimeOfDay{8, 0},
			now:    time.Date(2026, 2, 5, 8, 1, 30, 0, time.UTC),
			expect: 1.5,
		},
		{
			tod:    TimeOfDay{8, 0},
			now:    time.Date(2026, 2, 5, 8, 0, 30, 0, time.UTC),
			expect: 0.5,
		},
		{
			tod:    TimeOfDay{8, 0},
			now:    time.Date(2026, 2, 5, 7, 58, 0, 0, time.UTC),
			expect: -2,
		},
		{
			tod:    TimeOfDay{0, 0},
			now:    time.Date(2026, 2, 5, 1, 0, 0, 0, time.UTC),
			expect: 60,
		},
	}

	for _, c := range cases {
		var since = c.tod.MinutesSince(c.now)

		if since != c.expect {
			t.Errorf("MinutesSince(%s, %s) = %f, expected %f",
				c.tod,
				c.now.Format(time.RFC3339),
				since,
				c.expect)
		}
	}
} // func TestMinutesSince(t *testing.T)

func TestClassify(t *testing.T) {
	type testCase struct {
		minutes float64
		expect  []string
	}

	var tbl = DefaultTable()

	if err := tbl.Validate(); err != nil {
		t.Fatalf("Default table does not validate: %s",
			err.Error())
	}

	var cases = []testCase{
		{minutes: -3, expect: nil},
		{minutes: 0, expect: nil},
		{minutes: 0.5, expect: []string{"push1"}},
		{minutes: 1.5, expect: []string{"push1", "push2", "chat"}},
		{minutes: 3, expect: []string{"push1", "push2", "chat", "email"}},
		{minutes: 120, expect: []string{"push1", "push2", "chat", "email"}},
		{minutes: 121, expect: nil},
		{minutes: 86400, expect: nil},
	}

	for _, c := range cases {
		var matched = tbl.Classify(c.minutes)

		if len(matched) != len(c.expect) {
			t.Errorf("Classify(%.2f) returned %d tiers, expected %d",
				c.minutes,
				len(matched),
				len(c.expect))
			continue
		}

		for i, name := range c.expect {
			if matched[i].Name != name {
				t.Errorf("Classify(%.2f)[%d] = %s, expected %s",
					c.minutes,
					i,
					matched[i].Name,
					name)
			}
		}
	}
} // func TestClassify(t *testing.T)

// Qualifying for a tier must imply qualifying for every earlier one.
func TestClassifyMonotonic(t *testing.T) {
	var tbl = DefaultTable()

	for m := 0.0; m <= tbl.Ceiling; m += 0.25 {
		var matched = tbl.Classify(m)

		for i := 1; i < len(matched); i++ {
			if matched[i].Threshold <= matched[i-1].Threshold {
				t.Fatalf("Classify(%.2f): tier %s (%.2f) follows %s (%.2f)",
					m,
					matched[i].Name,
					matched[i].Threshold,
					matched[i-1].Name,
					matched[i-1].Threshold)
			}
		}

		if len(matched) > 0 && matched[0].Name != tbl.Tiers[0].Name {
			t.Fatalf("Classify(%.2f): first matched tier is %s, not %s",
				m,
				matched[0].Name,
				tbl.Tiers[0].Name)
		}
	}
} // func TestClassifyMonotonic(t *testing.T)

func TestValidate(t *testing.T) {
	type testCase struct {
		name      string
		tbl       Table
		expectErr bool
	}

	var cases = []testCase{
		{
			name: "default",
			tbl:  DefaultTable(),
		},
		{
			name:      "empty",
			tbl:       Table{Ceiling: 120},
			expectErr: true,
		},
		{
			name: "non-monotonic",
			tbl: Table{
				Tiers: []Tier{
					{Name: "a", Threshold: 2, Channels: []string{"push"}},
					{Name: "b", Threshold: 1, Channels: []string{"push"}},
				},
				Ceiling: 120,
			},
			expectErr: true,
		},
		{
			name: "ceiling below thresholds",
			tbl: Table{
				Tiers: []Tier{
					{Name: "a", Threshold: 2, Channels: []string{"push"}},
				},
				Ceiling: 2,
			},
			expectErr: true,
		},
		{
			name: "duplicate name",
			tbl: Table{
				Tiers: []Tier{
					{Name: "a", Threshold: 1, Channels: []string{"push"}},
					{Name: "a", Threshold: 2, Channels: []string{"push"}},
				},
				Ceiling: 120,
			},
			expectErr: true,
		},
		{
			name: "no channels",
			tbl: Table{
				Tiers: []Tier{
					{Name: "a", Threshold: 1},
				},
				Ceiling: 120,
			},
			expectErr: true,
		},
	}

	for _, c := range cases {
		var err = c.tbl.Validate()

		if (err != nil) != c.expectErr {
			t.Errorf("Validate (%s): err == %v, expected error: %t",
				c.name,
				err,
				c.expectErr)
		}
	}
} // func TestValidate(t *testing.T)
