// /home/krylon/go/src/github.com/blicero/asklepios/tier/tier.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 17:28:50 krylon>

// Package tier implements the classification of overdue doses into
// notification tiers. Everything in here is pure computation, no I/O.
package tier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time of day, without a date or time zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d",
		t.Hour,
		t.Minute)
} // func (t TimeOfDay) String() string

var schedPat = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*([AaPp][Mm]))?$`)

// ParseScheduleTime parses a schedule string as the user entered it.
// It accepts "H:MM", "HH:MM" and "H:MM AM/PM" (case-insensitive).
// On 12-hour input, 12 AM maps to hour 0.
// The second return value is false if the string has any other shape;
// an unparseable schedule is silently excluded from notification, so
// this function must never panic.
func ParseScheduleTime(raw string) (TimeOfDay, bool) {
	var (
		err   error
		t     TimeOfDay
		h, m  int64
		match []string
	)

	if match = schedPat.FindStringSubmatch(strings.TrimSpace(raw)); match == nil {
		return t, false
	}

	// The pattern only matches digits, these cannot fail.
	h, err = strconv.ParseInt(match[1], 10, 8)
	if err != nil {
		return t, false
	}
	m, err = strconv.ParseInt(match[2], 10, 8)
	if err != nil {
		return t, false
	}

	if m > 59 {
		return t, false
	}

	if match[3] != "" {
		if h < 1 || h > 12 {
			return t, false
		}

		switch strings.ToUpper(match[3]) {
		case "AM":
			if h == 12 {
				h = 0
			}
		case "PM":
			if h != 12 {
				h += 12
			}
		}
	} else if h > 23 {
		return t, false
	}

	t.Hour = int(h)
	t.Minute = int(m)

	return t, true
} // func ParseScheduleTime(raw string) (TimeOfDay, bool)

// MinutesSince returns the time elapsed from "today at t" to now, in
// minutes. The result is signed, a negative value means the dose is
// still upcoming. Sub-minute precision is preserved, the finest tier
// threshold may well be below one minute.
func (t TimeOfDay) MinutesSince(now time.Time) float64 {
	var due = time.Date(
		now.Year(),
		now.Month(),
		now.Day(),
		t.Hour,
		t.Minute,
		0,
		0,
		now.Location())

	return now.Sub(due).Minutes()
} // func (t TimeOfDay) MinutesSince(now time.Time) float64

// Tier is one named urgency level. Threshold is in minutes past the
// scheduled time; Channels names the delivery channels eligible at
// this level.
type Tier struct {
	Name      string
	Threshold float64
	Channels  []string
}

// Table is the ordered set of Tiers plus the global staleness ceiling
// (also in minutes), beyond which a dose is not considered for any
// tier at all.
type Table struct {
	Tiers   []Tier
	Ceiling float64
}

// DefaultTable returns the tier table the application ships with.
func DefaultTable() Table {
	return Table{
		Tiers: []Tier{
			{Name: "push1", Threshold: 0.5, Channels: []string{"push"}},
			{Name: "push2", Threshold: 1, Channels: []string{"push"}},
			{Name: "chat", Threshold: 1.5, Channels: []string{"chat"}},
			{Name: "email", Threshold: 3, Channels: []string{"email"}},
		},
		Ceiling: 120,
	}
} // func DefaultTable() Table

// Validate checks that the thresholds are strictly increasing and
// that the ceiling lies above the largest threshold. The dispatch
// logic silently assumes a monotonic table, so we refuse to start on
// a misconfigured one instead of trusting it.
func (tbl *Table) Validate() error {
	if len(tbl.Tiers) == 0 {
		return fmt.Errorf("tier table is empty")
	}

	var prev = tbl.Tiers[0].Threshold

	for _, t := range tbl.Tiers[1:] {
		if t.Threshold <= prev {
			return fmt.Errorf("tier %s: threshold %.2f is not greater than its predecessor's (%.2f)",
				t.Name,
				t.Threshold,
				prev)
		}
		prev = t.Threshold
	}

	if tbl.Ceiling <= prev {
		return fmt.Errorf("staleness ceiling %.2f does not lie above the largest threshold (%.2f)",
			tbl.Ceiling,
			prev)
	}

	var seen = make(map[string]bool, len(tbl.Tiers))

	for _, t := range tbl.Tiers {
		if seen[t.Name] {
			return fmt.Errorf("duplicate tier name %q", t.Name)
		} else if len(t.Channels) == 0 {
			return fmt.Errorf("tier %s has no channels", t.Name)
		}
		seen[t.Name] = true
	}

	return nil
} // func (tbl *Table) Validate() error

// Classify returns every Tier whose threshold has passed, i.e. whose
// threshold is <= minutes. A dose past the staleness ceiling matches
// no tier at all, no matter how it relates to the thresholds; that
// way a backlog of doses overdue by hours (say, after an outage) does
// not set off a storm of alerts. Tiers are cumulative, qualifying for
// tier N implies qualifying for every tier before it.
func (tbl *Table) Classify(minutes float64) []Tier {
	if minutes > tbl.Ceiling {
		return nil
	}

	var matched []Tier

	for _, t := range tbl.Tiers {
		if t.Threshold <= minutes {
			matched = append(matched, t)
		}
	}

	return matched
} // func (tbl *Table) Classify(minutes float64) []Tier
