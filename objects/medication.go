// /home/krylon/go/src/github.com/blicero/asklepios/objects/medication.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-02 18:40:09 krylon>

package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson medication.go

// Medication is one medication a Patient is supposed to take at a
// fixed time of day. Schedule is the raw time-of-day string as the
// user entered it ("8:00 AM", "20:00"); parsing and classification
// live in the tier package.
type Medication struct {
	ID          int64
	PatientID   int64
	PatientName string
	Name        string
	Dosage      string
	Schedule    string
	Taken       bool
	Active      bool
	UUID        string
	Changed     time.Time
}

// IsCandidate returns true if the Medication is eligible for the
// missed-dose scan at all, i.e. it is active, not yet taken, and has a
// schedule. Whether the schedule actually parses is for the caller to
// find out.
func (m *Medication) IsCandidate() bool {
	return m.Active && !m.Taken && m.Schedule != ""
} // func (m *Medication) IsCandidate() bool

// Payload returns the Medication's name and dosage, to be passed
// through to the delivery channels unmodified.
func (m *Medication) Payload() (string, string) {
	return m.Name, m.Dosage
} // func (m *Medication) Payload() (string, string)

func (m *Medication) String() string {
	return fmt.Sprintf("Medication{ ID: %d, Patient: %d, Name: %q, Dosage: %q, Schedule: %q }",
		m.ID,
		m.PatientID,
		m.Name,
		m.Dosage,
		m.Schedule)
} // func (m *Medication) String() string
