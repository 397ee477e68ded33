// /home/krylon/go/src/github.com/blicero/asklepios/objects/patient.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-04 20:11:32 krylon>

package objects

import "time"

//go:generate ffjson patient.go

// Patient is a person taking medications. Companions are linked to
// Patients through CompanionLinks.
type Patient struct {
	ID      int64
	Name    string
	UUID    string
	Changed time.Time
}
