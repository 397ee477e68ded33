// /home/krylon/go/src/github.com/blicero/asklepios/objects/linkstatus/linkstatus.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-04 20:23:55 krylon>

//go:generate stringer -type=Status

// Package linkstatus contains symbolic constants for the state of the
// link between a Patient and a Companion.
package linkstatus

// Status describes the state of a Patient/Companion link.
type Status uint8

// Pending means the Patient has invited the Companion but the
// Companion has not reacted yet.
// Only Accepted links make the Companion a valid notification
// recipient.
const (
	Pending Status = iota
	Accepted
	Declined
)
