// /home/krylon/go/src/github.com/blicero/asklepios/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-02 19:17:03 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson notification.go

// Message is the payload handed to a delivery channel. The channels
// pass Title and Body through unmodified.
type Message struct {
	Title string
	Body  string
}

// NotificationRecord is one entry in the notification history, written
// once per successful send and never updated. The triple of
// MedicationID, CompanionID and Tier is the unit of at-most-once
// delivery per calendar day.
type NotificationRecord struct {
	ID           int64
	MedicationID int64
	CompanionID  int64
	Tier         string
	Channel      string
	Scheduled    time.Time
	Summary      string
	Status       string
	Timestamp    time.Time
}

// DedupKey returns the composite key used to suppress duplicate
// notifications within one calendar day.
func (r *NotificationRecord) DedupKey() string {
	return fmt.Sprintf("%d|%d|%s",
		r.MedicationID,
		r.CompanionID,
		r.Tier)
} // func (r *NotificationRecord) DedupKey() string
