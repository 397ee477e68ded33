// /home/krylon/go/src/github.com/blicero/asklepios/objects/companion.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-02 19:02:47 krylon>

package objects

import (
	"fmt"
	"time"

	"github.com/blicero/asklepios/objects/linkstatus"
)

//go:generate ffjson companion.go

// Companion is a family member or caregiver who gets notified when a
// linked Patient misses a dose. Email and ChatID are both optional; a
// Companion without either can still be reached via Web Push if they
// have registered a subscription.
type Companion struct {
	ID            int64
	Name          string
	Email         string
	ChatID        int64
	Subscriptions []PushSubscription
	UUID          string
	Changed       time.Time
}

func (c *Companion) String() string {
	return fmt.Sprintf("Companion{ ID: %d, Name: %q, Email: %q, ChatID: %d, Subscriptions: %d }",
		c.ID,
		c.Name,
		c.Email,
		c.ChatID,
		len(c.Subscriptions))
} // func (c *Companion) String() string

// CompanionLink ties a Companion to a Patient. Only links with Status
// Accepted make the Companion a recipient of that Patient's alerts.
type CompanionLink struct {
	ID          int64
	PatientID   int64
	CompanionID int64
	Status      linkstatus.Status
	Changed     time.Time
}
