// /home/krylon/go/src/github.com/blicero/asklepios/objects/subscription.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-04 21:47:12 krylon>

package objects

import "time"

//go:generate ffjson subscription.go

// PushSubscription is one Web Push subscription registered by a
// Companion's browser or mobile app. The Endpoint is unique per
// subscription; P256dh and Auth are the client's encryption keys.
type PushSubscription struct {
	ID          int64
	CompanionID int64
	Endpoint    string
	P256dh      string
	Auth        string
	Changed     time.Time
}
