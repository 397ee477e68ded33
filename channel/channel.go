// /home/krylon/go/src/github.com/blicero/asklepios/channel/channel.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-05 23:02:19 krylon>

// Package channel defines the delivery channels a notification can go
// out on. Each Channel owns its connection lifecycle behind a single
// Send method; the dispatch engine does not know or care what is on
// the other side.
package channel

import (
	"context"
	"fmt"

	"github.com/blicero/asklepios/objects"
)

// Names of the channels the application knows about. The tier table
// refers to channels by these names.
const (
	Push    = "push"
	Chat    = "chat"
	Email   = "email"
	Desktop = "desktop"
)

// Result carries channel-specific information about a successful (or
// partially successful) send. Gone lists push endpoints the provider
// reported as permanently dead; the caller is expected to deregister
// those.
type Result struct {
	Gone []string
}

// Channel is one independent delivery mechanism.
type Channel interface {
	// Name returns the name the tier table refers to this Channel by.
	Name() string

	// CanReach returns true if the Companion has the contact
	// information this Channel requires.
	CanReach(c *objects.Companion) bool

	// Send attempts to deliver the message to the Companion.
	Send(ctx context.Context, rcpt *objects.Companion, msg *objects.Message) (Result, error)
}

// GoneError reports that a push endpoint is permanently dead.
type GoneError struct {
	Endpoint string
	Code     int
}

func (e *GoneError) Error() string {
	return fmt.Sprintf("push endpoint is gone (HTTP %d): %s",
		e.Code,
		e.Endpoint)
} // func (e *GoneError) Error() string
