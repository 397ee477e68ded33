// /home/krylon/go/src/github.com/blicero/asklepios/channel/desktop.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-06 00:41:02 krylon>

package channel

import (
	"context"
	"fmt"
	"log"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	"github.com/godbus/dbus/v5"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// DesktopChannel posts notifications on the local desktop via DBus.
// Only useful on a self-hosted, single-machine install, where the
// backend runs inside the user's session; off by default.
type DesktopChannel struct {
	log *log.Logger
	bus *dbus.Conn
}

// NewDesktopChannel connects to the DBus session bus.
func NewDesktopChannel() (*DesktopChannel, error) {
	var (
		err error
		ch  = new(DesktopChannel)
	)

	if ch.log, err = common.GetLogger(logdomain.Channel); err != nil {
		return nil, err
	} else if ch.bus, err = dbus.SessionBus(); err != nil {
		ch.log.Printf("[ERROR] Failed to connect to DBus Session bus: %s\n",
			err.Error())
		return nil, err
	}

	return ch, nil
} // func NewDesktopChannel() (*DesktopChannel, error)

// Name returns the channel name.
func (ch *DesktopChannel) Name() string {
	return Desktop
} // func (ch *DesktopChannel) Name() string

// CanReach returns true for any Companion; the message lands on the
// local desktop, not with the Companion specifically.
func (ch *DesktopChannel) CanReach(c *objects.Companion) bool {
	return true
} // func (ch *DesktopChannel) CanReach(c *objects.Companion) bool

// Send posts the message on the desktop.
func (ch *DesktopChannel) Send(ctx context.Context, rcpt *objects.Companion, msg *objects.Message) (Result, error) {
	var res Result

	var obj = ch.bus.Object(notifyObj, notifyPath)

	if obj == nil {
		var err = fmt.Errorf("Did not find object %s (%s) on session bus",
			notifyObj,
			notifyPath)
		ch.log.Printf("[ERROR] %s\n", err.Error())
		return res, err
	}

	var call = obj.CallWithContext(
		ctx,
		notifyMethod,
		0,
		common.AppName,
		uint32(0),
		"",
		msg.Title,
		msg.Body,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1),
	)

	if call.Err != nil {
		ch.log.Printf("[ERROR] Cannot post Notification %q: %s\n",
			msg.Title,
			call.Err.Error())
		return res, call.Err
	}

	return res, nil
} // func (ch *DesktopChannel) Send(...) (Result, error)
