// /home/krylon/go/src/github.com/blicero/asklepios/backend/99_backend_shutdown_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 22:20:12 krylon>

package backend

import (
	"testing"
	"time"
)

func TestBanishDaemon(t *testing.T) {
	if d == nil {
		t.SkipNow()
	}

	var err error

	if err = d.Banish(); err != nil {
		t.Errorf("Cannot banish Daemon: %s",
			err.Error())
	} else if d.IsAlive() {
		t.Error("Daemon should not be alive after being banished")
	}

	// The scan loop must stop promptly, not sit out the rest of its
	// hour-long interval.
	select {
	case <-d.loopDone:
		// All good.
	case <-time.After(time.Second):
		t.Error("Scan loop did not stop within 1s of the Daemon being banished")
	}
} // func TestBanishDaemon(t *testing.T)
