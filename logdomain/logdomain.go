// /home/krylon/go/src/github.com/blicero/asklepios/logdomain/logdomain.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-03 18:22:41 krylon>

// Package logdomain provides symbolic constants to identify the
// various pieces of the application that want to do logging.
package logdomain

//go:generate stringer -type=ID

// ID represents a log source.
type ID uint8

// These constants identify the various log sources.
const (
	Common ID = iota
	Backend
	Channel
	Client
	Config
	Database
	DBPool
	Dispatch
)

// AllDomains returns a slice of all the known log sources.
func AllDomains() []ID {
	return []ID{
		Common,
		Backend,
		Channel,
		Client,
		Config,
		Database,
		DBPool,
		Dispatch,
	}
} // func AllDomains() []ID
