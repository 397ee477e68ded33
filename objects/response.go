// /home/krylon/go/src/github.com/blicero/asklepios/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-04 22:03:28 krylon>

package objects

//go:generate ffjson response.go

// Response is what the backend sends to a client after processing a request.
type Response struct {
	ID      int64
	Status  bool
	Message string
}
