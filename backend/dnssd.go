// /home/krylon/go/src/github.com/blicero/asklepios/backend/dnssd.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 20:31:02 krylon>

package backend

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/blicero/asklepios/common"
	"github.com/grandcat/zeroconf"
)

const (
	srvService = "_http._tcp"
	srvDomain  = "local."
)

var addrPat = regexp.MustCompile(`:(\d+)$`)

// initDNSSd announces the web interface via DNS-SD so the mobile
// clients can find the backend on the local network without
// configuration.
func (d *Daemon) initDNSSd() error {
	var (
		err   error
		match []string
		port  int64
		srv   *zeroconf.Server
	)

	if match = addrPat.FindStringSubmatch(d.web.Addr); match == nil {
		err = fmt.Errorf("Cannot extract HTTP port from server address %q",
			d.web.Addr)
		d.log.Printf("[ERROR] %s\n", err.Error())
		return err
	} else if port, err = strconv.ParseInt(match[1], 10, 16); err != nil {
		d.log.Printf("[ERROR] Cannot parse HTTP port from server address %q: %s\n",
			d.web.Addr,
			err.Error())
		return err
	}

	var txt = []string{"txtv=0"}

	var instanceName = fmt.Sprintf("%s@%s",
		common.AppName,
		d.hostname)

	if srv, err = zeroconf.Register(instanceName, srvService, srvDomain, int(port), txt, nil); err != nil {
		d.log.Printf("[ERROR] Cannot register service with DNS-SD: %s\n",
			err.Error())
		return err
	}

	d.dnssd = srv
	return nil
} // func (d *Daemon) initDNSSd() error
