// /home/krylon/go/src/github.com/blicero/asklepios/main.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 21:40:19 krylon>

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blicero/asklepios/backend"
	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/config"
)

func main() {
	fmt.Printf("%s %s (built %s)\n",
		common.AppName,
		common.Version,
		common.BuildStamp.Format(common.TimestampFormat))

	var (
		err          error
		cfg          *config.Config
		daemon       *backend.Daemon
		appDir, addr string
	)

	flag.StringVar(
		&appDir,
		"appdir",
		common.BaseDir,
		"The directory where application-specific files live")

	flag.StringVar(
		&addr,
		"address",
		"",
		"Address to listen on (overrides the configuration)",
	)

	flag.Parse()

	if appDir != common.BaseDir {
		if err = common.SetBaseDir(appDir); err != nil {
			fmt.Fprintf(
				os.Stderr,
				"Cannot set application directory to %s: %s\n",
				appDir,
				err.Error())
			os.Exit(1)
		}
	}

	if cfg, err = config.Load(); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Failed to load configuration: %s\n",
			err.Error())
		os.Exit(1)
	}

	if addr != "" {
		cfg.ListenAddr = addr
	}

	if daemon, err = backend.Summon(cfg); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Failed to initialize backend: %s\n",
			err.Error())
		os.Exit(1)
	}

	var sigQ = make(chan os.Signal, 1)
	var ticker = time.NewTicker(time.Second * 2)

	signal.Notify(sigQ, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	for daemon.IsAlive() {
		select {
		case sig := <-sigQ:
			fmt.Printf("Quitting on signal %s\n", sig)
			daemon.Banish() // nolint: errcheck
			os.Exit(0)
		case <-ticker.C:
			continue
		}
	}
}
