// /home/krylon/go/src/github.com/blicero/asklepios/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 20:14:46 krylon>

// Package backend implements the server side of the application: the
// web interface the clients talk to, and the periodic scan for missed
// doses.
package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/blicero/asklepios/channel"
	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/config"
	"github.com/blicero/asklepios/database"
	"github.com/blicero/asklepios/dispatch"
	"github.com/blicero/asklepios/logdomain"
	"github.com/gorilla/mux"
	"github.com/grandcat/zeroconf"
)

const poolSize = 4

// Daemon is the centerpiece of the backend, coordinating between the
// database, the dispatch engine, and the clients.
type Daemon struct {
	log      *log.Logger
	cfg      *config.Config
	pool     *database.Pool
	engine   *dispatch.Engine
	web      http.Server
	router   *mux.Router
	dnssd    *zeroconf.Server
	hostname string
	lock     sync.RWMutex
	active   bool
	quitq    chan struct{}
	loopDone chan struct{}
	runLock  sync.Mutex
	sumLock  sync.RWMutex
	lastRun  *dispatch.Summary
	idLock   sync.Mutex
	idCnt    int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is required.
func Summon(cfg *config.Config) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			cfg:      cfg,
			active:   true,
			quitq:    make(chan struct{}),
			loopDone: make(chan struct{}),
			router:   mux.NewRouter(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.pool, err = database.NewPool(poolSize); err != nil {
		d.log.Printf("[ERROR] Cannot initialize database pool: %s\n",
			err.Error())
		return nil, err
	} else if d.hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot determine hostname: %s\n",
			err.Error())
		return nil, err
	}

	var channels []channel.Channel

	if channels, err = buildChannels(cfg); err != nil {
		d.log.Printf("[ERROR] Cannot set up delivery channels: %s\n",
			err.Error())
		return nil, err
	}

	if d.engine, err = dispatch.NewEngine(cfg, d.pool, channels); err != nil {
		d.log.Printf("[ERROR] Cannot create dispatch engine: %s\n",
			err.Error())
		return nil, err
	}

	d.web.Addr = cfg.ListenAddr
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	if cfg.Announce {
		if err = d.initDNSSd(); err != nil {
			d.log.Printf("[ERROR] Failed to announce service via DNS-SD: %s\n",
				err.Error())
			return nil, err
		}
	}

	if cfg.EngineEnabled {
		go d.engineLoop()
	} else {
		close(d.loopDone)
		d.log.Println("[INFO] Periodic scan is disabled, doses will only be checked on demand")
	}

	go d.serveHTTP()

	return d, nil
} // func Summon(cfg *config.Config) (*Daemon, error)

// buildChannels creates the delivery channels the configuration
// provides credentials for. A channel with no credentials is simply
// not offered; the tier table may still reference it, those sends
// just never happen.
func buildChannels(cfg *config.Config) ([]channel.Channel, error) {
	var (
		err      error
		channels []channel.Channel
	)

	if cfg.VapidPublic != "" && cfg.VapidPrivate != "" {
		var push *channel.PushChannel
		if push, err = channel.NewPushChannel(cfg.VapidPublic, cfg.VapidPrivate, cfg.VapidSubject); err != nil {
			return nil, err
		}
		channels = append(channels, push)
	}

	if cfg.ChatToken != "" {
		var chat *channel.ChatChannel
		if chat, err = channel.NewChatChannel(cfg.ChatToken, cfg.SendTimeout); err != nil {
			return nil, err
		}
		channels = append(channels, chat)
	}

	if cfg.MailHost != "" {
		var mail *channel.MailChannel
		if mail, err = channel.NewMailChannel(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPassword, cfg.MailFrom); err != nil {
			return nil, err
		}
		channels = append(channels, mail)
	}

	if cfg.Desktop {
		var desk *channel.DesktopChannel
		if desk, err = channel.NewDesktopChannel(); err != nil {
			return nil, err
		}
		channels = append(channels, desk)
	}

	return channels, nil
} // func buildChannels(cfg *config.Config) ([]channel.Channel, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.lock.Lock()
	if d.active {
		d.active = false
		close(d.quitq)
	}
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

// engineLoop runs the missed-dose scan at the configured interval.
// All runs happen on this one goroutine, so runs can never overlap;
// if a run takes longer than the interval, ticks are simply dropped.
func (d *Daemon) engineLoop() {
	defer close(d.loopDone)
	defer d.log.Println("[TRACE] Quitting engineLoop")

	var ticker = time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.quitq:
			return
		case <-ticker.C:
			if _, err := d.runEngine(context.Background()); err != nil {
				d.log.Printf("[ERROR] Dispatch run failed: %s\n",
					err.Error())
			}
		}
	}
} // func (d *Daemon) engineLoop()

// runEngine performs one scan and remembers the Summary. The run lock
// serializes on-demand runs with the periodic ones, two scans can
// never overlap.
func (d *Daemon) runEngine(ctx context.Context) (*dispatch.Summary, error) {
	d.runLock.Lock()
	defer d.runLock.Unlock()

	var sum, err = d.engine.Run(ctx)

	if sum != nil {
		d.sumLock.Lock()
		d.lastRun = sum
		d.sumLock.Unlock()
	}

	return sum, err
} // func (d *Daemon) runEngine(ctx context.Context) (*dispatch.Summary, error)

// LastRun returns the Summary of the most recent scan, which may be nil.
func (d *Daemon) LastRun() *dispatch.Summary {
	d.sumLock.RLock()
	var sum = d.lastRun
	d.sumLock.RUnlock()

	return sum
} // func (d *Daemon) LastRun() *dispatch.Summary
