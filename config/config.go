// /home/krylon/go/src/github.com/blicero/asklepios/config/config.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-05 22:31:47 krylon>

// Package config loads the application settings from the environment
// and an optional YAML file under the base directory. The result is
// an immutable snapshot that gets passed around explicitly; nothing
// in here is consulted again after startup.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/tier"
	"github.com/spf13/viper"
)

// Config holds all the knobs the application recognizes.
// Every field has a default, a fresh install runs with an empty
// environment (albeit with all remote channels disabled, for lack of
// credentials).
type Config struct {
	ListenAddr    string
	Announce      bool
	EngineEnabled bool
	Interval      time.Duration
	SendTimeout   time.Duration
	MaxConcurrent int
	Tiers         tier.Table
	MailHost      string
	MailPort      int
	MailUser      string
	MailPassword  string
	MailFrom      string
	ChatToken     string
	VapidPublic   string
	VapidPrivate  string
	VapidSubject  string
	Desktop       bool
}

// Load reads the configuration. Environment variables use the prefix
// ASKLEPIOS_ with dots replaced by underscores, e.g.
// ASKLEPIOS_ENGINE_INTERVAL=30s.
func Load() (*Config, error) {
	var (
		err error
		lg  *log.Logger
		v   = viper.New()
	)

	if lg, err = common.GetLogger(logdomain.Config); err != nil {
		return nil, err
	}

	v.SetDefault("web.addr", fmt.Sprintf("localhost:%d", common.DefaultPort))
	v.SetDefault("web.announce", true)
	v.SetDefault("engine.enabled", true)
	v.SetDefault("engine.interval", "30s")
	v.SetDefault("engine.sendtimeout", "10s")
	v.SetDefault("engine.maxconcurrent", 8)
	v.SetDefault("engine.ceiling", 120.0)
	v.SetDefault("tier.push1", 0.5)
	v.SetDefault("tier.push2", 1.0)
	v.SetDefault("tier.chat", 1.5)
	v.SetDefault("tier.email", 3.0)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("chat.token", "")
	v.SetDefault("vapid.public", "")
	v.SetDefault("vapid.private", "")
	v.SetDefault("vapid.subject", "")
	v.SetDefault("desktop.enabled", false)

	v.SetEnvPrefix(strings.ToUpper(common.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(common.CfgPath)
	v.SetConfigType("yaml")

	if err = v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			lg.Printf("[DEBUG] No config file at %s, using environment and defaults\n",
				common.CfgPath)
		} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			lg.Printf("[DEBUG] No config file at %s, using environment and defaults\n",
				common.CfgPath)
		} else {
			lg.Printf("[ERROR] Cannot read config file %s: %s\n",
				common.CfgPath,
				err.Error())
			return nil, err
		}
	}

	var cfg = &Config{
		ListenAddr:    v.GetString("web.addr"),
		Announce:      v.GetBool("web.announce"),
		EngineEnabled: v.GetBool("engine.enabled"),
		Interval:      v.GetDuration("engine.interval"),
		SendTimeout:   v.GetDuration("engine.sendtimeout"),
		MaxConcurrent: v.GetInt("engine.maxconcurrent"),
		MailHost:      v.GetString("mail.host"),
		MailPort:      v.GetInt("mail.port"),
		MailUser:      v.GetString("mail.user"),
		MailPassword:  v.GetString("mail.password"),
		MailFrom:      v.GetString("mail.from"),
		ChatToken:     v.GetString("chat.token"),
		VapidPublic:   v.GetString("vapid.public"),
		VapidPrivate:  v.GetString("vapid.private"),
		VapidSubject:  v.GetString("vapid.subject"),
		Desktop:       v.GetBool("desktop.enabled"),
	}

	cfg.Tiers = tier.Table{
		Tiers: []tier.Tier{
			{Name: "push1", Threshold: v.GetFloat64("tier.push1"), Channels: []string{"push"}},
			{Name: "push2", Threshold: v.GetFloat64("tier.push2"), Channels: []string{"push"}},
			{Name: "chat", Threshold: v.GetFloat64("tier.chat"), Channels: []string{"chat"}},
			{Name: "email", Threshold: v.GetFloat64("tier.email"), Channels: []string{"email"}},
		},
		Ceiling: v.GetFloat64("engine.ceiling"),
	}

	if err = cfg.Tiers.Validate(); err != nil {
		lg.Printf("[ERROR] Invalid tier table: %s\n",
			err.Error())
		return nil, err
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}

	return cfg, nil
} // func Load() (*Config, error)
