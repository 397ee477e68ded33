// /home/krylon/go/src/github.com/blicero/asklepios/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-02-27 19:06:18 krylon>

// Package common provides constants and utility functions used
// throughout the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/krylib"
	"github.com/hashicorp/logutils"
	uuid "github.com/odeke-em/go-uuid"
)

// Debug, if true, causes the application to log additional messages.
// AppName, Version should be self-explanatory.
const (
	Debug                    = true
	AppName                  = "Asklepios"
	Version                  = "0.3.1"
	TimestampFormat          = "2006-01-02 15:04:05"
	TimestampFormatMinute    = "2006-01-02 15:04"
	TimestampFormatSubSecond = "2006-01-02 15:04:05.0000 MST"
	TimestampFormatTime      = "15:04:05"
	TimestampFormatDate      = "2006-01-02"
	DefaultPort              = 7533
)

// BuildStamp is the time at which the application was built.
var BuildStamp = time.Unix(1772216778, 0)

// LogLevels are the valid log levels, in ascending order of severity.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// PackageLevels defines minimum log levels per log source.
var PackageLevels = func() (m map[logdomain.ID]logutils.LogLevel) {
	m = make(map[logdomain.ID]logutils.LogLevel, len(logdomain.AllDomains()))

	var minLevel logutils.LogLevel = "INFO"
	if Debug {
		minLevel = "TRACE"
	}

	for _, id := range logdomain.AllDomains() {
		m[id] = minLevel
	}

	return
}()

// BaseDir is the directory where the application stores its files,
// DbPath is the path of the database, LogPath the path of the log file.
var (
	BaseDir = filepath.Join(
		os.Getenv("HOME"),
		fmt.Sprintf(".%s.d", strings.ToLower(AppName)))
	LogPath = filepath.Join(BaseDir, strings.ToLower(AppName)+".log")
	DbPath  = filepath.Join(BaseDir, strings.ToLower(AppName)+".db")
	CfgPath = filepath.Join(BaseDir, strings.ToLower(AppName)+".yaml")
)

// SetBaseDir sets the directory the application uses to store its files in.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(BaseDir, strings.ToLower(AppName)+".log")
	DbPath = filepath.Join(BaseDir, strings.ToLower(AppName)+".db")
	CfgPath = filepath.Join(BaseDir, strings.ToLower(AppName)+".yaml")

	if err := InitApp(); err != nil {
		fmt.Printf("Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// GetLogger tries to create a Logger for the given log source.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err     error
		name    string
		logfile *os.File
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("Error initializing application environment: %s",
			err.Error())
	}

	name = fmt.Sprintf("%s.%s",
		AppName,
		dom)

	var flags = os.O_APPEND | os.O_CREATE | os.O_WRONLY

	if logfile, err = os.OpenFile(LogPath, flags, 0644); err != nil {
		return nil, fmt.Errorf("Error opening log file %s: %s",
			LogPath,
			err.Error())
	}

	var writer = io.MultiWriter(os.Stdout, logfile)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: PackageLevels[dom],
		Writer:   writer,
	}

	var logger = log.New(filter, name+" ", log.Ldate|log.Ltime|log.Lshortfile)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// InitApp performs some basic preparations for the application to run.
// It is safe to call multiple times.
func InitApp() error {
	var (
		err error
		ex  bool
	)

	if ex, err = krylib.Fexists(BaseDir); err != nil {
		return fmt.Errorf("Error checking BaseDir %s: %s",
			BaseDir,
			err.Error())
	} else if !ex {
		if err = os.MkdirAll(BaseDir, 0755); err != nil {
			return fmt.Errorf("Error creating BaseDir %s: %s",
				BaseDir,
				err.Error())
		}
	}

	return nil
} // func InitApp() error

// GetUUID returns a randomized UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string

// TimeEqual returns true if the two timestamps are less than one second apart.
func TimeEqual(t1, t2 time.Time) bool {
	var delta = t1.Sub(t2)

	if delta < 0 {
		delta = -delta
	}

	return delta < time.Second
} // func TimeEqual(t1, t2 time.Time) bool
