// /home/krylon/go/src/github.com/blicero/asklepios/backend/01_backend_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 22:18:43 krylon>

package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/asklepios/clients/clientlib"
	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/config"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/tier"
)

const testAddr = "localhost:9596"

var (
	d *Daemon
	c *clientlib.Client
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir = filepath.Join(
			os.TempDir(),
			fmt.Sprintf("asklepios_backend_test_%s",
				time.Now().Format("20060102_150405")))
	)

	if err = common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	} else if result = m.Run(); result == 0 {
		os.RemoveAll(baseDir)
	}

	os.Exit(result)
} // func TestMain(m *testing.M)

func TestSummonDaemon(t *testing.T) {
	var (
		err error
		cfg = &config.Config{
			ListenAddr:    testAddr,
			EngineEnabled: true,
			Interval:      time.Hour,
			SendTimeout:   time.Second * 5,
			MaxConcurrent: 2,
			Tiers:         tier.DefaultTable(),
		}
	)

	if d, err = Summon(cfg); err != nil {
		d = nil
		t.Fatalf("Cannot summon Daemon: %s",
			err.Error())
	}

	// Give the web server a moment to start accepting connections.
	time.Sleep(time.Millisecond * 100)

	if c, err = clientlib.NewClient("http://" + testAddr); err != nil {
		c = nil
		t.Fatalf("Cannot create client: %s",
			err.Error())
	}
} // func TestSummonDaemon(t *testing.T)

func TestSubmitPatient(t *testing.T) {
	if d == nil || c == nil {
		t.SkipNow()
	}

	var err error

	if err = c.SubmitPatient("Test Patient"); err != nil {
		t.Fatalf("Cannot submit Patient: %s",
			err.Error())
	}

	// A Patient without a name must be refused.
	if err = c.SubmitPatient(""); err == nil {
		t.Error("Submitting a nameless Patient should have failed")
	}
} // func TestSubmitPatient(t *testing.T)

func TestSubmitMedication(t *testing.T) {
	if d == nil || c == nil {
		t.SkipNow()
	}

	var (
		err error
		m   = &objects.Medication{
			PatientID: 1,
			Name:      "Ibuprofen",
			Dosage:    "400 mg",
			Schedule:  "8:00 AM",
		}
	)

	if err = c.SubmitMedication(m); err != nil {
		t.Fatalf("Cannot submit Medication: %s",
			err.Error())
	}

	// An unparseable schedule must be refused.
	m.Schedule = "sometime after lunch"

	if err = c.SubmitMedication(m); err == nil {
		t.Error("Submitting a Medication with a nonsense schedule should have failed")
	}
} // func TestSubmitMedication(t *testing.T)

func TestGetPending(t *testing.T) {
	if d == nil || c == nil {
		t.SkipNow()
	}

	var (
		err  error
		meds []objects.Medication
	)

	if meds, err = c.GetPending(); err != nil {
		t.Fatalf("Cannot fetch pending Medications: %s",
			err.Error())
	} else if len(meds) != 1 {
		t.Fatalf("Unexpected number of pending Medications: %d (expected 1)",
			len(meds))
	} else if meds[0].Name != "Ibuprofen" {
		t.Errorf("Unexpected Medication name: %q",
			meds[0].Name)
	}
} // func TestGetPending(t *testing.T)

func TestMarkTaken(t *testing.T) {
	if d == nil || c == nil {
		t.SkipNow()
	}

	var (
		err  error
		meds []objects.Medication
	)

	if err = c.MarkTaken(1, true); err != nil {
		t.Fatalf("Cannot mark Medication as taken: %s",
			err.Error())
	} else if meds, err = c.GetPending(); err != nil {
		t.Fatalf("Cannot fetch pending Medications: %s",
			err.Error())
	} else if len(meds) != 0 {
		t.Errorf("No Medications should be pending, got %d",
			len(meds))
	}
} // func TestMarkTaken(t *testing.T)
