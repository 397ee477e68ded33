// /home/krylon/go/src/github.com/blicero/asklepios/dispatch/01_dispatch_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-06 21:34:58 krylon>

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blicero/asklepios/channel"
	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/config"
	"github.com/blicero/asklepios/database"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/objects/linkstatus"
	"github.com/blicero/asklepios/tier"
)

// fakeChannel records the recipients it was asked to reach. It can be
// told to fail, to report endpoints as gone, or to hang until its
// context is cancelled.
type fakeChannel struct {
	name  string
	fail  bool
	stall bool
	gone  []string
	lock  sync.Mutex
	sent  []string
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) CanReach(_ *objects.Companion) bool { return true }

func (f *fakeChannel) Send(ctx context.Context, rcpt *objects.Companion, _ *objects.Message) (channel.Result, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.stall {
		<-ctx.Done()
		return channel.Result{}, ctx.Err()
	}

	if f.fail {
		return channel.Result{}, errors.New("channel is on fire")
	}

	f.sent = append(f.sent, rcpt.Name)
	return channel.Result{Gone: f.gone}, nil
} // func (f *fakeChannel) Send(...) (channel.Result, error)

func (f *fakeChannel) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.sent)
} // func (f *fakeChannel) count() int

var (
	pool      *database.Pool
	eng       *Engine
	fakePush  = &fakeChannel{name: channel.Push}
	fakeChat  = &fakeChannel{name: channel.Chat}
	fakeEmail = &fakeChannel{name: channel.Email}
	patient   = &objects.Patient{Name: "Test Patient"}
	watcher   = &objects.Companion{Name: "Test Companion"}
)

func TestMain(m *testing.M) {
	var (
		err     error
		result  int
		baseDir = filepath.Join(
			os.TempDir(),
			fmt.Sprintf("asklepios_dispatch_test_%s",
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

func testConfig() *config.Config {
	return &config.Config{
		SendTimeout:   time.Second * 5,
		MaxConcurrent: 4,
		Tiers: tier.Table{
			Tiers: []tier.Tier{
				{Name: "push1", Threshold: 0.5, Channels: []string{channel.Push}},
				{Name: "push2", Threshold: 1, Channels: []string{channel.Push}},
				{Name: "chat", Threshold: 1.5, Channels: []string{channel.Chat}},
				{Name: "email", Threshold: 60, Channels: []string{channel.Email}},
			},
			Ceiling: 720,
		},
	}
} // func testConfig() *config.Config

func TestEngineCreate(t *testing.T) {
	var err error

	if pool, err = database.NewPool(2); err != nil {
		pool = nil
		t.Fatalf("Cannot create database pool: %s",
			err.Error())
	}

	var channels = []channel.Channel{fakePush, fakeChat, fakeEmail}

	if eng, err = NewEngine(testConfig(), pool, channels); err != nil {
		eng = nil
		t.Fatalf("Cannot create Engine: %s",
			err.Error())
	}
} // func TestEngineCreate(t *testing.T)

func TestEngineRunEmpty(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		sum *Summary
	)

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run on empty database failed: %s",
			err.Error())
	} else if sum.Checked != 0 || sum.Notified != 0 {
		t.Errorf("Empty run should check and notify nothing, got checked=%d notified=%d",
			sum.Checked,
			sum.Notified)
	}
} // func TestEngineRunEmpty(t *testing.T)

// addMedication creates a Medication for the test Patient, scheduled
// offset before now, so the dose is overdue by a known amount.
func addMedication(t *testing.T, name string, offset time.Duration) *objects.Medication {
	var now = time.Now()

	// Shortly after midnight the shifted schedule would land on the
	// previous day and the dose would not look overdue at all.
	if now.Add(-offset - time.Minute).Day() != now.Day() {
		t.Skipf("Schedule %s in the past would cross midnight, skipping",
			offset)
	}

	var (
		err error
		db  = pool.Get()
		m   = &objects.Medication{
			PatientID: patient.ID,
			Name:      name,
			Dosage:    "5 mg",
			Schedule:  now.Add(-offset).Format("15:04"),
			Active:    true,
			UUID:      common.GetUUID(),
		}
	)
	defer pool.Put(db)

	if err = db.MedicationAdd(m); err != nil {
		t.Fatalf("Cannot add Medication %q: %s",
			name,
			err.Error())
	}

	return m
} // func addMedication(t *testing.T, name string, offset time.Duration) *objects.Medication

func TestEngineDispatch(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		db  = pool.Get()
	)

	if err = db.PatientAdd(patient); err != nil {
		t.Fatalf("Cannot add Patient: %s", err.Error())
	} else if err = db.CompanionAdd(watcher); err != nil {
		t.Fatalf("Cannot add Companion: %s", err.Error())
	}

	var link = &objects.CompanionLink{
		PatientID:   patient.ID,
		CompanionID: watcher.ID,
	}

	if err = db.LinkAdd(link); err != nil {
		t.Fatalf("Cannot add CompanionLink: %s", err.Error())
	} else if err = db.LinkSetStatus(link, linkstatus.Accepted); err != nil {
		t.Fatalf("Cannot accept CompanionLink: %s", err.Error())
	}

	pool.Put(db)

	// Two minutes overdue puts the dose past push1, push2 and chat,
	// but well short of the email tier.
	addMedication(t, "Metoprolol", time.Minute*2)

	var sum *Summary

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	} else if sum.Checked != 1 {
		t.Errorf("Engine should have checked 1 dose, checked %d",
			sum.Checked)
	} else if sum.Notified != 3 {
		t.Errorf("Engine should have sent 3 notifications, sent %d: %v",
			sum.Notified,
			sum.Errors)
	}

	if fakePush.count() != 2 {
		t.Errorf("Push channel should have sent 2 notifications, sent %d",
			fakePush.count())
	}
	if fakeChat.count() != 1 {
		t.Errorf("Chat channel should have sent 1 notification, sent %d",
			fakeChat.count())
	}
	if fakeEmail.count() != 0 {
		t.Errorf("Email channel should have sent nothing, sent %d",
			fakeEmail.count())
	}

	if sum.PerChannel[channel.Push] != 2 || sum.PerChannel[channel.Chat] != 1 {
		t.Errorf("Unexpected per-channel counts: %v",
			sum.PerChannel)
	}
} // func TestEngineDispatch(t *testing.T)

// A second run right away must not repeat anything.
func TestEngineIdempotent(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		sum *Summary
	)

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	} else if sum.Notified != 0 {
		t.Errorf("Second run should not notify anyone, notified %d",
			sum.Notified)
	}

	if fakePush.count() != 2 || fakeChat.count() != 1 {
		t.Errorf("Channels should not have been used again: push=%d chat=%d",
			fakePush.count(),
			fakeChat.count())
	}
} // func TestEngineIdempotent(t *testing.T)

// A failing channel must not keep the other channels from delivering,
// and the failed tier must be retried on the next run.
func TestEngineChannelIsolation(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	addMedication(t, "Lisinopril", time.Minute*2)

	fakeChat.fail = true

	var (
		err error
		sum *Summary
	)

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	} else if sum.Notified != 2 {
		t.Errorf("Run with failing chat should notify 2, notified %d",
			sum.Notified)
	} else if len(sum.Errors) != 1 {
		t.Errorf("Run with failing chat should report 1 error, reported %d: %v",
			len(sum.Errors),
			sum.Errors)
	}

	fakeChat.fail = false

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	} else if sum.Notified != 1 {
		t.Errorf("Recovery run should notify exactly 1, notified %d",
			sum.Notified)
	} else if sum.PerChannel[channel.Chat] != 1 {
		t.Errorf("Recovery run should go out via chat, got %v",
			sum.PerChannel)
	}
} // func TestEngineChannelIsolation(t *testing.T)

// A push endpoint the provider reports as gone must be deregistered.
func TestEngineGoneEndpoint(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	const endpoint = "https://push.example.com/send/dead0001"

	var (
		err error
		db  = pool.Get()
		sub = &objects.PushSubscription{
			CompanionID: watcher.ID,
			Endpoint:    endpoint,
			P256dh:      "BOrvnDuXBBmtbWeL6VoQfJTe",
			Auth:        "dGVzdGF1dGg=",
		}
	)

	if err = db.SubscriptionAdd(sub); err != nil {
		pool.Put(db)
		t.Fatalf("Cannot add PushSubscription: %s", err.Error())
	}

	pool.Put(db)

	addMedication(t, "Atorvastatin", time.Minute*2)

	fakePush.gone = []string{endpoint}
	defer func() { fakePush.gone = nil }()

	if _, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	}

	db = pool.Get()
	defer pool.Put(db)

	var subs []objects.PushSubscription

	if subs, err = db.SubscriptionGetByCompanion(watcher.ID); err != nil {
		t.Fatalf("Cannot fetch PushSubscriptions: %s", err.Error())
	} else if len(subs) != 0 {
		t.Errorf("Gone endpoint should have been deregistered, %d subscriptions left",
			len(subs))
	}
} // func TestEngineGoneEndpoint(t *testing.T)

func TestEngineTakenDoseIgnored(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err error
		db  = pool.Get()
		m   = addMedication(t, "Warfarin", time.Minute*2)
	)

	if err = db.MedicationSetTaken(m, true); err != nil {
		pool.Put(db)
		t.Fatalf("Cannot mark Medication as taken: %s", err.Error())
	}

	pool.Put(db)

	var sum *Summary

	if sum, err = eng.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	} else if sum.Notified != 0 {
		t.Errorf("Taken dose should not trigger notifications, got %d",
			sum.Notified)
	}
} // func TestEngineTakenDoseIgnored(t *testing.T)

// A channel that never answers must not hold up the run past the send
// timeout; the attempt fails and the other channels still deliver.
func TestEngineSendTimeout(t *testing.T) {
	if eng == nil {
		t.SkipNow()
	}

	var (
		err       error
		slow      *Engine
		cfg       = testConfig()
		stallChat = &fakeChannel{name: channel.Chat, stall: true}
		push      = &fakeChannel{name: channel.Push}
	)

	cfg.SendTimeout = time.Millisecond * 100

	if slow, err = NewEngine(cfg, pool, []channel.Channel{stallChat, push}); err != nil {
		t.Fatalf("Cannot create Engine: %s",
			err.Error())
	}

	addMedication(t, "Amlodipine", time.Minute*2)

	var (
		sum   *Summary
		begin = time.Now()
	)

	if sum, err = slow.Run(context.Background()); err != nil {
		t.Fatalf("Engine run failed: %s", err.Error())
	}

	if elapsed := time.Since(begin); elapsed > time.Second*3 {
		t.Errorf("Run with a hanging channel took %s, the send timeout did not take effect",
			elapsed)
	}

	if sum.Notified != 2 {
		t.Errorf("Run with a hanging chat channel should notify 2 via push, notified %d",
			sum.Notified)
	} else if len(sum.Errors) != 1 {
		t.Errorf("Run with a hanging chat channel should report 1 error, reported %d: %v",
			len(sum.Errors),
			sum.Errors)
	}

	if push.count() != 2 {
		t.Errorf("Push channel should have sent 2 notifications, sent %d",
			push.count())
	}
} // func TestEngineSendTimeout(t *testing.T)

func TestEngineShutdown(t *testing.T) {
	if pool != nil {
		if err := pool.Close(); err != nil {
			t.Errorf("Cannot close database pool: %s",
				err.Error())
		}
	}
} // func TestEngineShutdown(t *testing.T)
