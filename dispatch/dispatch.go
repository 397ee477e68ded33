// /home/krylon/go/src/github.com/blicero/asklepios/dispatch/dispatch.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-06 18:56:33 krylon>

// Package dispatch implements the missed-dose detection and tiered
// notification engine. One Run scans the outstanding doses, buckets
// them into tiers, suppresses what was already sent today, fans the
// rest out to the delivery channels, and records the outcome.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/blicero/asklepios/channel"
	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/config"
	"github.com/blicero/asklepios/database"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/tier"
)

// Summary is the diagnostic result of one engine run. It is meant for
// the operator; recipients only ever see successful deliveries.
type Summary struct {
	Start      time.Time
	End        time.Time
	Checked    int
	Notified   int
	PerChannel map[string]int
	Errors     []string
}

// Engine is the tiered dispatch orchestrator. It holds no state
// across runs; everything it knows about a run it either loaded at
// the start of the run or wrote out durably at the end.
type Engine struct {
	log      *log.Logger
	pool     *database.Pool
	channels map[string]channel.Channel
	tiers    tier.Table
	maxConc  int
	timeout  time.Duration
}

// NewEngine creates an Engine. The tier table is validated here, a
// misconfigured table (non-monotonic thresholds) is refused outright
// rather than silently trusted.
func NewEngine(cfg *config.Config, pool *database.Pool, channels []channel.Channel) (*Engine, error) {
	var (
		err error
		e   = &Engine{
			pool:     pool,
			channels: make(map[string]channel.Channel, len(channels)),
			tiers:    cfg.Tiers,
			maxConc:  cfg.MaxConcurrent,
			timeout:  cfg.SendTimeout,
		}
	)

	if err = e.tiers.Validate(); err != nil {
		return nil, err
	} else if e.log, err = common.GetLogger(logdomain.Dispatch); err != nil {
		return nil, err
	}

	for _, ch := range channels {
		e.channels[ch.Name()] = ch
	}

	if e.maxConc < 1 {
		e.maxConc = 1
	}

	return e, nil
} // func NewEngine(...) (*Engine, error)

// candidate is one dose that matched at least one tier.
type candidate struct {
	med     objects.Medication
	sched   time.Time
	minutes float64
	matched []tier.Tier
}

// attempt is one (dose, recipient, tier, channel) delivery attempt.
type attempt struct {
	med   *objects.Medication
	rcpt  *objects.Companion
	t     tier.Tier
	ch    channel.Channel
	sched time.Time
	msg   objects.Message
}

type attemptResult struct {
	res channel.Result
	err error
}

// Run performs one full detect-classify-dedup-dispatch-record cycle.
// An error from the store while gathering data (candidates,
// recipients, dedup index) aborts the run with zero sends attempted;
// a failing channel send only ever costs that one attempt.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	var (
		err error
		now = time.Now()
		sum = &Summary{
			Start:      now,
			PerChannel: make(map[string]int),
		}
	)

	defer func() { sum.End = time.Now() }()

	var db = e.pool.Get()
	defer e.pool.Put(db)

	var meds []objects.Medication

	if meds, err = db.MedicationGetPending(); err != nil {
		e.log.Printf("[ERROR] Cannot load candidate doses: %s\n",
			err.Error())
		sum.Errors = append(sum.Errors, err.Error())
		return sum, err
	}

	sum.Checked = len(meds)

	var candidates []candidate

	for i := range meds {
		var (
			tod tier.TimeOfDay
			ok  bool
		)

		if tod, ok = tier.ParseScheduleTime(meds[i].Schedule); !ok {
			// An unparseable schedule is not an error, the dose just
			// cannot be classified.
			e.log.Printf("[TRACE] Medication %d (%q) has unusable schedule %q\n",
				meds[i].ID,
				meds[i].Name,
				meds[i].Schedule)
			continue
		}

		var (
			minutes = tod.MinutesSince(now)
			matched = e.tiers.Classify(minutes)
		)

		if len(matched) == 0 {
			continue
		}

		candidates = append(candidates, candidate{
			med: meds[i],
			sched: time.Date(now.Year(), now.Month(), now.Day(),
				tod.Hour, tod.Minute, 0, 0, now.Location()),
			minutes: minutes,
			matched: matched,
		})
	}

	if len(candidates) == 0 {
		e.log.Printf("[DEBUG] Checked %d doses, nothing is due\n",
			sum.Checked)
		return sum, nil
	}

	var (
		medIDs     = make([]int64, 0, len(candidates))
		patientIDs []int64
		seen       = make(map[int64]bool)
	)

	for i := range candidates {
		medIDs = append(medIDs, candidates[i].med.ID)
		if !seen[candidates[i].med.PatientID] {
			seen[candidates[i].med.PatientID] = true
			patientIDs = append(patientIDs, candidates[i].med.PatientID)
		}
	}

	var recipients map[int64][]objects.Companion

	if recipients, err = db.CompanionGetForPatients(patientIDs); err != nil {
		e.log.Printf("[ERROR] Cannot resolve recipients: %s\n",
			err.Error())
		sum.Errors = append(sum.Errors, err.Error())
		return sum, err
	}

	var sent map[string]bool

	if sent, err = db.NotificationGetSentToday(medIDs, now); err != nil {
		e.log.Printf("[ERROR] Cannot load dedup index: %s\n",
			err.Error())
		sum.Errors = append(sum.Errors, err.Error())
		return sum, err
	}

	var attempts = e.plan(candidates, recipients, sent)

	if len(attempts) == 0 {
		e.log.Printf("[DEBUG] Checked %d doses, %d due, all recipients already notified\n",
			sum.Checked,
			len(candidates))
		return sum, nil
	}

	var (
		gone    []string
		records []objects.NotificationRecord
	)

	for start := 0; start < len(attempts); start += e.maxConc {
		var end = start + e.maxConc
		if end > len(attempts) {
			end = len(attempts)
		}

		var (
			batch   = attempts[start:end]
			results = make([]attemptResult, len(batch))
			wg      sync.WaitGroup
		)

		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				actx, cancel := context.WithTimeout(ctx, e.timeout)
				defer cancel()

				var r attemptResult
				r.res, r.err = batch[i].ch.Send(actx, batch[i].rcpt, &batch[i].msg)
				results[i] = r
			}(i)
		}

		wg.Wait()

		for i := range batch {
			var (
				a = &batch[i]
				r = &results[i]
			)

			gone = append(gone, r.res.Gone...)

			if r.err != nil {
				// No record is written, so this triple re-arms on
				// the next run.
				sum.Errors = append(sum.Errors,
					fmt.Sprintf("%s/%s to %s: %s",
						a.t.Name,
						a.ch.Name(),
						a.rcpt.Name,
						r.err.Error()))
				continue
			}

			sum.Notified++
			sum.PerChannel[a.ch.Name()]++

			records = append(records, objects.NotificationRecord{
				MedicationID: a.med.ID,
				CompanionID:  a.rcpt.ID,
				Tier:         a.t.Name,
				Channel:      a.ch.Name(),
				Scheduled:    a.sched,
				Summary:      a.msg.Title,
				Status:       "sent",
				Timestamp:    time.Now(),
			})
		}
	}

	for _, endpoint := range gone {
		if err = db.SubscriptionDelete(endpoint); err != nil {
			sum.Errors = append(sum.Errors,
				fmt.Sprintf("deregister %s: %s",
					endpoint,
					err.Error()))
		}
	}

	if err = db.NotificationAddBatch(records); err != nil {
		// The sends went out, we just failed to write that down; the
		// next run may produce duplicates, which beats not notifying
		// at all.
		sum.Errors = append(sum.Errors,
			fmt.Sprintf("record batch: %s", err.Error()))
	}

	e.log.Printf("[INFO] Run complete: checked %d, notified %d, %d errors\n",
		sum.Checked,
		sum.Notified,
		len(sum.Errors))

	return sum, nil
} // func (e *Engine) Run(ctx context.Context) (*Summary, error)

// plan lays out the delivery attempts for one run, tier by tier in
// ascending threshold order. Each (dose, recipient, tier) triple is
// visited exactly once, so within a run no duplicate can arise even
// though the dedup index is a snapshot from the start of the run.
func (e *Engine) plan(candidates []candidate, recipients map[int64][]objects.Companion, sent map[string]bool) []attempt {
	var attempts []attempt

	for _, t := range e.tiers.Tiers {
		for i := range candidates {
			var c = &candidates[i]

			if !tierMatched(c.matched, t.Name) {
				continue
			}

			var companions = recipients[c.med.PatientID]

			for j := range companions {
				var (
					rcpt = &companions[j]
					key  = fmt.Sprintf("%d|%d|%s", c.med.ID, rcpt.ID, t.Name)
				)

				if sent[key] {
					continue
				}

				for _, name := range t.Channels {
					var (
						ch channel.Channel
						ok bool
					)

					if ch, ok = e.channels[name]; !ok {
						// Channel is not configured.
						continue
					} else if !ch.CanReach(rcpt) {
						continue
					}

					attempts = append(attempts, attempt{
						med:   &c.med,
						rcpt:  rcpt,
						t:     t,
						ch:    ch,
						sched: c.sched,
						msg:   composeMessage(&c.med, c.sched),
					})
				}
			}
		}
	}

	return attempts
} // func (e *Engine) plan(...) []attempt

func tierMatched(matched []tier.Tier, name string) bool {
	for _, t := range matched {
		if t.Name == name {
			return true
		}
	}

	return false
} // func tierMatched(matched []tier.Tier, name string) bool

func composeMessage(med *objects.Medication, sched time.Time) objects.Message {
	var msg = objects.Message{
		Title: fmt.Sprintf("Missed dose: %s", med.Name),
	}

	if med.Dosage != "" {
		msg.Body = fmt.Sprintf("%s was scheduled to take %s (%s) at %s.",
			med.PatientName,
			med.Name,
			med.Dosage,
			sched.Format(common.TimestampFormatTime))
	} else {
		msg.Body = fmt.Sprintf("%s was scheduled to take %s at %s.",
			med.PatientName,
			med.Name,
			sched.Format(common.TimestampFormatTime))
	}

	return msg
} // func composeMessage(med *objects.Medication, sched time.Time) objects.Message
