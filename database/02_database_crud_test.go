// /home/krylon/go/src/github.com/blicero/asklepios/database/02_database_crud_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-06 19:48:11 krylon>

package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/objects/linkstatus"
)

const (
	patientCnt   = 4
	medPerFolk   = 3
	companionCnt = 4
)

var (
	patients   []*objects.Patient
	meds       []*objects.Medication
	companions []*objects.Companion
	links      []*objects.CompanionLink
)

func init() {
	patients = make([]*objects.Patient, patientCnt)
	meds = make([]*objects.Medication, 0, patientCnt*medPerFolk)
	companions = make([]*objects.Companion, companionCnt)

	for i := range patients {
		patients[i] = &objects.Patient{
			Name: fmt.Sprintf("Test Patient %02d", i+1),
			UUID: common.GetUUID(),
		}
	}

	for i := range companions {
		companions[i] = &objects.Companion{
			Name:  fmt.Sprintf("Test Companion %02d", i+1),
			Email: fmt.Sprintf("companion%02d@example.com", i+1),
			UUID:  common.GetUUID(),
		}
	}
}

func TestPatientAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for _, p := range patients {
		var err error

		if err = db.PatientAdd(p); err != nil {
			t.Fatalf("Cannot add Patient %s: %s",
				p.Name,
				err.Error())
		} else if p.ID == 0 {
			t.Errorf("ID of Patient %q is 0", p.Name)
		}
	}
} // func TestPatientAdd(t *testing.T)

func TestMedicationAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for _, p := range patients {
		for i := 0; i < medPerFolk; i++ {
			var (
				err error
				m   = &objects.Medication{
					PatientID: p.ID,
					Name:      fmt.Sprintf("Medication %02d/%02d", p.ID, i+1),
					Dosage:    "10 mg",
					Schedule:  fmt.Sprintf("%02d:00", 8+i*4),
					Active:    true,
					UUID:      common.GetUUID(),
				}
			)

			if err = db.MedicationAdd(m); err != nil {
				t.Fatalf("Cannot add Medication %s: %s",
					m.Name,
					err.Error())
			} else if m.ID == 0 {
				t.Errorf("ID of Medication %q is 0", m.Name)
			}

			meds = append(meds, m)
		}
	}
} // func TestMedicationAdd(t *testing.T)

func TestMedicationGetPending(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err     error
		pending []objects.Medication
	)

	if pending, err = db.MedicationGetPending(); err != nil {
		t.Fatalf("Cannot fetch pending Medications: %s",
			err.Error())
	} else if len(pending) != len(meds) {
		t.Fatalf("Unexpected number of pending Medications: %d (expected %d)",
			len(pending),
			len(meds))
	}

	for _, m := range pending {
		if m.PatientName == "" {
			t.Errorf("Medication %q is missing the Patient's name",
				m.Name)
		}
	}
} // func TestMedicationGetPending(t *testing.T)

func TestMedicationSetTaken(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var err error

	if err = db.MedicationSetTaken(meds[0], true); err != nil {
		t.Fatalf("Cannot mark Medication %q as taken: %s",
			meds[0].Name,
			err.Error())
	} else if !meds[0].Taken {
		t.Errorf("Medication %q should be marked as taken, but it is not",
			meds[0].Name)
	}

	var pending []objects.Medication

	if pending, err = db.MedicationGetPending(); err != nil {
		t.Fatalf("Cannot fetch pending Medications: %s",
			err.Error())
	} else if len(pending) != len(meds)-1 {
		t.Errorf("Unexpected number of pending Medications: %d (expected %d)",
			len(pending),
			len(meds)-1)
	}
} // func TestMedicationSetTaken(t *testing.T)

func TestCompanionAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for _, c := range companions {
		var err error

		if err = db.CompanionAdd(c); err != nil {
			t.Fatalf("Cannot add Companion %s: %s",
				c.Name,
				err.Error())
		} else if c.ID == 0 {
			t.Errorf("ID of Companion %q is 0", c.Name)
		}
	}
} // func TestCompanionAdd(t *testing.T)

// Companion n watches Patient n, and additionally Companion 1 watches
// every Patient. The link of Companion 2 remains Pending, so Patient 2
// effectively only has Companion 1 watching.
func TestLinkAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for i, p := range patients {
		var (
			err error
			l   = &objects.CompanionLink{
				PatientID:   p.ID,
				CompanionID: companions[i].ID,
			}
		)

		if err = db.LinkAdd(l); err != nil {
			t.Fatalf("Cannot link Companion %d to Patient %d: %s",
				companions[i].ID,
				p.ID,
				err.Error())
		} else if l.ID == 0 {
			t.Errorf("ID of fresh CompanionLink is 0")
		} else if l.Status != linkstatus.Pending {
			t.Errorf("Fresh CompanionLink should be Pending, not %s",
				l.Status)
		}

		links = append(links, l)

		if i == 0 {
			continue
		}

		l = &objects.CompanionLink{
			PatientID:   p.ID,
			CompanionID: companions[0].ID,
		}

		if err = db.LinkAdd(l); err != nil {
			t.Fatalf("Cannot link Companion %d to Patient %d: %s",
				companions[0].ID,
				p.ID,
				err.Error())
		}

		links = append(links, l)
	}

	for _, l := range links {
		if l.CompanionID == companions[1].ID {
			continue
		}

		var err error

		if err = db.LinkSetStatus(l, linkstatus.Accepted); err != nil {
			t.Fatalf("Cannot accept CompanionLink %d: %s",
				l.ID,
				err.Error())
		} else if l.Status != linkstatus.Accepted {
			t.Errorf("CompanionLink %d should be Accepted, not %s",
				l.ID,
				l.Status)
		}
	}
} // func TestLinkAdd(t *testing.T)

func TestSubscriptionAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		sub = &objects.PushSubscription{
			CompanionID: companions[0].ID,
			Endpoint:    "https://push.example.com/send/abc123",
			P256dh:      "BOrvnDuXBBmtbWeL6VoQfJTe",
			Auth:        "dGVzdGF1dGg=",
		}
	)

	if err = db.SubscriptionAdd(sub); err != nil {
		t.Fatalf("Cannot add PushSubscription: %s",
			err.Error())
	} else if sub.ID == 0 {
		t.Errorf("ID of fresh PushSubscription is 0")
	}

	var subs []objects.PushSubscription

	if subs, err = db.SubscriptionGetByCompanion(companions[0].ID); err != nil {
		t.Fatalf("Cannot fetch PushSubscriptions for Companion %d: %s",
			companions[0].ID,
			err.Error())
	} else if len(subs) != 1 {
		t.Errorf("Unexpected number of PushSubscriptions: %d (expected 1)",
			len(subs))
	}
} // func TestSubscriptionAdd(t *testing.T)

func TestCompanionGetForPatients(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err  error
		ids  = make([]int64, 0, len(patients))
		rcpt map[int64][]objects.Companion
	)

	for _, p := range patients {
		ids = append(ids, p.ID)
	}

	if rcpt, err = db.CompanionGetForPatients(ids); err != nil {
		t.Fatalf("Cannot resolve Companions for %d Patients: %s",
			len(ids),
			err.Error())
	}

	// Patient 1 has only Companion 1 (their own link); Patient 2's own
	// Companion is still Pending, so only Companion 1 remains; the
	// others have their own Companion plus Companion 1.
	for i, p := range patients {
		var want int
		switch i {
		case 0, 1:
			want = 1
		default:
			want = 2
		}

		if len(rcpt[p.ID]) != want {
			t.Errorf("Patient %d should have %d recipients, has %d",
				p.ID,
				want,
				len(rcpt[p.ID]))
		}
	}

	// Companion 1's push subscription must come along.
	for _, c := range rcpt[patients[0].ID] {
		if c.ID == companions[0].ID && len(c.Subscriptions) != 1 {
			t.Errorf("Companion %d should have 1 PushSubscription, has %d",
				c.ID,
				len(c.Subscriptions))
		}
	}
} // func TestCompanionGetForPatients(t *testing.T)

func TestNotificationAddBatch(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err     error
		now     = time.Now()
		records = []objects.NotificationRecord{
			{
				MedicationID: meds[1].ID,
				CompanionID:  companions[0].ID,
				Tier:         "push1",
				Channel:      "push",
				Scheduled:    now.Add(-time.Minute),
				Summary:      "Missed dose",
				Status:       "sent",
				Timestamp:    now,
			},
			{
				MedicationID: meds[1].ID,
				CompanionID:  companions[0].ID,
				Tier:         "chat",
				Channel:      "chat",
				Scheduled:    now.Add(-time.Minute),
				Summary:      "Missed dose",
				Status:       "sent",
				Timestamp:    now,
			},
		}
	)

	if err = db.NotificationAddBatch(records); err != nil {
		t.Fatalf("Cannot add Notification batch: %s",
			err.Error())
	}

	// An empty batch must be a no-op, not an error.
	if err = db.NotificationAddBatch(nil); err != nil {
		t.Errorf("Empty Notification batch should not fail: %s",
			err.Error())
	}
} // func TestNotificationAddBatch(t *testing.T)

func TestNotificationGetSentToday(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err  error
		now  = time.Now()
		ids  = []int64{meds[1].ID, meds[2].ID}
		sent map[string]bool
	)

	if sent, err = db.NotificationGetSentToday(ids, now); err != nil {
		t.Fatalf("Cannot load dedup index: %s",
			err.Error())
	} else if len(sent) != 2 {
		t.Fatalf("Unexpected size of dedup index: %d (expected 2)",
			len(sent))
	}

	var key = fmt.Sprintf("%d|%d|push1", meds[1].ID, companions[0].ID)

	if !sent[key] {
		t.Errorf("Dedup index is missing key %q", key)
	}

	key = fmt.Sprintf("%d|%d|email", meds[1].ID, companions[0].ID)

	if sent[key] {
		t.Errorf("Dedup index contains unexpected key %q", key)
	}

	// With no Medications to ask about, no query should be run at all.
	if sent, err = db.NotificationGetSentToday(nil, now); err != nil {
		t.Fatalf("Dedup lookup for zero Medications should not fail: %s",
			err.Error())
	} else if len(sent) != 0 {
		t.Errorf("Dedup index for zero Medications should be empty, has %d entries",
			len(sent))
	}
} // func TestNotificationGetSentToday(t *testing.T)

func TestNotificationGetRecent(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err     error
		records []objects.NotificationRecord
	)

	if records, err = db.NotificationGetRecent(10); err != nil {
		t.Fatalf("Cannot fetch recent Notifications: %s",
			err.Error())
	} else if len(records) != 2 {
		t.Errorf("Unexpected number of recent Notifications: %d (expected 2)",
			len(records))
	}
} // func TestNotificationGetRecent(t *testing.T)

func TestSubscriptionDelete(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var err error

	if err = db.SubscriptionDelete("https://push.example.com/send/abc123"); err != nil {
		t.Fatalf("Cannot delete PushSubscription: %s",
			err.Error())
	}

	var subs []objects.PushSubscription

	if subs, err = db.SubscriptionGetByCompanion(companions[0].ID); err != nil {
		t.Fatalf("Cannot fetch PushSubscriptions for Companion %d: %s",
			companions[0].ID,
			err.Error())
	} else if len(subs) != 0 {
		t.Errorf("Companion %d should have no PushSubscriptions left, has %d",
			companions[0].ID,
			len(subs))
	}
} // func TestSubscriptionDelete(t *testing.T)
