// /home/krylon/go/src/github.com/blicero/asklepios/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 19:22:30 krylon>

package database

import "github.com/blicero/asklepios/database/query"

var dbQueries = map[query.ID]string{
	query.PatientAdd: `
INSERT INTO patient (name, uuid, changed)
VALUES              (   ?,    ?,       ?)
`,
	query.PatientGetByID: `
SELECT
    name,
    uuid,
    changed
FROM patient
WHERE id = ?
`,
	query.PatientGetAll: `
SELECT
    id,
    name,
    uuid,
    changed
FROM patient
ORDER BY name
`,
	query.MedicationAdd: `
INSERT INTO medication (patient_id, name, dosage, schedule, uuid, changed)
VALUES                 (         ?,    ?,      ?,        ?,    ?,       ?)
`,
	query.MedicationDelete: "DELETE FROM medication WHERE id = ?",
	query.MedicationGetByID: `
SELECT
    m.patient_id,
    p.name,
    m.name,
    m.dosage,
    m.schedule,
    m.taken,
    m.active,
    m.uuid,
    m.changed
FROM medication m
INNER JOIN patient p ON p.id = m.patient_id
WHERE m.id = ?
`,
	query.MedicationGetAll: `
SELECT
    m.id,
    m.patient_id,
    p.name,
    m.name,
    m.dosage,
    m.schedule,
    m.taken,
    m.active,
    m.uuid,
    m.changed
FROM medication m
INNER JOIN patient p ON p.id = m.patient_id
ORDER BY p.name, m.name
`,
	query.MedicationGetPending: `
SELECT
    m.id,
    m.patient_id,
    p.name,
    m.name,
    m.dosage,
    m.schedule,
    m.uuid,
    m.changed
FROM medication m
INNER JOIN patient p ON p.id = m.patient_id
WHERE m.active AND NOT m.taken AND m.schedule <> ''
ORDER BY m.schedule, m.name
`,
	query.MedicationSetTaken: `
UPDATE medication
SET taken = ?, changed = ?
WHERE id = ?
`,
	query.MedicationSetName: `
UPDATE medication
SET name = ?, changed = ?
WHERE id = ?`,
	query.MedicationSetDosage: `
UPDATE medication
SET dosage = ?, changed = ?
WHERE id = ?`,
	query.MedicationSetSchedule: `
UPDATE medication
SET schedule = ?, changed = ?
WHERE id = ?`,
	query.MedicationSetActive: `
UPDATE medication
SET active = ?, changed = ?
WHERE id = ?`,
	query.CompanionAdd: `
INSERT INTO companion (name, email, chat_id, uuid, changed)
VALUES                (   ?,     ?,       ?,    ?,       ?)
`,
	query.CompanionGetByID: `
SELECT
    name,
    email,
    chat_id,
    uuid,
    changed
FROM companion
WHERE id = ?
`,
	query.CompanionGetAll: `
SELECT
    id,
    name,
    email,
    chat_id,
    uuid,
    changed
FROM companion
ORDER BY name
`,
	query.LinkAdd: `
INSERT INTO companion_link (patient_id, companion_id, status, changed)
VALUES                     (         ?,            ?,      ?,       ?)
`,
	query.LinkGetByID: `
SELECT
    patient_id,
    companion_id,
    status,
    changed
FROM companion_link
WHERE id = ?
`,
	query.LinkSetStatus: `
UPDATE companion_link
SET status = ?, changed = ?
WHERE id = ?
`,
	query.SubscriptionAdd: `
INSERT INTO push_subscription (companion_id, endpoint, p256dh, auth, changed)
VALUES                        (           ?,        ?,      ?,    ?,       ?)
`,
	query.SubscriptionDelete: "DELETE FROM push_subscription WHERE endpoint = ?",
	query.SubscriptionGetByCompanion: `
SELECT
    id,
    endpoint,
    p256dh,
    auth,
    changed
FROM push_subscription
WHERE companion_id = ?
`,
	query.NotificationAdd: `
INSERT INTO notification (medication_id, companion_id, tier, channel, scheduled, summary, status, timestamp)
VALUES                   (            ?,            ?,    ?,       ?,         ?,       ?,      ?,         ?)
`,
	query.NotificationGetRecent: `
SELECT
    id,
    medication_id,
    companion_id,
    tier,
    channel,
    scheduled,
    summary,
    status,
    timestamp
FROM notification
ORDER BY timestamp DESC
LIMIT ?
`,
}
