// /home/krylon/go/src/github.com/blicero/asklepios/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 19:01:14 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE patient (
    id      INTEGER PRIMARY KEY,
    name    TEXT NOT NULL,
    uuid    TEXT UNIQUE NOT NULL,
    changed INTEGER NOT NULL
)
`,
	`
CREATE TABLE medication (
    id         INTEGER PRIMARY KEY,
    patient_id INTEGER NOT NULL,
    name       TEXT NOT NULL,
    dosage     TEXT NOT NULL DEFAULT '',
    schedule   TEXT NOT NULL DEFAULT '',
    taken      INTEGER NOT NULL DEFAULT 0,
    active     INTEGER NOT NULL DEFAULT 1,
    uuid       TEXT UNIQUE NOT NULL,
    changed    INTEGER NOT NULL,
    FOREIGN KEY (patient_id) REFERENCES patient (id)
)
`,
	"CREATE INDEX medication_patient_idx ON medication (patient_id)",
	"CREATE INDEX medication_pending_idx ON medication (active, taken)",
	`
CREATE TABLE companion (
    id      INTEGER PRIMARY KEY,
    name    TEXT NOT NULL,
    email   TEXT NOT NULL DEFAULT '',
    chat_id INTEGER NOT NULL DEFAULT 0,
    uuid    TEXT UNIQUE NOT NULL,
    changed INTEGER NOT NULL
)
`,
	`
CREATE TABLE companion_link (
    id           INTEGER PRIMARY KEY,
    patient_id   INTEGER NOT NULL,
    companion_id INTEGER NOT NULL,
    status       INTEGER NOT NULL DEFAULT 0,
    changed      INTEGER NOT NULL,
    UNIQUE (patient_id, companion_id),
    FOREIGN KEY (patient_id) REFERENCES patient (id),
    FOREIGN KEY (companion_id) REFERENCES companion (id)
)
`,
	"CREATE INDEX link_patient_idx ON companion_link (patient_id)",
	`
CREATE TABLE push_subscription (
    id           INTEGER PRIMARY KEY,
    companion_id INTEGER NOT NULL,
    endpoint     TEXT UNIQUE NOT NULL,
    p256dh       TEXT NOT NULL DEFAULT '',
    auth         TEXT NOT NULL DEFAULT '',
    changed      INTEGER NOT NULL,
    FOREIGN KEY (companion_id) REFERENCES companion (id)
)
`,
	"CREATE INDEX subscription_companion_idx ON push_subscription (companion_id)",
	`
CREATE TABLE notification (
    id            INTEGER PRIMARY KEY,
    medication_id INTEGER NOT NULL,
    companion_id  INTEGER NOT NULL,
    tier          TEXT NOT NULL,
    channel       TEXT NOT NULL,
    scheduled     INTEGER NOT NULL,
    summary       TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL,
    timestamp     INTEGER NOT NULL,
    FOREIGN KEY (medication_id) REFERENCES medication (id),
    FOREIGN KEY (companion_id) REFERENCES companion (id)
)
`,
	"CREATE INDEX notification_time_idx ON notification (timestamp)",
	"CREATE INDEX notification_medication_idx ON notification (medication_id)",
}
