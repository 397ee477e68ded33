// /home/krylon/go/src/github.com/blicero/asklepios/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 18:40:21 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

type ID uint8

const (
	PatientAdd ID = iota
	PatientGetByID
	PatientGetAll
	MedicationAdd
	MedicationDelete
	MedicationGetByID
	MedicationGetAll
	MedicationGetPending
	MedicationSetTaken
	MedicationSetName
	MedicationSetDosage
	MedicationSetSchedule
	MedicationSetActive
	CompanionAdd
	CompanionGetByID
	CompanionGetAll
	LinkAdd
	LinkGetByID
	LinkSetStatus
	SubscriptionAdd
	SubscriptionDelete
	SubscriptionGetByCompanion
	NotificationAdd
	NotificationGetRecent
)
