// /home/krylon/go/src/github.com/blicero/asklepios/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-05 21:48:26 krylon>

// Package database provides persistence for the application's data.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/database/query"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/objects/linkstatus"
	"github.com/blicero/krylib"
	_ "github.com/mattn/go-sqlite3" // Import the database driver
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt was made to initiate a
// transaction while one was already in progress.
var ErrTxInProgress = fmt.Errorf("A Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = fmt.Errorf("There is no transaction in progress")

// If a query returns an error and the error text is matched by this
// regex, we consider the error as transient and try again after a
// short delay.
var retryPat = regexp.MustCompile("(?i)database is (?:locked|busy)")

const retryDelay = 25 * time.Millisecond

func worthARetry(e error) bool {
	return retryPat.MatchString(e.Error())
} // func worthARetry(e error) bool

// waitForRetry waits a little before a transient error is retried.
func waitForRetry() {
	time.Sleep(retryDelay)
} // func waitForRetry()

// Database wraps a database connection and provides the methods to
// perform the operations the application needs.
type Database struct {
	id      int64
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens a Database. If the database specified by the path does
// not exist, yet, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt, len(dbQueries)),
		}
	)

	openLock.Lock()
	defer openLock.Unlock()
	idCnt++
	db.id = idCnt

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=1&recursive_triggers=0",
		path)

	if dbExists, err = db.dbExists(); err != nil {
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Cannot open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			var e2 error
			if e2 = db.db.Close(); e2 != nil {
				db.log.Printf("[CRITICAL] Error closing database: %s\n",
					e2.Error())
				return nil, e2
			}
			return nil, err
		}
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) dbExists() (bool, error) {
	return krylib.Fexists(db.path)
} // func (db *Database) dbExists() (bool, error)

func (db *Database) initialize() error {
	var err error
	var tx *sql.Tx

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		db.log.Printf("[TRACE] Execute init query:\n%s\n",
			q)
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	// I wonder if would make more snese to panic() if something goes
	// wrong, because this method should only be called when no
	// queries are running and no transaction is in progress.
	var err error

	if db.tx != nil {
		if err = db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err = stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err = db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt *sql.Stmt
		ok   bool
		err  error
	)

	if stmt, ok = db.queries[id]; ok {
		return stmt, nil
	} else if _, ok = dbQueries[id]; !ok {
		return nil, fmt.Errorf("Unknown query %d",
			id)
	}

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt

	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start
// one, while another transaction is already in progress will yield ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Begin Transaction\n",
		db.id)

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for db.tx == nil {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				continue BEGIN_TX
			} else {
				db.log.Printf("[ERROR] Error starting transaction: %s\n",
					err.Error())
				return err
			}
		}
	}

	return nil
} // func (db *Database) Begin() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Rollback() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Roll back Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		return fmt.Errorf("Cannot roll back database transaction: %s",
			err.Error())
	}

	db.tx = nil

	return nil
} // func (db *Database) Rollback() error

// Commit ends the active transaction, making any changes made during
// that transaction permanent and visible to other connections.
// If no transaction is active, it returns ErrNoTxInProgress
func (db *Database) Commit() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Commit Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		return fmt.Errorf("Cannot commit transaction: %s",
			err.Error())
	}

	db.tx = nil

	return nil
} // func (db *Database) Commit() error

// PatientAdd adds a Patient to the database.
func (db *Database) PatientAdd(p *objects.Patient) error {
	const qid query.ID = query.PatientAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	p.Changed = time.Now()
	if p.UUID == "" {
		p.UUID = common.GetUUID()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(p.Name, p.UUID, p.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add Patient %q to database: %s\n",
			p.Name,
			err.Error())
		return err
	}

	if p.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[CANTHAPPEN] Cannot get ID of new Patient %q: %s\n",
			p.Name,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) PatientAdd(p *objects.Patient) error

// PatientGetByID looks up a Patient by its ID.
func (db *Database) PatientGetByID(id int64) (*objects.Patient, error) {
	const qid query.ID = query.PatientGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Patient %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			stamp int64
			p     = &objects.Patient{ID: id}
		)

		if err = rows.Scan(&p.Name, &p.UUID, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		p.Changed = time.Unix(stamp, 0)
		return p, nil
	}

	return nil, nil
} // func (db *Database) PatientGetByID(id int64) (*objects.Patient, error)

// PatientGetAll loads all Patients from the database.
func (db *Database) PatientGetAll() ([]objects.Patient, error) {
	const qid query.ID = query.PatientGetAll
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query all Patients: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var patients []objects.Patient

	for rows.Next() {
		var (
			stamp int64
			p     objects.Patient
		)

		if err = rows.Scan(&p.ID, &p.Name, &p.UUID, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		p.Changed = time.Unix(stamp, 0)
		patients = append(patients, p)
	}

	return patients, nil
} // func (db *Database) PatientGetAll() ([]objects.Patient, error)

// MedicationAdd adds a Medication to the database.
func (db *Database) MedicationAdd(m *objects.Medication) error {
	const qid query.ID = query.MedicationAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	m.Changed = time.Now()
	m.Active = true
	if m.UUID == "" {
		m.UUID = common.GetUUID()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(m.PatientID, m.Name, m.Dosage, m.Schedule, m.UUID, m.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add Medication %q to database: %s\n",
			m.Name,
			err.Error())
		return err
	}

	if m.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[CANTHAPPEN] Cannot get ID of new Medication %q: %s\n",
			m.Name,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) MedicationAdd(m *objects.Medication) error

// MedicationDelete removes a Medication from the database.
func (db *Database) MedicationDelete(m *objects.Medication) error {
	const qid query.ID = query.MedicationDelete
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(m.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot delete Medication %d (%q): %s\n",
			m.ID,
			m.Name,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) MedicationDelete(m *objects.Medication) error

// MedicationGetByID looks up a Medication by its ID.
func (db *Database) MedicationGetByID(id int64) (*objects.Medication, error) {
	const qid query.ID = query.MedicationGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Medication %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			stamp int64
			m     = &objects.Medication{ID: id}
		)

		if err = rows.Scan(
			&m.PatientID,
			&m.PatientName,
			&m.Name,
			&m.Dosage,
			&m.Schedule,
			&m.Taken,
			&m.Active,
			&m.UUID,
			&stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		m.Changed = time.Unix(stamp, 0)
		return m, nil
	}

	return nil, nil
} // func (db *Database) MedicationGetByID(id int64) (*objects.Medication, error)

// MedicationGetAll loads all Medications from the database.
func (db *Database) MedicationGetAll() ([]objects.Medication, error) {
	const qid query.ID = query.MedicationGetAll
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query all Medications: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var meds []objects.Medication

	for rows.Next() {
		var (
			stamp int64
			m     objects.Medication
		)

		if err = rows.Scan(
			&m.ID,
			&m.PatientID,
			&m.PatientName,
			&m.Name,
			&m.Dosage,
			&m.Schedule,
			&m.Taken,
			&m.Active,
			&m.UUID,
			&stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		m.Changed = time.Unix(stamp, 0)
		meds = append(meds, m)
	}

	return meds, nil
} // func (db *Database) MedicationGetAll() ([]objects.Medication, error)

// MedicationGetPending loads the candidate doses for the missed-dose
// scan: active, untaken Medications that have a schedule at all.
// Whether the schedule parses is decided by the caller.
func (db *Database) MedicationGetPending() ([]objects.Medication, error) {
	const qid query.ID = query.MedicationGetPending
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query pending Medications: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var meds []objects.Medication

	for rows.Next() {
		var (
			stamp int64
			m     = objects.Medication{Active: true}
		)

		if err = rows.Scan(
			&m.ID,
			&m.PatientID,
			&m.PatientName,
			&m.Name,
			&m.Dosage,
			&m.Schedule,
			&m.UUID,
			&stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		m.Changed = time.Unix(stamp, 0)
		meds = append(meds, m)
	}

	return meds, nil
} // func (db *Database) MedicationGetPending() ([]objects.Medication, error)

// MedicationSetTaken sets a Medication's taken flag.
func (db *Database) MedicationSetTaken(m *objects.Medication, taken bool) error {
	const qid query.ID = query.MedicationSetTaken
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(taken, now.Unix(), m.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set taken flag on Medication %d (%q): %s\n",
			m.ID,
			m.Name,
			err.Error())
		return err
	}

	m.Taken = taken
	m.Changed = now

	return nil
} // func (db *Database) MedicationSetTaken(m *objects.Medication, taken bool) error

// MedicationSetName updates a Medication's name.
func (db *Database) MedicationSetName(m *objects.Medication, name string) error {
	return db.medicationSetString(query.MedicationSetName, m, &m.Name, name)
} // func (db *Database) MedicationSetName(m *objects.Medication, name string) error

// MedicationSetDosage updates a Medication's dosage.
func (db *Database) MedicationSetDosage(m *objects.Medication, dosage string) error {
	return db.medicationSetString(query.MedicationSetDosage, m, &m.Dosage, dosage)
} // func (db *Database) MedicationSetDosage(m *objects.Medication, dosage string) error

// MedicationSetSchedule updates a Medication's schedule string.
func (db *Database) MedicationSetSchedule(m *objects.Medication, schedule string) error {
	return db.medicationSetString(query.MedicationSetSchedule, m, &m.Schedule, schedule)
} // func (db *Database) MedicationSetSchedule(m *objects.Medication, schedule string) error

func (db *Database) medicationSetString(qid query.ID, m *objects.Medication, field *string, val string) error {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(val, now.Unix(), m.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot update Medication %d (%q) via %s: %s\n",
			m.ID,
			m.Name,
			qid,
			err.Error())
		return err
	}

	*field = val
	m.Changed = now

	return nil
} // func (db *Database) medicationSetString(...) error

// MedicationSetActive sets a Medication's active flag.
func (db *Database) MedicationSetActive(m *objects.Medication, active bool) error {
	const qid query.ID = query.MedicationSetActive
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(active, now.Unix(), m.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set active flag on Medication %d (%q): %s\n",
			m.ID,
			m.Name,
			err.Error())
		return err
	}

	m.Active = active
	m.Changed = now

	return nil
} // func (db *Database) MedicationSetActive(m *objects.Medication, active bool) error

// CompanionAdd adds a Companion to the database.
func (db *Database) CompanionAdd(c *objects.Companion) error {
	const qid query.ID = query.CompanionAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	c.Changed = time.Now()
	if c.UUID == "" {
		c.UUID = common.GetUUID()
	}

EXEC_QUERY:
	if res, err = stmt.Exec(c.Name, c.Email, c.ChatID, c.UUID, c.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add Companion %q to database: %s\n",
			c.Name,
			err.Error())
		return err
	}

	if c.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[CANTHAPPEN] Cannot get ID of new Companion %q: %s\n",
			c.Name,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) CompanionAdd(c *objects.Companion) error

// CompanionGetByID looks up a Companion by its ID.
func (db *Database) CompanionGetByID(id int64) (*objects.Companion, error) {
	const qid query.ID = query.CompanionGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Companion %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			stamp int64
			c     = &objects.Companion{ID: id}
		)

		if err = rows.Scan(&c.Name, &c.Email, &c.ChatID, &c.UUID, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		c.Changed = time.Unix(stamp, 0)
		return c, nil
	}

	return nil, nil
} // func (db *Database) CompanionGetByID(id int64) (*objects.Companion, error)

// CompanionGetAll loads all Companions from the database.
func (db *Database) CompanionGetAll() ([]objects.Companion, error) {
	const qid query.ID = query.CompanionGetAll
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query all Companions: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var companions []objects.Companion

	for rows.Next() {
		var (
			stamp int64
			c     objects.Companion
		)

		if err = rows.Scan(&c.ID, &c.Name, &c.Email, &c.ChatID, &c.UUID, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		c.Changed = time.Unix(stamp, 0)
		companions = append(companions, c)
	}

	return companions, nil
} // func (db *Database) CompanionGetAll() ([]objects.Companion, error)

// LinkAdd creates a link between a Patient and a Companion.
func (db *Database) LinkAdd(l *objects.CompanionLink) error {
	const qid query.ID = query.LinkAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	l.Changed = time.Now()

EXEC_QUERY:
	if res, err = stmt.Exec(l.PatientID, l.CompanionID, l.Status, l.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot link Companion %d to Patient %d: %s\n",
			l.CompanionID,
			l.PatientID,
			err.Error())
		return err
	}

	if l.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[CANTHAPPEN] Cannot get ID of new CompanionLink: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) LinkAdd(l *objects.CompanionLink) error

// LinkGetByID looks up a CompanionLink by its ID.
func (db *Database) LinkGetByID(id int64) (*objects.CompanionLink, error) {
	const qid query.ID = query.LinkGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query CompanionLink %d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			stamp int64
			l     = &objects.CompanionLink{ID: id}
		)

		if err = rows.Scan(&l.PatientID, &l.CompanionID, &l.Status, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		l.Changed = time.Unix(stamp, 0)
		return l, nil
	}

	return nil, nil
} // func (db *Database) LinkGetByID(id int64) (*objects.CompanionLink, error)

// LinkSetStatus updates the status of a CompanionLink.
func (db *Database) LinkSetStatus(l *objects.CompanionLink, status linkstatus.Status) error {
	const qid query.ID = query.LinkSetStatus
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var now = time.Now()

EXEC_QUERY:
	if _, err = stmt.Exec(status, now.Unix(), l.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set status of CompanionLink %d to %s: %s\n",
			l.ID,
			status,
			err.Error())
		return err
	}

	l.Status = status
	l.Changed = now

	return nil
} // func (db *Database) LinkSetStatus(l *objects.CompanionLink, status linkstatus.Status) error

// SubscriptionAdd registers a Web Push subscription for a Companion.
func (db *Database) SubscriptionAdd(s *objects.PushSubscription) error {
	const qid query.ID = query.SubscriptionAdd
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

	s.Changed = time.Now()

EXEC_QUERY:
	if res, err = stmt.Exec(s.CompanionID, s.Endpoint, s.P256dh, s.Auth, s.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot add PushSubscription for Companion %d: %s\n",
			s.CompanionID,
			err.Error())
		return err
	}

	if s.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[CANTHAPPEN] Cannot get ID of new PushSubscription: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) SubscriptionAdd(s *objects.PushSubscription) error

// SubscriptionDelete deregisters a Web Push subscription by its
// endpoint, e.g. after the push service reported it as gone.
func (db *Database) SubscriptionDelete(endpoint string) error {
	const qid query.ID = query.SubscriptionDelete
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(endpoint); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot delete PushSubscription %q: %s\n",
			endpoint,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) SubscriptionDelete(endpoint string) error

// SubscriptionGetByCompanion loads all Web Push subscriptions of one Companion.
func (db *Database) SubscriptionGetByCompanion(companionID int64) ([]objects.PushSubscription, error) {
	const qid query.ID = query.SubscriptionGetByCompanion
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(companionID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query PushSubscriptions of Companion %d: %s\n",
			companionID,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var subs []objects.PushSubscription

	for rows.Next() {
		var (
			stamp int64
			s     = objects.PushSubscription{CompanionID: companionID}
		)

		if err = rows.Scan(&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		s.Changed = time.Unix(stamp, 0)
		subs = append(subs, s)
	}

	return subs, nil
} // func (db *Database) SubscriptionGetByCompanion(companionID int64) ([]objects.PushSubscription, error)

// CompanionGetForPatients resolves the accepted Companions for a batch
// of Patients in one query, grouped by Patient ID. The result includes
// each Companion's Web Push subscriptions, loaded in a second batched
// query. A Companion with an empty name gets a placeholder so a
// degraded profile never sinks the whole batch.
func (db *Database) CompanionGetForPatients(patientIDs []int64) (map[int64][]objects.Companion, error) {
	var recipients = make(map[int64][]objects.Companion, len(patientIDs))

	if len(patientIDs) == 0 {
		return recipients, nil
	}

	var qstr = fmt.Sprintf(`
SELECT
    l.patient_id,
    c.id,
    c.name,
    c.email,
    c.chat_id,
    c.uuid,
    c.changed
FROM companion_link l
INNER JOIN companion c ON c.id = l.companion_id
WHERE l.status = %d AND l.patient_id IN (%s)
`,
		linkstatus.Accepted,
		placeholders(len(patientIDs)))

	var (
		err  error
		rows *sql.Rows
		args = idArgs(patientIDs)
	)

EXEC_QUERY:
	if db.tx != nil {
		rows, err = db.tx.Query(qstr, args...)
	} else {
		rows, err = db.db.Query(qstr, args...)
	}

	if err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot resolve Companions for %d Patients: %s\n",
			len(patientIDs),
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var companionIDs []int64

	for rows.Next() {
		var (
			stamp     int64
			patientID int64
			c         objects.Companion
		)

		if err = rows.Scan(
			&patientID,
			&c.ID,
			&c.Name,
			&c.Email,
			&c.ChatID,
			&c.UUID,
			&stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		if c.Name == "" {
			c.Name = "Companion"
		}

		c.Changed = time.Unix(stamp, 0)
		recipients[patientID] = append(recipients[patientID], c)
		companionIDs = append(companionIDs, c.ID)
	}

	var subs map[int64][]objects.PushSubscription

	if subs, err = db.subscriptionGetForCompanions(companionIDs); err != nil {
		// A Companion without subscriptions is still reachable by
		// mail or chat, so we carry on.
		db.log.Printf("[ERROR] Cannot load PushSubscriptions: %s\n",
			err.Error())
		subs = nil
	}

	for pid, companions := range recipients {
		for i := range companions {
			companions[i].Subscriptions = subs[companions[i].ID]
		}
		recipients[pid] = companions
	}

	return recipients, nil
} // func (db *Database) CompanionGetForPatients(patientIDs []int64) (map[int64][]objects.Companion, error)

func (db *Database) subscriptionGetForCompanions(companionIDs []int64) (map[int64][]objects.PushSubscription, error) {
	var subs = make(map[int64][]objects.PushSubscription, len(companionIDs))

	if len(companionIDs) == 0 {
		return subs, nil
	}

	var qstr = fmt.Sprintf(`
SELECT
    id,
    companion_id,
    endpoint,
    p256dh,
    auth,
    changed
FROM push_subscription
WHERE companion_id IN (%s)
`,
		placeholders(len(companionIDs)))

	var (
		err  error
		rows *sql.Rows
		args = idArgs(companionIDs)
	)

EXEC_QUERY:
	if db.tx != nil {
		rows, err = db.tx.Query(qstr, args...)
	} else {
		rows, err = db.db.Query(qstr, args...)
	}

	if err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	for rows.Next() {
		var (
			stamp int64
			s     objects.PushSubscription
		)

		if err = rows.Scan(&s.ID, &s.CompanionID, &s.Endpoint, &s.P256dh, &s.Auth, &stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		s.Changed = time.Unix(stamp, 0)
		subs[s.CompanionID] = append(subs[s.CompanionID], s)
	}

	return subs, nil
} // func (db *Database) subscriptionGetForCompanions(companionIDs []int64) (map[int64][]objects.PushSubscription, error)

// NotificationGetSentToday loads the dedup index for one run: every
// (medication, companion, tier) triple that already got a notification
// during the current calendar day, restricted to the given medication
// IDs. The keys have the same form as NotificationRecord.DedupKey.
func (db *Database) NotificationGetSentToday(medicationIDs []int64, now time.Time) (map[string]bool, error) {
	var sent = make(map[string]bool)

	if len(medicationIDs) == 0 {
		return sent, nil
	}

	var (
		dayBegin = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		dayEnd   = dayBegin.AddDate(0, 0, 1)
	)

	var qstr = fmt.Sprintf(`
SELECT
    medication_id,
    companion_id,
    tier
FROM notification
WHERE timestamp >= ? AND timestamp < ?
  AND medication_id IN (%s)
`,
		placeholders(len(medicationIDs)))

	var (
		err  error
		rows *sql.Rows
		args = append([]any{dayBegin.Unix(), dayEnd.Unix()}, idArgs(medicationIDs)...)
	)

EXEC_QUERY:
	if db.tx != nil {
		rows, err = db.tx.Query(qstr, args...)
	} else {
		rows, err = db.db.Query(qstr, args...)
	}

	if err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot load today's notifications: %s\n",
			err.Error())
		return sent, err
	}

	defer rows.Close() // nolint: errcheck

	for rows.Next() {
		var rec objects.NotificationRecord

		if err = rows.Scan(&rec.MedicationID, &rec.CompanionID, &rec.Tier); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return sent, err
		}

		sent[rec.DedupKey()] = true
	}

	return sent, nil
} // func (db *Database) NotificationGetSentToday(medicationIDs []int64, now time.Time) (map[string]bool, error)

// NotificationAddBatch records a batch of sent notifications in a
// single transaction. An empty batch is a no-op.
func (db *Database) NotificationAddBatch(records []objects.NotificationRecord) error {
	const qid query.ID = query.NotificationAdd

	if len(records) == 0 {
		return nil
	}

	var (
		err      error
		stmt     *sql.Stmt
		txStatus bool
	)

	if db.tx == nil {
		if err = db.Begin(); err != nil {
			return err
		}

		defer func() {
			if txStatus {
				db.Commit() // nolint: errcheck
			} else {
				db.Rollback() // nolint: errcheck
			}
		}()
	}

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	}

	stmt = db.tx.Stmt(stmt)

	for i := range records {
		var (
			rec = &records[i]
			res sql.Result
		)

	EXEC_QUERY:
		if res, err = stmt.Exec(
			rec.MedicationID,
			rec.CompanionID,
			rec.Tier,
			rec.Channel,
			rec.Scheduled.Unix(),
			rec.Summary,
			rec.Status,
			rec.Timestamp.Unix()); err != nil {
			if worthARetry(err) {
				waitForRetry()
				goto EXEC_QUERY
			}

			db.log.Printf("[ERROR] Cannot record notification %s/%s: %s\n",
				rec.DedupKey(),
				rec.Channel,
				err.Error())
			return err
		}

		if rec.ID, err = res.LastInsertId(); err != nil {
			db.log.Printf("[CANTHAPPEN] Cannot get ID of notification record: %s\n",
				err.Error())
			return err
		}
	}

	txStatus = true
	return nil
} // func (db *Database) NotificationAddBatch(records []objects.NotificationRecord) error

// NotificationGetRecent loads the most recent entries from the
// notification history.
func (db *Database) NotificationGetRecent(max int) ([]objects.NotificationRecord, error) {
	const qid query.ID = query.NotificationGetRecent
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(max); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query notification history: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var records []objects.NotificationRecord

	for rows.Next() {
		var (
			sched, stamp int64
			rec          objects.NotificationRecord
		)

		if err = rows.Scan(
			&rec.ID,
			&rec.MedicationID,
			&rec.CompanionID,
			&rec.Tier,
			&rec.Channel,
			&sched,
			&rec.Summary,
			&rec.Status,
			&stamp); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		rec.Scheduled = time.Unix(sched, 0)
		rec.Timestamp = time.Unix(stamp, 0)
		records = append(records, rec)
	}

	return records, nil
} // func (db *Database) NotificationGetRecent(max int) ([]objects.NotificationRecord, error)

func placeholders(cnt int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", cnt), ", ")
} // func placeholders(cnt int) string

func idArgs(ids []int64) []any {
	var args = make([]any, len(ids))

	for i, id := range ids {
		args[i] = id
	}

	return args
} // func idArgs(ids []int64) []any
