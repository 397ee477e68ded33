// /home/krylon/go/src/github.com/blicero/asklepios/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 22:03:11 krylon>

package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/database"
	"github.com/blicero/asklepios/dispatch"
	"github.com/blicero/asklepios/objects"
	"github.com/blicero/asklepios/objects/linkstatus"
	"github.com/blicero/asklepios/tier"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

const recentNotificationCnt = 50

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/patient/add", d.handlePatientAdd)
	d.router.HandleFunc("/patient/all", d.handlePatientGetAll)
	d.router.HandleFunc("/medication/add", d.handleMedicationAdd)
	d.router.HandleFunc("/medication/all", d.handleMedicationGetAll)
	d.router.HandleFunc("/medication/pending", d.handleMedicationGetPending)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}/taken", d.handleMedicationSetTaken)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}/update", d.handleMedicationUpdate)
	d.router.HandleFunc("/medication/{id:(?:\\d+)}/delete", d.handleMedicationDelete)
	d.router.HandleFunc("/companion/add", d.handleCompanionAdd)
	d.router.HandleFunc("/companion/all", d.handleCompanionGetAll)
	d.router.HandleFunc("/companion/link", d.handleLinkAdd)
	d.router.HandleFunc("/companion/link/{id:(?:\\d+)}/status", d.handleLinkSetStatus)
	d.router.HandleFunc("/subscription/add", d.handleSubscriptionAdd)
	d.router.HandleFunc("/subscription/delete", d.handleSubscriptionDelete)
	d.router.HandleFunc("/engine/run", d.handleEngineRun)
	d.router.HandleFunc("/engine/summary", d.handleEngineStatus)
	d.router.HandleFunc("/notification/recent", d.handleNotificationGetRecent)

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web interface is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handlePatientAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		msg      string
		p        objects.Patient
		response = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	p.Name = r.PostFormValue("name")

	if p.Name == "" {
		msg = "Cannot add a Patient without a name"
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	p.UUID = common.GetUUID()

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.PatientAdd(&p); err != nil {
		msg = fmt.Sprintf("Cannot add Patient %q to database: %s",
			p.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = p.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handlePatientAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handlePatientGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		patients []objects.Patient
		buf      []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if patients, err = db.PatientGetAll(); err != nil {
		d.log.Printf("[ERROR] Cannot load Patients: %s\n",
			err.Error())

	} else if buf, err = ffjson.Marshal(patients); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Patient list: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handlePatientGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		idstr, msg string
		m          objects.Medication
		response   = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	idstr = r.PostFormValue("patient")
	m.Name = r.PostFormValue("name")
	m.Dosage = r.PostFormValue("dosage")
	m.Schedule = r.PostFormValue("schedule")

	if m.PatientID, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse Patient ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if m.Name == "" {
		msg = "Cannot add a Medication without a name"
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	if _, ok := tier.ParseScheduleTime(m.Schedule); !ok {
		msg = fmt.Sprintf("Cannot parse schedule %q, expected e.g. \"8:00 AM\" or \"20:00\"",
			m.Schedule)
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	m.Active = true
	m.UUID = common.GetUUID()

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.MedicationAdd(&m); err != nil {
		msg = fmt.Sprintf("Cannot add Medication %q to database: %s",
			m.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = m.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleMedicationAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		db   *database.Database
		meds []objects.Medication
		buf  []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if meds, err = db.MedicationGetAll(); err != nil {
		d.log.Printf("[ERROR] Cannot load Medications: %s\n",
			err.Error())

	} else if buf, err = ffjson.Marshal(meds); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Medication list: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleMedicationGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationGetPending(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		db   *database.Database
		meds []objects.Medication
		buf  []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if meds, err = db.MedicationGetPending(); err != nil {
		d.log.Printf("[ERROR] Cannot load pending Medications: %s\n",
			err.Error())

	} else if buf, err = ffjson.Marshal(meds); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Medication list: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleMedicationGetPending(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationSetTaken(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		vars       map[string]string
		idstr, msg string
		id         int64
		taken      = true
		m          *objects.Medication
		res        = objects.Response{ID: d.getID()}
	)

	vars = mux.Vars(r)
	idstr = vars["id"]

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if tstr := r.FormValue("taken"); tstr != "" {
		if taken, err = strconv.ParseBool(tstr); err != nil {
			msg = fmt.Sprintf("Cannot parse taken flag %q: %s",
				tstr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if m, err = db.MedicationGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to get Medication #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if m == nil {
		msg = fmt.Sprintf("Medication #%d was not found in database",
			id)
		d.log.Printf("[DEBUG] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if err = db.MedicationSetTaken(m, taken); err != nil {
		msg = fmt.Sprintf("Cannot mark Medication %d (%q) as taken: %s",
			id,
			m.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = fmt.Sprintf("Medication %q was marked as taken=%t",
		m.Name,
		taken)
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMedicationSetTaken(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationUpdate(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err                             error
		db                              *database.Database
		id                              int64
		idstr, name, dosage, sched, msg string
		m                               *objects.Medication
		res                             = objects.Response{ID: d.getID()}
		txStatus                        bool
	)

	vars := mux.Vars(r)

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	idstr = vars["id"]
	name = r.FormValue("name")
	dosage = r.FormValue("dosage")
	sched = r.FormValue("schedule")

	db = d.pool.Get()
	defer d.pool.Put(db)

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if sched != "" {
		if _, ok := tier.ParseScheduleTime(sched); !ok {
			msg = fmt.Sprintf("Cannot parse schedule %q", sched)
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	if m, err = db.MedicationGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Medication #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if m == nil {
		msg = fmt.Sprintf("Could not find Medication #%d in database", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if err = db.Begin(); err != nil {
		msg = fmt.Sprintf("Error starting transaction: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	if name != "" && name != m.Name {
		if err = db.MedicationSetName(m, name); err != nil {
			msg = fmt.Sprintf("Failed to update name of Medication %d from %q to %q: %s",
				m.ID,
				m.Name,
				name,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	if dosage != "" && dosage != m.Dosage {
		if err = db.MedicationSetDosage(m, dosage); err != nil {
			msg = fmt.Sprintf("Failed to update dosage of Medication %d: %s",
				m.ID,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	if sched != "" && sched != m.Schedule {
		if err = db.MedicationSetSchedule(m, sched); err != nil {
			msg = fmt.Sprintf("Failed to update schedule of Medication %d: %s",
				m.ID,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	if astr := r.FormValue("active"); astr != "" {
		var active bool
		if active, err = strconv.ParseBool(astr); err != nil {
			msg = fmt.Sprintf("Cannot parse active flag %q: %s",
				astr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		} else if err = db.MedicationSetActive(m, active); err != nil {
			msg = fmt.Sprintf("Failed to update active flag of Medication %d: %s",
				m.ID,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			goto SEND_RESPONSE
		}
	}

	res.Status = true
	res.Message = "OK"
	txStatus = true

SEND_RESPONSE:
	if txStatus {
		if err = db.Commit(); err != nil {
			msg = fmt.Sprintf("Error committing transaction: %s",
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			res.Message = msg
			res.Status = false
		}
	} else if db != nil {
		if err = db.Rollback(); err != nil {
			d.log.Printf("[ERROR] Failed to rollback transaction: %s\n",
				err.Error())
		}
	}

	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMedicationUpdate(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleMedicationDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		vars       map[string]string
		idstr, msg string
		id         int64
		db         *database.Database
		m          *objects.Medication
		res        = objects.Response{ID: d.getID()}
	)

	vars = mux.Vars(r)
	idstr = vars["id"]

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if m, err = db.MedicationGetByID(id); err != nil {
		msg = fmt.Sprintf("Cannot lookup Medication by ID %d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if m == nil {
		msg = fmt.Sprintf("Did not find Medication %d in database", id)
		d.log.Printf("[INFO] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if err = db.MedicationDelete(m); err != nil {
		msg = fmt.Sprintf("Failed to delete Medication %d (%q): %s",
			id,
			m.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = fmt.Sprintf("Medication %d (%q) was deleted",
		id,
		m.Name)
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleMedicationDelete(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCompanionAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		msg      string
		c        objects.Companion
		response = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	c.Name = r.PostFormValue("name")
	c.Email = r.PostFormValue("email")

	if c.Name == "" {
		msg = "Cannot add a Companion without a name"
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	if cstr := r.PostFormValue("chat_id"); cstr != "" {
		if c.ChatID, err = strconv.ParseInt(cstr, 10, 64); err != nil {
			msg = fmt.Sprintf("Cannot parse chat ID %q: %s",
				cstr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
	}

	c.UUID = common.GetUUID()

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.CompanionAdd(&c); err != nil {
		msg = fmt.Sprintf("Cannot add Companion %q to database: %s",
			c.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = c.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCompanionAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCompanionGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		companions []objects.Companion
		buf        []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if companions, err = db.CompanionGetAll(); err != nil {
		d.log.Printf("[ERROR] Cannot load Companions: %s\n",
			err.Error())

	} else if buf, err = ffjson.Marshal(companions); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Companion list: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleCompanionGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleLinkAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		pstr, cstr string
		msg        string
		l          objects.CompanionLink
		response   = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	pstr = r.PostFormValue("patient")
	cstr = r.PostFormValue("companion")

	if l.PatientID, err = strconv.ParseInt(pstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse Patient ID %q: %s",
			pstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if l.CompanionID, err = strconv.ParseInt(cstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse Companion ID %q: %s",
			cstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.LinkAdd(&l); err != nil {
		msg = fmt.Sprintf("Cannot link Companion %d to Patient %d: %s",
			l.CompanionID,
			l.PatientID,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = fmt.Sprintf("Link %d is %s",
		l.ID,
		l.Status)
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleLinkAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleLinkSetStatus(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err              error
		db               *database.Database
		vars             map[string]string
		idstr, sstr, msg string
		id               int64
		status           linkstatus.Status
		l                *objects.CompanionLink
		res              = objects.Response{ID: d.getID()}
	)

	vars = mux.Vars(r)
	idstr = vars["id"]

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	sstr = r.FormValue("status")

	if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	switch sstr {
	case "accepted":
		status = linkstatus.Accepted
	case "declined":
		status = linkstatus.Declined
	case "pending":
		status = linkstatus.Pending
	default:
		msg = fmt.Sprintf("Invalid link status %q", sstr)
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if l, err = db.LinkGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up CompanionLink #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if l == nil {
		msg = fmt.Sprintf("CompanionLink #%d was not found in database",
			id)
		d.log.Printf("[DEBUG] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	} else if err = db.LinkSetStatus(l, status); err != nil {
		msg = fmt.Sprintf("Cannot set status of CompanionLink %d to %s: %s",
			id,
			status,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		res.Message = msg
		goto SEND_RESPONSE
	}

	res.Message = fmt.Sprintf("Link %d is now %s", id, status)
	res.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &res)
} // func (d *Daemon) handleLinkSetStatus(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleSubscriptionAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err       error
		db        *database.Database
		cstr, msg string
		sub       objects.PushSubscription
		response  = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	cstr = r.PostFormValue("companion")
	sub.Endpoint = r.PostFormValue("endpoint")
	sub.P256dh = r.PostFormValue("p256dh")
	sub.Auth = r.PostFormValue("auth")

	if sub.CompanionID, err = strconv.ParseInt(cstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse Companion ID %q: %s",
			cstr,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if sub.Endpoint == "" {
		msg = "Cannot register a subscription without an endpoint"
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.SubscriptionAdd(&sub); err != nil {
		msg = fmt.Sprintf("Cannot register subscription for Companion %d: %s",
			sub.CompanionID,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = fmt.Sprintf("Subscription %d registered", sub.ID)
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleSubscriptionAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleSubscriptionDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err           error
		db            *database.Database
		endpoint, msg string
		response      = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	endpoint = r.PostFormValue("endpoint")

	if endpoint == "" {
		msg = "Cannot deregister a subscription without an endpoint"
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.SubscriptionDelete(endpoint); err != nil {
		msg = fmt.Sprintf("Cannot deregister subscription %q: %s",
			endpoint,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = "Subscription deregistered"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleSubscriptionDelete(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleEngineRun(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		sum *dispatch.Summary
		buf []byte
	)

	if sum, err = d.runEngine(r.Context()); err != nil {
		d.log.Printf("[ERROR] Dispatch run failed: %s\n",
			err.Error())
	}

	if buf, err = ffjson.Marshal(sum); err != nil {
		d.log.Printf("[ERROR] Cannot serialize run Summary: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleEngineRun(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleEngineStatus(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(d.LastRun()); err != nil {
		d.log.Printf("[ERROR] Cannot serialize run Summary: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleEngineStatus(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleNotificationGetRecent(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err     error
		db      *database.Database
		records []objects.NotificationRecord
		buf     []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if records, err = db.NotificationGetRecent(recentNotificationCnt); err != nil {
		d.log.Printf("[ERROR] Cannot load recent Notifications: %s\n",
			err.Error())

	} else if buf, err = ffjson.Marshal(records); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Notification list: %s\n",
			err.Error())

	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleNotificationGetRecent(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64
