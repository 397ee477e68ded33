// /home/krylon/go/src/github.com/blicero/asklepios/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-07 21:12:40 krylon>

// Package clientlib provides the basic framework for building clients
// that talk to the backend: registering patients and medications, and
// marking doses as taken.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Client is the basic implementation of an Asklepios client, it
// implements the fundamental communication with the server.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	c.Server.Scheme = "http"

	return c, nil
} // func NewClient(srv string) (*Client, error)

func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

// SubmitPatient registers a new Patient with the backend.
func (c *Client) SubmitPatient(name string) error {
	return c.postForm("/patient/add", url.Values{
		"name": []string{name},
	})
} // func (c *Client) SubmitPatient(name string) error

// SubmitMedication registers a new Medication for the given Patient.
func (c *Client) SubmitMedication(m *objects.Medication) error {
	return c.postForm("/medication/add", url.Values{
		"patient":  []string{strconv.FormatInt(m.PatientID, 10)},
		"name":     []string{m.Name},
		"dosage":   []string{m.Dosage},
		"schedule": []string{m.Schedule},
	})
} // func (c *Client) SubmitMedication(m *objects.Medication) error

// MarkTaken tells the backend a dose has (or has not) been taken.
func (c *Client) MarkTaken(id int64, taken bool) error {
	return c.postForm(
		fmt.Sprintf("/medication/%d/taken", id),
		url.Values{
			"taken": []string{strconv.FormatBool(taken)},
		})
} // func (c *Client) MarkTaken(id int64, taken bool) error

// GetPending fetches the Medications that are still due today.
func (c *Client) GetPending() ([]objects.Medication, error) {
	var (
		err  error
		addr = *c.Server
		buf  bytes.Buffer
		hres *http.Response
		meds []objects.Medication
	)

	addr.Path = "/medication/pending"

	if hres, err = c.Client.Get(addr.String()); err != nil {
		c.log.Printf("[ERROR] Failed to GET %s: %s\n",
			addr.String(),
			err.Error())
		return nil, err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		err = fmt.Errorf("Unexpected status from %s: %s",
			addr.String(),
			hres.Status)
		c.log.Printf("[ERROR] %s\n", err.Error())
		return nil, err
	} else if _, err = io.Copy(&buf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read response body from %s: %s\n",
			addr.String(),
			err.Error())
		return nil, err
	} else if err = ffjson.Unmarshal(buf.Bytes(), &meds); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Medication list from %s: %s\n",
			addr.String(),
			err.Error())
		return nil, err
	}

	return meds, nil
} // func (c *Client) GetPending() ([]objects.Medication, error)

func (c *Client) postForm(path string, values url.Values) error {
	var (
		err    error
		msg    string
		addr   = *c.Server
		rcvBuf bytes.Buffer
		hres   *http.Response
		ores   objects.Response
	)

	addr.Path = path

	if hres, err = c.Client.PostForm(addr.String(), values); err != nil {
		c.log.Printf("[ERROR] Failed to POST to %s: %s\n",
			addr.String(),
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		msg = fmt.Sprintf("Unexpected status from %s: %s",
			addr.String(),
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			addr.String(),
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			addr.String(),
			err.Error())
		return err
	} else if !ores.Status {
		err = fmt.Errorf("Request to %s failed: %s",
			addr.String(),
			ores.Message)
		c.log.Printf("[ERROR] %s\n",
			err.Error())
		return err
	}

	c.log.Printf("[DEBUG] Request to %s was successful: %s\n",
		addr.String(),
		ores.Message)

	return nil
} // func (c *Client) postForm(path string, values url.Values) error
