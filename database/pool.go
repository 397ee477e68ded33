// /home/krylon/go/src/github.com/blicero/asklepios/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-04 20:14:08 krylon>

package database

import (
	"log"
	"sync"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
)

// Pool is a pool of database connections. Safe for concurrent use.
type Pool struct {
	lock sync.Mutex
	cond *sync.Cond
	log  *log.Logger
	pool []*Database
}

// NewPool creates a Pool of database connections of the given size.
func NewPool(cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			pool: make([]*Database, 0, cnt),
		}
	)

	pool.cond = sync.NewCond(&pool.lock)

	if pool.log, err = common.GetLogger(logdomain.DBPool); err != nil {
		return nil, err
	}

	for i := 0; i < cnt; i++ {
		var db *Database

		if db, err = Open(common.DbPath); err != nil {
			pool.log.Printf("[ERROR] Cannot open database at %s: %s\n",
				common.DbPath,
				err.Error())
			return nil, err
		}

		pool.pool = append(pool.pool, db)
	}

	return pool, nil
} // func NewPool(cnt int) (*Pool, error)

// Get returns a database connection from the Pool.
// If the Pool is empty, it blocks until a connection is returned.
func (p *Pool) Get() *Database {
	p.lock.Lock()
	defer p.lock.Unlock()

	for len(p.pool) == 0 {
		p.cond.Wait()
	}

	var db = p.pool[len(p.pool)-1]
	p.pool = p.pool[:len(p.pool)-1]

	return db
} // func (p *Pool) Get() *Database

// GetNoWait returns a database connection if one is available
// immediately, or nil.
func (p *Pool) GetNoWait() *Database {
	p.lock.Lock()
	defer p.lock.Unlock()

	if len(p.pool) == 0 {
		return nil
	}

	var db = p.pool[len(p.pool)-1]
	p.pool = p.pool[:len(p.pool)-1]

	return db
} // func (p *Pool) GetNoWait() *Database

// Put returns a database connection to the Pool.
func (p *Pool) Put(db *Database) {
	if db == nil {
		return
	}

	p.lock.Lock()
	p.pool = append(p.pool, db)
	p.cond.Signal()
	p.lock.Unlock()
} // func (p *Pool) Put(db *Database)

// Close closes all connections currently in the Pool.
func (p *Pool) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	for _, db := range p.pool {
		if err := db.Close(); err != nil {
			p.log.Printf("[ERROR] Cannot close database: %s\n",
				err.Error())
			return err
		}
	}

	p.pool = p.pool[:0]
	return nil
} // func (p *Pool) Close() error
