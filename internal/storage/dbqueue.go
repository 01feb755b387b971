package storage

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	queueBuffer = 100
	maxRetries  = 3
)

// DBQueue serializes access to the SQLite database. All repository
// operations funnel through a single goroutine, which also makes
// read-increment-write sequences on the counters table atomic.
type DBQueue struct {
	db       *sql.DB
	requests chan *dbRequest
	done     chan struct{}
}

type dbRequest struct {
	op       func(*sql.DB) error
	response chan error
}

// NewDBQueue creates a new DBQueue and starts its worker
func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		db:       db,
		requests: make(chan *dbRequest, queueBuffer),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *DBQueue) run() {
	for {
		select {
		case req := <-q.requests:
			req.response <- q.executeWithRetry(req.op)
		case <-q.done:
			return
		}
	}
}

// executeWithRetry retries operations that hit SQLITE_BUSY with a linear
// backoff before giving up.
func (q *DBQueue) executeWithRetry(op func(*sql.DB) error) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := op(q.db)
		if err == nil {
			return nil
		}
		if !isBusyError(err) {
			return err
		}
		time.Sleep(time.Duration(100*(attempt+1)) * time.Millisecond)
	}
	return errors.New("max retries exceeded for SQLITE_BUSY")
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// Execute runs a database operation through the queue and waits for it
func (q *DBQueue) Execute(op func(*sql.DB) error) error {
	req := &dbRequest{
		op:       op,
		response: make(chan error, 1),
	}
	q.requests <- req
	return <-req.response
}

// Close stops the queue worker
func (q *DBQueue) Close() {
	close(q.done)
}
