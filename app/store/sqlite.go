package store

import (
	"errors"
	"fmt"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// stmtKind identifies one cached query shape
type stmtKind int

const (
	stmtQueueNames stmtKind = iota
	stmtJobsForQueue
	stmtInsertOrReplace
	stmtDeleteOne
	stmtDeleteAll
)

var queries = map[stmtKind]string{
	stmtQueueNames:      `SELECT DISTINCT queueName FROM QueuedJobs`,
	stmtJobsForQueue:    `SELECT jobInfo FROM QueuedJobs WHERE queueName = ? ORDER BY rowid`,
	stmtInsertOrReplace: `INSERT OR REPLACE INTO QueuedJobs (queueName, taskId, jobInfo) VALUES (?, ?, ?)`,
	stmtDeleteOne:       `DELETE FROM QueuedJobs WHERE queueName = ? AND taskId = ?`,
	stmtDeleteAll:       `DELETE FROM QueuedJobs`,
}

func (k stmtKind) String() string {
	switch k {
	case stmtQueueNames:
		return "queue-names"
	case stmtJobsForQueue:
		return "jobs-for-queue"
	case stmtInsertOrReplace:
		return "insert-or-replace"
	case stmtDeleteOne:
		return "delete-one"
	case stmtDeleteAll:
		return "delete-all"
	}
	return fmt.Sprintf("stmt-%d", int(k))
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS QueuedJobs (
		queueName TEXT NOT NULL,
		taskId TEXT NOT NULL,
		jobInfo TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS QueuedJobs_queueName_taskId ON QueuedJobs (queueName, taskId)`,
}

// conn holds the connection and statement cache. Used by the worker goroutine only.
type conn struct {
	path        string
	db          *sqlx.DB
	stmts       map[stmtKind]*sqlx.Stmt
	schemaReady bool // process-local, the schema survives in the file across restarts
}

// open makes the connection if not opened yet and ensures the schema
func (c *conn) open() error {
	if c.db == nil {
		log.Printf("[DEBUG] open %s", c.path)
		db, err := sqlx.Connect("sqlite", c.path)
		if err != nil {
			return fmt.Errorf("open %s: %w", c.path, err)
		}
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return fmt.Errorf("set busy timeout: %w (also failed to close db: %v)", err, closeErr)
			}
			return fmt.Errorf("set busy timeout: %w", err)
		}
		c.db = db
		c.stmts = make(map[stmtKind]*sqlx.Stmt)
	}
	return c.ensureSchema()
}

func (c *conn) ensureSchema() error {
	if c.schemaReady {
		return nil
	}
	for _, q := range schema {
		if _, err := c.db.Exec(q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	c.schemaReady = true
	return nil
}

// stmt returns the cached statement, preparing it on first use
func (c *conn) stmt(kind stmtKind) (*sqlx.Stmt, error) {
	if st, ok := c.stmts[kind]; ok {
		return st, nil
	}
	st, err := c.db.Preparex(queries[kind])
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", kind, err)
	}
	log.Printf("[DEBUG] prepared %s for %s", kind, c.path)
	c.stmts[kind] = st
	return st, nil
}

// query runs a read statement and collects the single text column of every row
func (c *conn) query(kind stmtKind, args ...any) ([]string, error) {
	if err := c.open(); err != nil {
		return []string{}, err
	}
	st, err := c.stmt(kind)
	if err != nil {
		return []string{}, err
	}
	res := []string{}
	if err := st.Select(&res, args...); err != nil {
		return []string{}, fmt.Errorf("query %s: %w", kind, err)
	}
	return res, nil
}

// exec runs a write statement
func (c *conn) exec(kind stmtKind, args ...any) error {
	if err := c.open(); err != nil {
		return err
	}
	st, err := c.stmt(kind)
	if err != nil {
		return err
	}
	if _, err := st.Exec(args...); err != nil {
		return fmt.Errorf("exec %s: %w", kind, err)
	}
	return nil
}

// clear removes all records and recreates the schema, leaving an empty store
func (c *conn) clear() error {
	if err := c.exec(stmtDeleteAll); err != nil {
		return err
	}
	c.schemaReady = false
	return c.ensureSchema()
}

// release finalizes cached statements and closes the connection. Safe to call if not opened.
func (c *conn) release() error {
	if c.db == nil {
		return nil
	}
	var errs []error
	for kind, st := range c.stmts {
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", kind, err))
		}
	}
	c.stmts = nil
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	c.db = nil
	log.Printf("[DEBUG] closed %s", c.path)
	if len(errs) > 0 {
		return fmt.Errorf("release %s: %w", c.path, errors.Join(errs...))
	}
	return nil
}
