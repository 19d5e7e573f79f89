package store

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/go-pkgz/lgr"
)

//go:generate moq -out mocks/persister.go -pkg mocks -skip-ensure -fmt goimports . Persister

// Persister defines the capability contract used by a job scheduler to save and restore queued jobs.
// Job info is an opaque serialized job, never parsed by the persister.
type Persister interface {
	RestoreQueueNames() ([]string, error)
	RestoreJobs(queueName string) ([]string, error)
	Put(queueName, taskID, jobInfo string) <-chan error
	Remove(queueName, taskID string) <-chan error
	ClearAll() <-chan error
}

var (
	// ErrClosed returned for operations submitted after Close
	ErrClosed = errors.New("store closed")
	// ErrEmptyKey returned when queue name or task id is empty
	ErrEmptyKey = errors.New("empty queue name or task id")
)

// Params defines store configuration
type Params struct {
	Name      string // db name, DefaultName if empty
	BaseDir   string // application data dir, user config dir if empty
	KeepOpen  bool   // keep connection and compiled statements until Close
	QueueSize int    // capacity of the pending operations queue, 1000 if not set
}

// Store persists job records in a SQLite file. All file access happens on a single worker
// goroutine, operations are applied in submission order. Thread safe.
type Store struct {
	path     string
	keepOpen bool

	reqCh  chan request
	done   chan struct{}
	lock   sync.RWMutex // protects closed and sending to reqCh
	closed bool

	conn     *conn // owned by the worker goroutine
	closeErr error // set by the worker before done is closed
}

// request is a single operation executed by the worker
type request struct {
	op    string
	run   func(c *conn) error
	errCh chan error // buffered, gets exactly one value and closed
}

// Ensure Store implements Persister
var _ Persister = (*Store)(nil)

// New makes a store for <base dir>/sqlite/<name>.db and creates missing directories.
// The db file is not opened until the first operation.
func New(params Params) (*Store, error) {
	path, err := makePath(params.BaseDir, params.Name)
	if err != nil {
		return nil, err
	}
	if params.QueueSize <= 0 {
		params.QueueSize = 1000
	}

	res := &Store{
		path:     path,
		keepOpen: params.KeepOpen,
		reqCh:    make(chan request, params.QueueSize),
		done:     make(chan struct{}),
		conn:     &conn{path: path},
	}
	go res.run()
	log.Printf("[DEBUG] store created, %s", res)
	return res, nil
}

// RestoreQueueNames returns all distinct queue names. Empty store returns an empty list.
// On failure the error is logged and returned along with an empty list.
func (s *Store) RestoreQueueNames() ([]string, error) {
	var res []string
	err := <-s.submit("restore queue names", func(c *conn) (e error) {
		res, e = c.query(stmtQueueNames)
		return e
	})
	if err != nil {
		return []string{}, err
	}
	return res, nil
}

// RestoreJobs returns serialized jobs of the queue in storage order.
// On failure the error is logged and returned along with an empty list.
func (s *Store) RestoreJobs(queueName string) ([]string, error) {
	if queueName == "" {
		log.Printf("[WARN] restore jobs rejected, %v", ErrEmptyKey)
		return []string{}, ErrEmptyKey
	}
	var res []string
	err := <-s.submit(fmt.Sprintf("restore jobs for %q", queueName), func(c *conn) (e error) {
		res, e = c.query(stmtJobsForQueue, queueName)
		return e
	})
	if err != nil {
		return []string{}, err
	}
	return res, nil
}

// Put saves job info for queueName and taskID, replacing the one stored for the same pair.
// Returns immediately, the result channel gets nil once the record is written.
func (s *Store) Put(queueName, taskID, jobInfo string) <-chan error {
	if queueName == "" || taskID == "" {
		return s.reject("put", ErrEmptyKey)
	}
	return s.submit(fmt.Sprintf("put %s/%s", queueName, taskID), func(c *conn) error {
		return c.exec(stmtInsertOrReplace, queueName, taskID, jobInfo)
	})
}

// Remove deletes the record for queueName and taskID. Missing record is not an error.
func (s *Store) Remove(queueName, taskID string) <-chan error {
	if queueName == "" || taskID == "" {
		return s.reject("remove", ErrEmptyKey)
	}
	return s.submit(fmt.Sprintf("remove %s/%s", queueName, taskID), func(c *conn) error {
		return c.exec(stmtDeleteOne, queueName, taskID)
	})
}

// ClearAll deletes every record and leaves an empty schema.
func (s *Store) ClearAll() <-chan error {
	return s.submit("clear all", func(c *conn) error { return c.clear() })
}

// Close waits for all submitted operations, releases statements and closes the connection.
// Operations submitted after Close fail with ErrClosed. Safe to call multiple times.
func (s *Store) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.reqCh)
	s.lock.Unlock()

	<-s.done
	return s.closeErr
}

// Path returns location of the db file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) String() string {
	return fmt.Sprintf("path:%s, keep-open:%v", s.path, s.keepOpen)
}

// submit queues the operation for the worker. Blocks only if the queue is full.
func (s *Store) submit(op string, run func(c *conn) error) <-chan error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		return s.reject(op, ErrClosed)
	}
	req := request{op: op, run: run, errCh: make(chan error, 1)}
	s.reqCh <- req
	return req.errCh
}

func (s *Store) reject(op string, err error) <-chan error {
	log.Printf("[WARN] %s rejected, %v", op, err)
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}

// run is the worker loop, the only place touching the connection.
// Without KeepOpen the connection is released as soon as the queue is drained.
func (s *Store) run() {
	defer close(s.done)
	for req := range s.reqCh {
		err := req.run(s.conn)
		if err != nil {
			log.Printf("[WARN] %s failed, %v", req.op, err)
		}
		if !s.keepOpen && len(s.reqCh) == 0 {
			if e := s.conn.release(); e != nil {
				log.Printf("[WARN] %v", e)
			}
		}
		req.errCh <- err
		close(req.errCh)
	}
	s.closeErr = s.conn.release()
}
