// Package dump makes a snapshot of all jobs kept by a store and loads a snapshot back.
// Snapshots are stored as YAML.
package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/go-pkgz/syncs"
	"gopkg.in/yaml.v3"

	"github.com/umputun/jobkeep/app/store"
)

// Snapshot is a full copy of stored queues
type Snapshot struct {
	Queues []Queue `yaml:"queues" json:"queues" jsonschema:"description=stored queues"`
}

// Queue keeps serialized jobs of a single queue in storage order
type Queue struct {
	Name string `yaml:"name" json:"name" jsonschema:"required,minLength=1,description=queue name"`
	Jobs []Job  `yaml:"jobs" json:"jobs" jsonschema:"description=jobs in storage order"`
}

// Job is a serialized job. TaskID is optional, made from the queue name and position if empty.
type Job struct {
	TaskID string `yaml:"task_id,omitempty" json:"task_id,omitempty" jsonschema:"description=task id unique within the queue"`
	Info   string `yaml:"info" json:"info" jsonschema:"description=opaque serialized job"`
}

// Restorer reads stored jobs, implemented by store.Store
type Restorer interface {
	RestoreQueueNames() ([]string, error)
	RestoreJobs(queueName string) ([]string, error)
}

// Writer saves jobs, implemented by store.Store
type Writer interface {
	Put(queueName, taskID, jobInfo string) <-chan error
}

// ImportParams defines retry of failed writes on import. Attempts <= 1 means no retries.
type ImportParams struct {
	Attempts int
	Duration time.Duration
	Factor   float64
}

// Count returns total number of jobs in the snapshot
func (s Snapshot) Count() (res int) {
	for _, q := range s.Queues {
		res += len(q.Jobs)
	}
	return res
}

// Export restores all queues with up to concurrency queues read in parallel.
// Queues are sorted by name.
func Export(r Restorer, concurrency int) (Snapshot, error) {
	names, err := r.RestoreQueueNames()
	if err != nil {
		return Snapshot{}, fmt.Errorf("can't restore queue names: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var lock sync.Mutex
	var errs []error
	res := Snapshot{Queues: make([]Queue, 0, len(names))}
	gr := syncs.NewSizedGroup(concurrency)
	for _, name := range names {
		gr.Go(func(context.Context) {
			infos, err := r.RestoreJobs(name)
			lock.Lock()
			defer lock.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("can't restore jobs for %q: %w", name, err))
				return
			}
			q := Queue{Name: name, Jobs: make([]Job, 0, len(infos))}
			for _, info := range infos {
				q.Jobs = append(q.Jobs, Job{Info: info})
			}
			res.Queues = append(res.Queues, q)
		})
	}
	gr.Wait()
	if len(errs) > 0 {
		return Snapshot{}, errors.Join(errs...)
	}

	sort.Slice(res.Queues, func(i, j int) bool { return res.Queues[i].Name < res.Queues[j].Name })
	log.Printf("[DEBUG] exported %d queues, %d jobs", len(res.Queues), res.Count())
	return res, nil
}

// Import verifies the snapshot and writes all its jobs one by one, waiting for each write.
// A failed write is retried as set by params. Returns number of jobs written.
func Import(ctx context.Context, w Writer, snap Snapshot, params ImportParams) (int, error) {
	if err := validateImportParams(params); err != nil {
		return 0, fmt.Errorf("invalid import params: %w", err)
	}
	if err := Verify(snap); err != nil {
		return 0, err
	}

	attempts := params.Attempts
	if attempts < 1 {
		attempts = 1
	}
	rptr := repeater.New(&strategy.Backoff{Repeats: attempts, Duration: params.Duration, Factor: params.Factor})

	count := 0
	for _, q := range snap.Queues {
		taskIDs := makeTaskIDs(q)
		for i, job := range q.Jobs {
			taskID := taskIDs[i]
			err := rptr.Do(ctx, func() error {
				return <-w.Put(q.Name, taskID, job.Info)
			}, store.ErrClosed, store.ErrEmptyKey)
			if err != nil {
				return count, fmt.Errorf("can't import %s/%s: %w", q.Name, taskID, err)
			}
			count++
		}
	}
	log.Printf("[DEBUG] imported %d jobs", count)
	return count, nil
}

// makeTaskIDs returns task id for every job of the queue. Jobs without an id get <queue>-<n>,
// with n starting at the job position and bumped past ids taken by other jobs of the queue.
func makeTaskIDs(q Queue) []string {
	taken := make(map[string]bool, len(q.Jobs))
	for _, job := range q.Jobs {
		if job.TaskID != "" {
			taken[job.TaskID] = true
		}
	}

	res := make([]string, len(q.Jobs))
	for i, job := range q.Jobs {
		if job.TaskID != "" {
			res[i] = job.TaskID
			continue
		}
		n := i + 1
		id := fmt.Sprintf("%s-%d", q.Name, n)
		for taken[id] {
			n++
			id = fmt.Sprintf("%s-%d", q.Name, n)
		}
		taken[id] = true
		res[i] = id
	}
	return res
}

// Write encodes snapshot as YAML
func Write(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("can't encode snapshot: %w", err)
	}
	return enc.Close()
}

// Read decodes YAML snapshot. Empty input makes an empty snapshot.
func Read(r io.Reader) (Snapshot, error) {
	res := Snapshot{}
	if err := yaml.NewDecoder(r).Decode(&res); err != nil {
		if errors.Is(err, io.EOF) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("can't decode snapshot: %w", err)
	}
	return res, nil
}
