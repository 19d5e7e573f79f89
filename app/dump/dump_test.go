package dump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/jobkeep/app/store"
	"github.com/umputun/jobkeep/app/store/mocks"
)

func TestExportImport(t *testing.T) {
	src, err := store.New(store.Params{BaseDir: t.TempDir(), Name: "src"})
	require.NoError(t, err)
	defer src.Close()

	src.Put("sms", "t1", `{"to":"123"}`)
	src.Put("emails", "t1", `{"a":1}`)
	src.Put("emails", "t2", `{"b":2}`)
	require.NoError(t, <-src.Put("emails", "t1", `{"a":2}`))

	snap, err := Export(src, 4)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Queues: []Queue{
		{Name: "emails", Jobs: []Job{{Info: `{"b":2}`}, {Info: `{"a":2}`}}},
		{Name: "sms", Jobs: []Job{{Info: `{"to":"123"}`}}},
	}}, snap)
	assert.Equal(t, 3, snap.Count())

	buf := bytes.Buffer{}
	require.NoError(t, Write(&buf, snap))
	t.Log(buf.String())
	assert.Contains(t, buf.String(), "name: emails")

	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	dst, err := store.New(store.Params{BaseDir: t.TempDir(), Name: "dst"})
	require.NoError(t, err)
	defer dst.Close()

	n, err := Import(context.Background(), dst, loaded, ImportParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	names, err := dst.RestoreQueueNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"emails", "sms"}, names)
	jobs, err := dst.RestoreJobs("emails")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"b":2}`, `{"a":2}`}, jobs)

	// importing the same snapshot again replaces records with the same generated task ids
	n, err = Import(context.Background(), dst, loaded, ImportParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	jobs, err = dst.RestoreJobs("emails")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestExport_Empty(t *testing.T) {
	s, err := store.New(store.Params{BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	snap, err := Export(s, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.Queues)
	assert.Equal(t, 0, snap.Count())
}

func TestExport_Errors(t *testing.T) {
	t.Run("queue names", func(t *testing.T) {
		p := &mocks.PersisterMock{
			RestoreQueueNamesFunc: func() ([]string, error) { return []string{}, errors.New("db failed") },
		}
		_, err := Export(p, 2)
		assert.EqualError(t, err, "can't restore queue names: db failed")
	})

	t.Run("jobs", func(t *testing.T) {
		p := &mocks.PersisterMock{
			RestoreQueueNamesFunc: func() ([]string, error) { return []string{"q1", "q2"}, nil },
			RestoreJobsFunc: func(queueName string) ([]string, error) {
				if queueName == "q2" {
					return []string{}, errors.New("db failed")
				}
				return []string{"j1"}, nil
			},
		}
		_, err := Export(p, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `can't restore jobs for "q2"`)
		assert.Len(t, p.RestoreJobsCalls(), 2)
	})
}

func TestImport_Retry(t *testing.T) {
	failures := 2
	p := &mocks.PersisterMock{
		PutFunc: func(queueName, taskID, jobInfo string) <-chan error {
			ch := make(chan error, 1)
			if failures > 0 {
				failures--
				ch <- errors.New("database is locked")
			}
			close(ch)
			return ch
		},
	}

	snap := Snapshot{Queues: []Queue{{Name: "q1", Jobs: []Job{{TaskID: "custom", Info: "j1"}, {Info: "j2"}}}}}

	n, err := Import(context.Background(), p, snap, ImportParams{Attempts: 3, Duration: time.Millisecond, Factor: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	calls := p.PutCalls()
	require.Len(t, calls, 4, "first job written on 3rd attempt, second job on the first")
	assert.Equal(t, "custom", calls[0].TaskID)
	assert.Equal(t, "custom", calls[2].TaskID)
	assert.Equal(t, "q1-2", calls[3].TaskID)
	assert.Equal(t, "j2", calls[3].JobInfo)
}

func TestImport_Failures(t *testing.T) {
	t.Run("attempts exhausted", func(t *testing.T) {
		p := &mocks.PersisterMock{
			PutFunc: func(queueName, taskID, jobInfo string) <-chan error {
				ch := make(chan error, 1)
				ch <- errors.New("disk full")
				close(ch)
				return ch
			},
		}
		snap := Snapshot{Queues: []Queue{{Name: "q1", Jobs: []Job{{Info: "j1"}}}}}
		n, err := Import(context.Background(), p, snap, ImportParams{Attempts: 2, Duration: time.Millisecond})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't import q1/q1-1")
		assert.Equal(t, 0, n)
		assert.Len(t, p.PutCalls(), 2)
	})

	t.Run("closed store not retried", func(t *testing.T) {
		s, err := store.New(store.Params{BaseDir: t.TempDir()})
		require.NoError(t, err)
		require.NoError(t, s.Close())

		snap := Snapshot{Queues: []Queue{{Name: "q1", Jobs: []Job{{Info: "j1"}}}}}
		_, err = Import(context.Background(), s, snap, ImportParams{Attempts: 5, Duration: time.Second})
		assert.ErrorIs(t, err, store.ErrClosed)
	})

	t.Run("queue without name", func(t *testing.T) {
		p := &mocks.PersisterMock{}
		snap := Snapshot{Queues: []Queue{{Name: "q1"}, {Name: "", Jobs: []Job{{Info: "j1"}}}}}
		_, err := Import(context.Background(), p, snap, ImportParams{})
		assert.EqualError(t, err, "snapshot validation failed: queue 2: name is required")
		assert.Empty(t, p.PutCalls())
	})

	t.Run("invalid params", func(t *testing.T) {
		p := &mocks.PersisterMock{}
		snap := Snapshot{Queues: []Queue{{Name: "q1", Jobs: []Job{{Info: "j1"}}}}}
		_, err := Import(context.Background(), p, snap, ImportParams{Attempts: 101})
		assert.EqualError(t, err, "invalid import params: attempts must be between 1 and 100")
		assert.Empty(t, p.PutCalls())
	})
}

func TestImport_GeneratedIDs(t *testing.T) {
	s, err := store.New(store.Params{BaseDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	snap := Snapshot{Queues: []Queue{{Name: "q", Jobs: []Job{
		{TaskID: "q-2", Info: "explicit"},
		{Info: "generated"},
		{Info: "another"},
		{TaskID: "q-4", Info: "explicit2"},
	}}}}
	n, err := Import(context.Background(), s, snap, ImportParams{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	jobs, err := s.RestoreJobs("q")
	require.NoError(t, err)
	assert.Equal(t, []string{"explicit", "generated", "another", "explicit2"}, jobs, "generated ids never replace explicit ones")

	assert.Equal(t, []string{"q-2", "q-3", "q-5", "q-4"}, makeTaskIDs(snap.Queues[0]))
}

func TestRead(t *testing.T) {
	tbl := []struct {
		inp     string
		res     Snapshot
		wantErr bool
	}{
		{"", Snapshot{}, false},
		{"queues:\n  - name: q1\n    jobs:\n      - info: j1\n      - task_id: t2\n        info: j2\n",
			Snapshot{Queues: []Queue{{Name: "q1", Jobs: []Job{{Info: "j1"}, {TaskID: "t2", Info: "j2"}}}}}, false},
		{"queues: {bad", Snapshot{}, true},
	}

	for i, tt := range tbl {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			res, err := Read(strings.NewReader(tt.inp))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.res, res)
		})
	}
}
