package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/go-pkgz/lgr"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jobkeep/app/dump"
	"github.com/umputun/jobkeep/app/store"
)

type options struct {
	Dir      string `short:"d" long:"dir" env:"JOBKEEP_DIR" description:"base data directory, user config dir if not set"`
	Name     string `short:"n" long:"name" env:"JOBKEEP_NAME" default:"persister" description:"store name"`
	KeepOpen bool   `long:"keep-open" env:"JOBKEEP_KEEP_OPEN" description:"keep db connection open between operations"`
	Dbg      bool   `long:"dbg" env:"JOBKEEP_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"jobkeep.log" description:"file name to log to"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files to retain"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to retain old log files"`
		EnabledCompress bool   `long:"enabled-compress" env:"ENABLED_COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBKEEP_LOG"`

	Queues struct{} `command:"queues" description:"list queue names"`

	Jobs struct {
		Args struct {
			Queue string `positional-arg-name:"queue" required:"yes"`
		} `positional-args:"yes"`
	} `command:"jobs" description:"list serialized jobs of a queue"`

	Put struct {
		Args struct {
			Queue   string `positional-arg-name:"queue" required:"yes"`
			TaskID  string `positional-arg-name:"task" required:"yes"`
			JobInfo string `positional-arg-name:"job" required:"yes"`
		} `positional-args:"yes"`
	} `command:"put" description:"save serialized job, replaces job with the same queue and task"`

	Remove struct {
		Args struct {
			Queue  string `positional-arg-name:"queue" required:"yes"`
			TaskID string `positional-arg-name:"task" required:"yes"`
		} `positional-args:"yes"`
	} `command:"remove" description:"remove job"`

	Clear struct{} `command:"clear" description:"remove all jobs"`

	Export struct {
		File        string `short:"f" long:"file" description:"snapshot file, stdout if not set"`
		Concurrency int    `short:"c" long:"concurrency" default:"4" description:"queues restored in parallel"`
	} `command:"export" description:"save all jobs to yaml snapshot"`

	Import struct {
		File     string        `short:"f" long:"file" required:"yes" description:"snapshot file"`
		Attempts int           `long:"attempts" default:"1" description:"how many times to try a failed write, 1-100"`
		Duration time.Duration `long:"duration" default:"100ms" description:"initial retry delay, 1ms-1h"`
		Factor   float64       `long:"factor" default:"2" description:"retry backoff factor, 1.0-10.0"`
	} `command:"import" description:"load jobs from yaml snapshot"`

	Info struct{} `command:"info" description:"show store location, size and content summary"`
}

var opts options

var revision = "unknown"

func main() {
	p := flags.NewParser(&opts, flags.Default)
	if _, err := p.Parse(); err != nil {
		os.Exit(2)
	}
	setupLogs()
	log.Printf("[DEBUG] jobkeep %s, command %s", revision, p.Active.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals(cancel)

	st, err := store.New(store.Params{BaseDir: opts.Dir, Name: opts.Name, KeepOpen: opts.KeepOpen})
	if err != nil {
		log.Printf("[ERROR] can't make store, %v", err)
		os.Exit(1)
	}

	runErr := run(ctx, st, p.Active.Name, os.Stdout)
	if err := st.Close(); err != nil {
		log.Printf("[WARN] can't close store, %v", err)
	}
	if runErr != nil {
		log.Printf("[ERROR] %s failed, %v", p.Active.Name, runErr)
		os.Exit(1)
	}
}

// run executes the command against the store and prints results to out
func run(ctx context.Context, st *store.Store, cmd string, out io.Writer) error {
	switch cmd {
	case "queues":
		names, err := st.RestoreQueueNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil

	case "jobs":
		jobs, err := st.RestoreJobs(opts.Jobs.Args.Queue)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			fmt.Fprintln(out, job)
		}
		return nil

	case "put":
		a := opts.Put.Args
		return wait(ctx, st.Put(a.Queue, a.TaskID, a.JobInfo))

	case "remove":
		a := opts.Remove.Args
		return wait(ctx, st.Remove(a.Queue, a.TaskID))

	case "clear":
		return wait(ctx, st.ClearAll())

	case "export":
		return export(st, out)

	case "import":
		return importSnapshot(ctx, st)

	case "info":
		return info(st, out)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// wait for write result or context cancellation
func wait(ctx context.Context, res <-chan error) error {
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func export(st *store.Store, out io.Writer) (err error) {
	snap, err := dump.Export(st, opts.Export.Concurrency)
	if err != nil {
		return err
	}

	if opts.Export.File != "" {
		fh, e := os.Create(opts.Export.File)
		if e != nil {
			return fmt.Errorf("can't create %s: %w", opts.Export.File, e)
		}
		defer func() {
			if e := fh.Close(); e != nil && err == nil {
				err = fmt.Errorf("can't close %s: %w", opts.Export.File, e)
			}
		}()
		out = fh
	}

	if err := dump.Write(out, snap); err != nil {
		return err
	}
	log.Printf("[INFO] exported %d queues, %d jobs", len(snap.Queues), snap.Count())
	return nil
}

func importSnapshot(ctx context.Context, st *store.Store) error {
	fh, err := os.Open(opts.Import.File)
	if err != nil {
		return fmt.Errorf("can't open %s: %w", opts.Import.File, err)
	}
	defer fh.Close() // nolint

	snap, err := dump.Read(fh)
	if err != nil {
		return err
	}
	n, err := dump.Import(ctx, st, snap, dump.ImportParams{Attempts: opts.Import.Attempts,
		Duration: opts.Import.Duration, Factor: opts.Import.Factor})
	if err != nil {
		return err
	}
	log.Printf("[INFO] imported %d jobs from %s", n, opts.Import.File)
	return nil
}

// info prints store summary. Missing db file is reported as an empty store and not created.
func info(st *store.Store, out io.Writer) error {
	fi, err := os.Stat(st.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("can't stat %s: %w", st.Path(), err)
	}

	names, total := []string{}, 0
	if fi != nil {
		if names, err = st.RestoreQueueNames(); err != nil {
			return err
		}
		for _, name := range names {
			jobs, err := st.RestoreJobs(name)
			if err != nil {
				return err
			}
			total += len(jobs)
		}
	}

	fmt.Fprintf(out, "path:   %s\n", st.Path())
	if fi != nil {
		fmt.Fprintf(out, "size:   %s\n", humanize.Bytes(uint64(fi.Size()))) //nolint:gosec // file size is never negative
	} else {
		fmt.Fprintln(out, "size:   not created")
	}
	if usage, err := disk.Usage(filepath.Dir(st.Path())); err == nil {
		fmt.Fprintf(out, "free:   %s of %s\n", humanize.Bytes(usage.Free), humanize.Bytes(usage.Total))
	} else {
		log.Printf("[WARN] can't get disk usage, %v", err)
	}
	fmt.Fprintf(out, "queues: %d\n", len(names))
	fmt.Fprintf(out, "jobs:   %d\n", total)
	return nil
}

// setupLogs configures lgr and returns the writer logs go to
func setupLogs() io.Writer {
	var out io.Writer = os.Stderr
	if opts.Log.Enabled {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
	}

	if opts.Dbg {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return out
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
	return out
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Fprintln(os.Stderr, string(stacktrace[:length]))
				continue
			}
			cancel() // terminate on SIGINT/SIGTERM
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
