// FILE: lixenwraith/motherboard/memhost/watch.go
package memhost

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// WatchOptions configures values file watching
type WatchOptions struct {
	// Debounce duration to coalesce rapid writes into one reload
	Debounce time.Duration

	// PollInterval for file stat checks when fsnotify is unavailable (minimum 100ms)
	PollInterval time.Duration

	// ReloadTimeout for reading and decoding the file
	ReloadTimeout time.Duration

	// ForcePolling skips fsnotify and always stats the file
	ForcePolling bool

	// VerifyPermissions refuses reloads when group or world permission bits change
	VerifyPermissions bool

	// Buffer of the notification channel
	Buffer int
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:          DefaultDebounce,
		PollInterval:      DefaultPollInterval,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
		Buffer:            16,
	}
}

type fileState struct {
	modTime time.Time
	size    int64
	mode    os.FileMode
	exists  bool
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), mode: info.Mode(), exists: true}
}

// Watch reloads the values file at path whenever it changes and stages every
// changed value on the host, so the next Flush delivers them as one batch. Each
// staged property path is sent on the returned channel, along with the Notify*
// strings for deletions, refused permission changes and failed reloads.
// Notifications are dropped when the channel is full. The channel is closed
// once ctx is done.
func (h *Host) Watch(ctx context.Context, path string, opts WatchOptions) (<-chan string, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	initial := statFile(absPath)
	if !initial.exists {
		return nil, ErrFileNotFound
	}

	var fsw *fsnotify.Watcher
	if !opts.ForcePolling {
		// The directory is watched so that editors replacing the file by rename
		// keep producing events.
		if fsw, err = fsnotify.NewWatcher(); err == nil {
			if err = fsw.Add(filepath.Dir(absPath)); err != nil {
				_ = fsw.Close()
				fsw = nil
			}
		}
		if fsw == nil {
			h.logger.V(1).Info("fsnotify unavailable, polling", "path", absPath, "error", err)
		}
	}

	w := &valuesWatcher{
		host:   h,
		path:   absPath,
		opts:   opts,
		last:   initial,
		out:    make(chan string, opts.Buffer),
		fsw:    fsw,
		logger: h.logger.WithName("watch").WithValues("path", absPath),
	}
	go w.loop(ctx)
	return w.out, nil
}

type valuesWatcher struct {
	host *Host
	path string
	opts WatchOptions
	last fileState
	out  chan string
	fsw  *fsnotify.Watcher

	logger logr.Logger
}

func (w *valuesWatcher) loop(ctx context.Context) {
	defer close(w.out)
	if w.fsw != nil {
		defer w.fsw.Close()
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	var poll <-chan time.Time
	if w.fsw != nil {
		events, errs = w.fsw.Events, w.fsw.Errors
	} else {
		ticker := time.NewTicker(w.opts.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
	}

	debounce := time.NewTimer(w.opts.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove|fsnotify.Chmod) == 0 {
				continue
			}
			debounce.Reset(w.opts.Debounce)

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Error(err, "fsnotify error")

		case <-poll:
			if current := statFile(w.path); current != w.last {
				debounce.Reset(w.opts.Debounce)
			}

		case <-debounce.C:
			w.check(ctx)
		}
	}
}

// check compares the file with its last known state and reloads on change.
func (w *valuesWatcher) check(ctx context.Context) {
	current := statFile(w.path)
	if !current.exists {
		if w.last.exists {
			w.notify(NotifyFileDeleted)
		}
		w.last = current
		return
	}

	if w.opts.VerifyPermissions && w.last.exists && current.mode&0077 != w.last.mode&0077 {
		w.last = current
		w.notify(NotifyPermissionsChanged)
		return
	}

	if current == w.last {
		return
	}
	w.last = current
	w.reload(ctx)
}

func (w *valuesWatcher) reload(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.ReloadTimeout)
	defer cancel()

	type result struct {
		values Values
		err    error
	}
	done := make(chan result, 1)
	go func() {
		values, err := LoadValues(w.path)
		done <- result{values, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			w.notify(NotifyReloadTimeout)
		}
		return
	}
	if res.err != nil {
		w.logger.Error(res.err, "reload failed")
		w.notify(NotifyReloadError)
		return
	}

	changed, err := w.host.ApplyValues(res.values)
	if err != nil {
		w.logger.Error(err, "some values were not applied")
		w.notify(NotifyReloadError)
	}
	w.logger.V(1).Info("values reloaded", "changed", len(changed))
	for _, path := range changed {
		w.notify(path)
	}
}

func (w *valuesWatcher) notify(msg string) {
	select {
	case w.out <- msg:
	default:
	}
}
