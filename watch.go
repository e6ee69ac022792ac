package playbill

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/playbill/playbill/pkg/errors"
	"github.com/playbill/playbill/pkg/logging"
)

// watcher re-emits change events when another process rewrites the backing
// file. The store directory is watched rather than the file itself because
// atomic writes replace the file via rename, which would otherwise drop the
// watch.
type watcher struct {
	path    string
	fs      *fsnotify.Watcher
	done    chan struct{}
	stopped sync.Once
}

// Watch implements Client. It runs until the context is canceled or Close
// is called. Requires WithWatchPath.
func (c *client) Watch(ctx context.Context) error {
	if c.config.watchPath == "" {
		return errors.NewConfigError("watch", "no watch path configured", nil)
	}

	storeID, err := c.resolveStore(ctx)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", c.config.watchPath, err)
	}
	if err := fsw.Add(filepath.Dir(c.config.watchPath)); err != nil {
		fsw.Close()
		return errors.WrapIO("watch", c.config.watchPath, err)
	}

	w := &watcher{
		path: c.config.watchPath,
		fs:   fsw,
		done: make(chan struct{}),
	}
	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()

	logging.Ctx(ctx).Info().Str("path", w.path).Msg("watching backing file for external writes")

	go w.run(ctx, func() {
		c.hooks.emitChanged(storeID)
	})
	return nil
}

// run forwards write and rename events on the watched path until stopped.
func (w *watcher) run(ctx context.Context, onChange func()) {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Ctx(ctx).Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("backing file changed externally")
			onChange()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Ctx(ctx).Warn().Err(err).Msg("file watcher error")
		}
	}
}

// stop shuts the watcher down. Safe to call more than once.
func (w *watcher) stop() error {
	var err error
	w.stopped.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
