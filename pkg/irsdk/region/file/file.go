// Package file provides a platform backed by a dump of the shared memory
// region. The dump is reloaded when the file changes.
package file

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/irtelemetry/log"
	"github.com/mpapenbr/irtelemetry/pkg/irsdk"
)

type Platform struct {
	path  string
	ctx   context.Context
	watch bool
	l     *log.Logger
}

var _ irsdk.Platform = (*Platform)(nil)

type Option func(*Platform)

// WithWatch reloads the dump on changes until ctx is done
func WithWatch(ctx context.Context) Option {
	return func(p *Platform) {
		p.ctx = ctx
		p.watch = true
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Platform) {
		p.l = l
	}
}

func New(path string, opts ...Option) *Platform {
	ret := &Platform{
		path: path,
		ctx:  context.Background(),
		l:    log.Default().Named("irsdk.file"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// OpenRegion loads the dump file. The name is ignored, a dump holds exactly
// one region.
func (p *Platform) OpenRegion(name string) (irsdk.Region, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("open region %s: %w", name, err)
	}
	r := &Region{data: data, revision: 1, l: p.l}
	if p.watch {
		ctx, cancel := context.WithCancel(p.ctx)
		r.cancel = cancel
		if err := r.watchAndReload(ctx, p.path); err != nil {
			cancel()
			return nil, err
		}
	}
	return r, nil
}

// OpenSignal always succeeds, dumps carry no readiness signal.
func (p *Platform) OpenSignal(name string) (irsdk.Signal, error) {
	return nopSignal{}, nil
}

type nopSignal struct{}

func (nopSignal) Close() error { return nil }

type Region struct {
	mu       sync.RWMutex
	data     []byte
	revision uint64
	cancel   context.CancelFunc
	l        *log.Logger
}

func (r *Region) Bytes() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// Revision is incremented on every successful reload
func (r *Region) Revision() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

func (r *Region) Close() error {
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

func (r *Region) reload(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.l.Error("could not reload dump", log.String("file", path), log.ErrorField(err))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	r.revision++
}

func (r *Region) watchAndReload(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				r.l.Debug("context done, stopping dump reload")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write ||
					event.Op&fsnotify.Create == fsnotify.Create {

					r.l.Info("dump changed, reloading", log.String("file", event.Name))
					r.reload(path)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				r.l.Error("watcher error", log.ErrorField(err))
			}
		}
	}()
	return nil
}
