package store

import (
	"context"
	"sync"
	"time"

	"github.com/picogrid/brightfleet/pkg/logger"
	"github.com/picogrid/brightfleet/pkg/models"
)

// AutoSaveStats tracks autosave activity
type AutoSaveStats struct {
	Requested int64
	Written   int64
	Failed    int64
	LastSave  time.Time
	LastError error
}

// AutoSaver writes document snapshots in the background. Only the newest
// pending snapshot is written; older ones it supersedes are dropped. Failed
// writes are logged and not retried.
type AutoSaver struct {
	store   Store
	timeout time.Duration
	log     logger.Logger

	mu       sync.Mutex
	pending  *models.Document
	seq      uint64
	written  uint64
	progress chan struct{}
	stats    AutoSaveStats

	wake     chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAutoSaver creates an autosaver writing to store, each write bounded by timeout.
func NewAutoSaver(store Store, timeout time.Duration) *AutoSaver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AutoSaver{
		store:    store,
		timeout:  timeout,
		log:      logger.WithPrefix("autosave"),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start begins the writer goroutine
func (a *AutoSaver) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ctx.Done():
				a.writePending(context.Background())
				return
			case <-a.stopChan:
				a.writePending(context.Background())
				return
			case <-a.wake:
				a.writePending(ctx)
			}
		}
	}()
}

// Stop writes whatever is still pending and stops the writer.
func (a *AutoSaver) Stop() {
	a.stopOnce.Do(func() { close(a.stopChan) })
	a.wg.Wait()
}

// Save snapshots doc and schedules it for writing. It never blocks on I/O.
func (a *AutoSaver) Save(doc *models.Document) {
	snapshot, err := doc.Clone()
	if err != nil {
		a.log.Errorf("Autosave failed: %v", err)
		return
	}

	a.mu.Lock()
	a.pending = snapshot
	a.seq++
	a.stats.Requested++
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot requested before the call has been
// written or has failed. It returns the error of the last failed write, if
// that write was the final one.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	target := a.seq
	a.mu.Unlock()

	for {
		a.mu.Lock()
		if a.written >= target {
			err := a.stats.LastError
			a.mu.Unlock()
			return err
		}
		progress := a.progress
		a.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stats returns a copy of the current statistics.
func (a *AutoSaver) Stats() AutoSaveStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *AutoSaver) writePending(ctx context.Context) {
	a.mu.Lock()
	doc := a.pending
	target := a.seq
	a.pending = nil
	a.mu.Unlock()

	if doc == nil {
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, a.timeout)
	err := a.store.Save(saveCtx, doc)
	cancel()

	a.mu.Lock()
	a.written = target
	if err != nil {
		a.stats.Failed++
		a.stats.LastError = err
		a.log.Errorf("Autosave failed: %v", err)
	} else {
		a.stats.Written++
		a.stats.LastSave = time.Now()
		a.stats.LastError = nil
		a.log.Debugf("Saved document (%d teams, %d islands)", len(doc.Teams), len(doc.Islands))
	}
	close(a.progress)
	a.progress = make(chan struct{})
	a.mu.Unlock()
}
