package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// writeTimeout bounds each background write so a wedged database cannot
// stall the drain on Close.
const writeTimeout = 5 * time.Second

// Writer records label-derived facts asynchronously. The estimate path
// enqueues and returns immediately; a single goroutine drains the queue
// into the store. It implements the pipeline's Upserter contract.
type Writer struct {
	store *Store
	queue chan upsert

	closeOnce sync.Once
	done      chan struct{}
}

type upsert struct {
	code string
	est  *nutrition.Estimate
}

// NewWriter starts the background writer with the given queue depth
// (a small default when <= 0).
func NewWriter(store *Store, queueDepth int) *Writer {
	if queueDepth <= 0 {
		queueDepth = 32
	}
	w := &Writer{
		store: store,
		queue: make(chan upsert, queueDepth),
		done:  make(chan struct{}),
	}
	go w.drain()
	return w
}

// UpsertCode enqueues a write. When the queue is full the write is dropped:
// the caller must never block on storage.
func (w *Writer) UpsertCode(code string, est *nutrition.Estimate) {
	if code == "" || est == nil || est.IsEmpty() {
		return
	}
	select {
	case w.queue <- upsert{code: code, est: est}:
	default:
		slog.Debug("Upsert queue full, dropping write", "code", code)
	}
}

func (w *Writer) drain() {
	defer close(w.done)
	for u := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := w.store.Put(ctx, u.code, u.est); err != nil {
			slog.Debug("Background upsert failed", "code", u.code, "error", err)
		}
		cancel()
	}
}

// Close stops accepting writes, flushes the queue, and waits for the drain
// goroutine to finish.
func (w *Writer) Close() {
	w.closeOnce.Do(func() { close(w.queue) })
	<-w.done
}
