package services

import (
	"log"
	"time"

	"farm-hub/cache"
	"farm-hub/repositories"
)

// Flusher periodically moves pending readings from the in-memory history
// buffer to the durable store. A failed flush leaves the unit's pending
// segment in place so the next cycle retries it along with whatever
// accumulated meanwhile; duplicates toward the store are possible when a
// flush fails partway through.
type Flusher struct {
	store    *cache.HistoryStore
	repo     repositories.HistoryRepository
	interval time.Duration
	stop     chan struct{}
}

func NewFlusher(store *cache.HistoryStore, repo repositories.HistoryRepository, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Flusher{
		store:    store,
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (f *Flusher) Start() {
	ticker := time.NewTicker(f.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.Flush()
			case <-f.stop:
				return
			}
		}
	}()
}

func (f *Flusher) Stop() {
	close(f.stop)
}

// Flush drains every unit's pending segment into the durable store,
// committing only what was written.
func (f *Flusher) Flush() {
	units := f.store.PendingUnits()
	if len(units) == 0 {
		return
	}

	total := 0
	for _, espID := range units {
		batch := f.store.Pending(espID)
		failed := false
		for i, r := range batch {
			if err := f.repo.Append(espID, r); err != nil {
				log.Printf("flush: append failed for %s after %d/%d readings, keeping segment for retry: %v",
					espID, i, len(batch), err)
				failed = true
				break
			}
		}
		if failed {
			continue
		}
		f.store.Commit(espID, len(batch))
		total += len(batch)
	}
	if total > 0 {
		log.Printf("flush: stored %d readings from %d units", total, len(units))
	}
}
