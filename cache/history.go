package cache

import (
	"sync"

	"farm-hub/entities"
)

// Point is one downsampled or projected sample of a single signal.
// Timestamps become fractional after chunk averaging.
type Point struct {
	Timestamp float64 `json:"timestamp" msgpack:"timestamp"`
	Value     float64 `json:"value" msgpack:"value"`
}

type unitBuffer struct {
	pending  []entities.Reading // appended since the last successful flush
	retained []entities.Reading // rolling in-memory window
}

// HistoryStore keeps per-field-unit reading history in memory. The pending
// segment feeds the periodic flush to the durable store; the retained window
// backs downsample-on-read and is FIFO-trimmed once it grows past
// maxRetained samples.
type HistoryStore struct {
	mu          sync.RWMutex
	units       map[string]*unitBuffer
	maxRetained int
	keepOnTrim  int
}

func NewHistoryStore(maxRetained, keepOnTrim int) *HistoryStore {
	return &HistoryStore{
		units:       make(map[string]*unitBuffer),
		maxRetained: maxRetained,
		keepOnTrim:  keepOnTrim,
	}
}

// Append records one reading for a unit, trimming the retained window to the
// most recent keepOnTrim samples once it exceeds maxRetained.
func (s *HistoryStore) Append(espID string, r entities.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.units[espID]
	if !ok {
		buf = &unitBuffer{}
		s.units[espID] = buf
	}
	buf.pending = append(buf.pending, r)
	buf.retained = append(buf.retained, r)
	if len(buf.retained) > s.maxRetained {
		trimmed := make([]entities.Reading, s.keepOnTrim)
		copy(trimmed, buf.retained[len(buf.retained)-s.keepOnTrim:])
		buf.retained = trimmed
	}
}

// Current returns the most recent reading for a unit.
func (s *HistoryStore) Current(espID string) (entities.Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.units[espID]
	if !ok || len(buf.retained) == 0 {
		return entities.Reading{}, false
	}
	return buf.retained[len(buf.retained)-1], true
}

// Pending returns a copy of the not-yet-flushed segment for a unit.
func (s *HistoryStore) Pending(espID string) []entities.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.units[espID]
	if !ok || len(buf.pending) == 0 {
		return nil
	}
	out := make([]entities.Reading, len(buf.pending))
	copy(out, buf.pending)
	return out
}

// PendingUnits lists units that currently have readings awaiting flush.
func (s *HistoryStore) PendingUnits() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.units))
	for id, buf := range s.units {
		if len(buf.pending) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Commit drops the first n pending readings of a unit after they have been
// durably stored. Readings appended while the flush was in flight stay
// pending; a failed flush simply never commits.
func (s *HistoryStore) Commit(espID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.units[espID]
	if !ok {
		return
	}
	if n >= len(buf.pending) {
		buf.pending = nil
		return
	}
	buf.pending = append([]entities.Reading(nil), buf.pending[n:]...)
}

// Retained returns a copy of the rolling window for a unit.
func (s *HistoryStore) Retained(espID string) []entities.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.units[espID]
	if !ok {
		return nil
	}
	out := make([]entities.Reading, len(buf.retained))
	copy(out, buf.retained)
	return out
}

// Stats reports buffer occupancy for the operational endpoint.
func (s *HistoryStore) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending, retained := 0, 0
	for _, buf := range s.units {
		pending += len(buf.pending)
		retained += len(buf.retained)
	}
	return map[string]interface{}{
		"total_units":      len(s.units),
		"pending_readings": pending,
		"retained_window":  retained,
		"max_retained":     s.maxRetained,
		"keep_on_trim":     s.keepOnTrim,
	}
}

// Downsample collapses a series into roughly targetCount chunk means of one
// signal. Chunks are floor(len/targetCount) consecutive readings; the
// trailing partial chunk is dropped, which graph consumers rely on for even
// bucket widths. A missing sample counts as zero inside its chunk.
func Downsample(series []entities.Reading, targetCount int, signal string) []Point {
	if len(series) == 0 || targetCount <= 0 {
		return nil
	}
	chunkSize := len(series) / targetCount
	if chunkSize < 1 {
		chunkSize = 1
	}

	result := make([]Point, 0, targetCount)
	for i := 0; i+chunkSize <= len(series); i += chunkSize {
		chunk := series[i : i+chunkSize]

		var valueSum, tsSum float64
		for _, r := range chunk {
			if v := r.Signal(signal); v != nil {
				valueSum += float64(*v)
			}
			tsSum += float64(r.Timestamp)
		}
		result = append(result, Point{
			Timestamp: tsSum / float64(len(chunk)),
			Value:     valueSum / float64(len(chunk)),
		})
	}
	return result
}
