package services

import (
	"errors"
	"log"

	"github.com/vmihailenco/msgpack/v5"

	"farm-hub/cache"
	"farm-hub/entities"
	"farm-hub/repositories"
)

var ErrInvalidSignal = errors.New("invalid sensor type requested")

var validSignals = map[string]bool{
	"temperature":   true,
	"humidity":      true,
	"gas_value":     true,
	"soil_moisture": true,
}

// HistoryQueryService serves historical slices of one signal of one field
// unit, reading the durable store first and falling back to the
// not-yet-flushed in-memory segment.
type HistoryQueryService struct {
	repo  repositories.HistoryRepository
	store *cache.HistoryStore
}

func NewHistoryQueryService(repo repositories.HistoryRepository, store *cache.HistoryStore) *HistoryQueryService {
	return &HistoryQueryService{repo: repo, store: store}
}

// Query projects the unit's history onto {timestamp, value} pairs for one
// signal, dropping entries where the signal is absent. The series is
// returned raw, in timestamp order; downsampling happens client-side.
func (s *HistoryQueryService) Query(espID, signal string) ([]cache.Point, error) {
	if !validSignals[signal] {
		return nil, ErrInvalidSignal
	}

	var readings []entities.Reading

	entries, err := s.repo.GetByEspID(espID)
	if err != nil {
		log.Printf("history query: durable read failed for %s, trying in-memory segment: %v", espID, err)
	}
	if err == nil && len(entries) > 0 {
		for _, e := range entries {
			readings = append(readings, e.Reading())
		}
	} else {
		readings = s.store.Pending(espID)
		if len(readings) == 0 && err != nil {
			return nil, err
		}
	}

	points := make([]cache.Point, 0, len(readings))
	for _, r := range readings {
		v := r.Signal(signal)
		if v == nil {
			continue
		}
		points = append(points, cache.Point{
			Timestamp: float64(r.Timestamp),
			Value:     float64(*v),
		})
	}
	return points, nil
}

type historyResponse struct {
	Values []cache.Point `msgpack:"values"`
}

// Encode packs a series into the compact binary transport form
// {values: [...]}.
func Encode(points []cache.Point) ([]byte, error) {
	return msgpack.Marshal(historyResponse{Values: points})
}
