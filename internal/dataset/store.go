package dataset

import (
	"sync"

	"github.com/couchcryptid/climate-impact-explorer/internal/domain"
)

// Store is the process-wide session cache of loaded datasets, keyed by
// metric. Writes are first-write-wins: a dataset is populated once by its
// load-completion path and read thereafter. Reload is the only way to replace
// an entry. Loads for different metrics are independent and may land in any
// order; Ready answers correctly whichever completes first.
type Store struct {
	mu       sync.RWMutex
	byMetric map[string]*domain.ClimateDataset
}

// NewStore creates an empty dataset cache.
func NewStore() *Store {
	return &Store{byMetric: make(map[string]*domain.ClimateDataset)}
}

// Put caches a dataset under its metric unless one is already present.
// Returns false when the existing entry was kept.
func (s *Store) Put(ds *domain.ClimateDataset) bool {
	if ds == nil || ds.Metric == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byMetric[ds.Metric]; exists {
		return false
	}
	s.byMetric[ds.Metric] = ds
	return true
}

// Reload replaces the cached dataset for a metric. This is the explicit
// invalidation path; normal operation never overwrites.
func (s *Store) Reload(ds *domain.ClimateDataset) {
	if ds == nil || ds.Metric == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMetric[ds.Metric] = ds
}

// Get returns the cached dataset for a metric, or false when not yet loaded.
func (s *Store) Get(metric string) (*domain.ClimateDataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.byMetric[metric]
	return ds, ok
}

// Ready reports whether both the temperature and precipitation datasets have
// loaded. Country-scoped assessment needs both; global charts may render from
// either one alone via Get.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, hasTemp := s.byMetric[MetricTemperature]
	_, hasPrecip := s.byMetric[MetricPrecipitation]
	return hasTemp && hasPrecip
}
