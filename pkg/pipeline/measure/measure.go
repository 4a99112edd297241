package measure

import (
	"sort"
	"sync"
)

// DefaultMeasure is an in-memory Measure.
type DefaultMeasure struct {
	mu    sync.RWMutex
	Steps map[string]Metric
}

// NewDefaultMeasure creates an empty DefaultMeasure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric registers a step. Registering the same name twice keeps the first metric.
func (m *DefaultMeasure) AddMetric(name string, concurrent int) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Steps[name]; ok {
		return mt
	}

	if concurrent < 1 {
		concurrent = 1
	}

	mt := &DefaultMetric{
		mu:            &sync.Mutex{},
		allTransports: make(map[string]*TransportInfo),
		concurrent:    concurrent,
	}
	m.Steps[name] = mt

	return mt
}

// GetMetric returns the metric of a step, nil if it is unknown.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Steps[name]
}

// AllMetrics returns the metrics keyed by step name.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]Metric, len(m.Steps))
	for name, mt := range m.Steps {
		res[name] = mt
	}

	return res
}

// Names returns the registered step names in lexical order.
func (m *DefaultMeasure) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.Steps))
	for name := range m.Steps {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

var _ Measure = (*DefaultMeasure)(nil)
