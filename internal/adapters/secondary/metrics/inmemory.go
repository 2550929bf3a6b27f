package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
)

// InMemoryRecorder накапливает метрики в памяти для чтения в тестах
type InMemoryRecorder struct {
	mu           sync.Mutex
	counters     map[string]float64
	observations map[string][]float64
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		counters:     make(map[string]float64),
		observations: make(map[string][]float64),
	}
}

var _ metrics.IRecorder = (*InMemoryRecorder)(nil)

// metricKey ключ "name{k=v,...}" с сортировкой лейблов
func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, labels[k]))
	}
	return name + "{" + strings.Join(pairs, ",") + "}"
}

func (r *InMemoryRecorder) IncrementCounter(name string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[metricKey(name, labels)] += value
}

func (r *InMemoryRecorder) ObserveDuration(name string, seconds float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := metricKey(name, labels)
	r.observations[key] = append(r.observations[key], seconds)
}

// CounterValue возвращает значение счётчика по полному ключу
func (r *InMemoryRecorder) CounterValue(name string, labels map[string]string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[metricKey(name, labels)]
}

// CountersByPrefix возвращает счётчики, чьи ключи начинаются с префикса
func (r *InMemoryRecorder) CountersByPrefix(prefix string) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float64)
	for k, v := range r.counters {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// Observations возвращает записанные длительности по полному ключу
func (r *InMemoryRecorder) Observations(name string, labels map[string]string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	obs := r.observations[metricKey(name, labels)]
	out := make([]float64, len(obs))
	copy(out, obs)
	return out
}

// Reset очищает накопленные метрики
func (r *InMemoryRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = make(map[string]float64)
	r.observations = make(map[string][]float64)
}
