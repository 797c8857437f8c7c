package dataset

import "sync"

// memo caches one value per key. Each value is computed at most once, even
// under concurrent first access, and is never invalidated.
type memo[V any] struct {
	mu    sync.Mutex
	cells map[string]*memoCell[V]
}

type memoCell[V any] struct {
	once  sync.Once
	value V
}

// get returns the cached value for key, computing it on first use.
// hit is false only for the caller that ran compute.
func (m *memo[V]) get(key string, compute func() V) (value V, hit bool) {
	m.mu.Lock()
	if m.cells == nil {
		m.cells = make(map[string]*memoCell[V])
	}
	cell, ok := m.cells[key]
	if !ok {
		cell = &memoCell[V]{}
		m.cells[key] = cell
	}
	m.mu.Unlock()

	hit = true
	cell.once.Do(func() {
		cell.value = compute()
		hit = false
	})
	return cell.value, hit
}

// len returns the number of keys seen so far.
func (m *memo[V]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
