package lazy

import "sync"

// Memo is an install-once map: the first value stored for a key wins.
// Negative results are cached like positive ones; store them as values.
type Memo[K comparable, V any] struct {
	m sync.Map
}

// Get returns the memoized value for key, computing it on first use.
func (m *Memo[K, V]) Get(key K, compute func(K) V) V {
	if v, ok := m.m.Load(key); ok {
		return v.(V)
	}
	v, _ := m.m.LoadOrStore(key, compute(key))
	return v.(V)
}

// Peek returns the memoized value without computing it.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	v, ok := m.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Len counts memoized keys.
func (m *Memo[K, V]) Len() int {
	n := 0
	m.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
