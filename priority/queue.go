package priority

import "container/heap"

// item represents an entry in the queue.
type item[K comparable, V any] struct {
	key   K
	value V
	index int
}

// entries is the heap.Interface backing a Queue.
type entries[K comparable, V any] struct {
	items []*item[K, V]
	less  func(a, b V) bool
}

func (e *entries[K, V]) Len() int           { return len(e.items) }
func (e *entries[K, V]) Less(i, j int) bool { return e.less(e.items[i].value, e.items[j].value) }

func (e *entries[K, V]) Swap(i, j int) {
	e.items[i], e.items[j] = e.items[j], e.items[i]
	e.items[i].index = i
	e.items[j].index = j
}

func (e *entries[K, V]) Push(x any) {
	it := x.(*item[K, V])
	it.index = len(e.items)
	e.items = append(e.items, it)
}

func (e *entries[K, V]) Pop() any {
	last := len(e.items) - 1
	it := e.items[last]
	e.items[last] = nil
	e.items = e.items[:last]
	it.index = -1
	return it
}

// Queue is a keyed binary heap. The value for which less reports true against
// every other value sits at the top.
type Queue[K comparable, V any] struct {
	heap    entries[K, V]
	itemMap map[K]*item[K, V]
}

// NewQueue creates a new priority queue with the given comparator.
func NewQueue[K comparable, V any](less func(a, b V) bool) *Queue[K, V] {
	return &Queue[K, V]{
		heap:    entries[K, V]{less: less},
		itemMap: make(map[K]*item[K, V]),
	}
}

// Len returns the number of items in the queue.
func (pq *Queue[K, V]) Len() int {
	return pq.heap.Len()
}

// Get returns the value stored under key.
func (pq *Queue[K, V]) Get(key K) (V, bool) {
	i, exists := pq.itemMap[key]
	if !exists {
		var zero V
		return zero, false
	}
	return i.value, true
}

// Set adds a new key or updates an existing key's value.
func (pq *Queue[K, V]) Set(key K, value V) {
	if i, exists := pq.itemMap[key]; exists {
		i.value = value
		heap.Fix(&pq.heap, i.index)
		return
	}
	i := &item[K, V]{key: key, value: value}
	pq.itemMap[key] = i
	heap.Push(&pq.heap, i)
}

// Remove removes the given key from the queue.
func (pq *Queue[K, V]) Remove(key K) {
	i, exists := pq.itemMap[key]
	if !exists {
		return
	}
	heap.Remove(&pq.heap, i.index)
	delete(pq.itemMap, key)
}

// Peek returns the top item without removing it.
func (pq *Queue[K, V]) Peek() (key K, value V, exists bool) {
	if pq.heap.Len() == 0 {
		return key, value, false
	}
	i := pq.heap.items[0]
	return i.key, i.value, true
}

// Pop removes and returns the top item.
func (pq *Queue[K, V]) Pop() (key K, value V, exists bool) {
	if pq.heap.Len() == 0 {
		return key, value, false
	}
	i := heap.Pop(&pq.heap).(*item[K, V])
	delete(pq.itemMap, i.key)
	return i.key, i.value, true
}

// Drain pops every item and returns the values in priority order.
func (pq *Queue[K, V]) Drain() []V {
	out := make([]V, 0, pq.Len())
	for {
		_, v, ok := pq.Pop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
