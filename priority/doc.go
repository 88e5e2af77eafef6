// Package priority implements a generic keyed priority queue. Values are kept
// in a binary heap ordered by a user-provided comparison; a map from key to
// heap slot gives O(1) lookups and O(log n) updates and removals.
//
// The less function should return true if a has higher priority than b.
// Inverting it turns the queue into a bounded "keep the best n" buffer: order
// by worst-first, Set every candidate and Pop whenever Len exceeds n.
//
// Basic usage:
//
//	pq := priority.NewQueue[string, int](func(a, b int) bool {
//	    return a < b
//	})
//
//	pq.Set("task1", 5)
//	pq.Set("task2", 3)
//
//	key, value, exists := pq.Peek() // task2, 3, true
//
//	pq.Set("task1", 1) // Updates existing key with new priority
//	pq.Remove("task2")
//
//	values := pq.Drain() // [1]
package priority
