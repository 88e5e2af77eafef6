package loser

import (
	"iter"
)

// Sequence is anything that can be ranged over in sorted order.
type Sequence[E any] interface {
	All() iter.Seq[E]
}

// SeqFunc adapts a plain iterator to a Sequence.
type SeqFunc[E any] iter.Seq[E]

func (f SeqFunc[E]) All() iter.Seq[E] {
	return iter.Seq[E](f)
}

// Merger merges sequences that are each already sorted by less.
type Merger[E any] struct {
	sequences []Sequence[E]
	less      func(a, b E) bool
}

// New returns a merger over sequences. Elements that compare equal are yielded
// in sequence order, and in their original order within a sequence.
func New[E any](sequences []Sequence[E], less func(a, b E) bool) *Merger[E] {
	return &Merger[E]{sequences: sequences, less: less}
}

// All yields the merged elements. Each call restarts every sequence.
func (m *Merger[E]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		if len(m.sequences) == 0 {
			return
		}

		t := &tournament[E]{
			leaves: make([]leaf[E], len(m.sequences)),
			losers: make([]int, len(m.sequences)),
			less:   m.less,
		}
		for i, s := range m.sequences {
			next, stop := iter.Pull(s.All())
			//nolint:gocritic // stopped when the merge returns.
			defer stop()
			t.leaves[i].next = next
			t.leaves[i].advance()
		}

		t.winner = t.play(1)
		for !t.leaves[t.winner].done {
			if !yield(t.leaves[t.winner].head) {
				return
			}
			t.leaves[t.winner].advance()
			t.replay(t.winner)
		}
	}
}

// leaf is the head of one input sequence.
type leaf[E any] struct {
	head E
	done bool
	next func() (E, bool)
}

func (l *leaf[E]) advance() {
	v, ok := l.next()
	l.head, l.done = v, !ok
}

// tournament is a loser tree over k leaves. Node n has children 2n and 2n+1;
// positions k..2k-1 are the leaves and 1..k-1 the internal nodes, each of which
// records the leaf that lost the match played there.
type tournament[E any] struct {
	leaves []leaf[E]
	losers []int
	winner int
	less   func(a, b E) bool
}

// beats reports whether leaf a wins against leaf b. Exhausted leaves lose to
// everything; ties go to the lower leaf.
func (t *tournament[E]) beats(a, b int) bool {
	la, lb := &t.leaves[a], &t.leaves[b]
	switch {
	case la.done || lb.done:
		if la.done != lb.done {
			return lb.done
		}
	case t.less(la.head, lb.head):
		return true
	case t.less(lb.head, la.head):
		return false
	}
	return a < b
}

// play fills in the subtree rooted at pos and returns the leaf that wins it.
func (t *tournament[E]) play(pos int) int {
	k := len(t.leaves)
	if pos >= k {
		return pos - k
	}
	left, right := t.play(2*pos), t.play(2*pos+1)
	if t.beats(left, right) {
		t.losers[pos] = right
		return left
	}
	t.losers[pos] = left
	return right
}

// replay re-runs the matches on the path from leaf w to the root after w's
// head changed.
func (t *tournament[E]) replay(w int) {
	for n := (w + len(t.leaves)) / 2; n > 0; n /= 2 {
		if t.beats(t.losers[n], w) {
			t.losers[n], w = w, t.losers[n]
		}
	}
	t.winner = w
}
