// Package loser merges already-sorted sequences with a tournament tree, also
// known as a loser tree, after Bryan Boreham's go-loser.
//
// Every internal node of the tree remembers the sequence that lost the match
// played there, so advancing the winner only replays the matches on its path to
// the root: one comparison per level, O(log k) per element for k sequences.
//
//	m := loser.New(
//	    []loser.Sequence[int]{a, b, c},
//	    func(x, y int) bool { return x < y },
//	)
//	for v := range m.All() {
//	    fmt.Println(v)
//	}
//
// The merge is stable. Equal elements from different sequences are yielded in
// the order the sequences were passed to New, which lets callers give earlier
// sources precedence without adding a tie-break to less. No sentinel value is
// needed; an exhausted sequence simply loses every match.
package loser
