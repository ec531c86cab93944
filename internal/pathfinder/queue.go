package pathfinder

import (
	"container/heap"

	"github.com/imamdoula004/Autonomous-Farming-Drone-System/internal/grid"
)

type frontierEntry struct {
	f    int
	seq  uint64
	g    int
	cell grid.Cell
}

// frontier is a min-heap ordered by f, then by insertion sequence. The
// sequence makes ties independent of the heap implementation.
type frontier struct {
	entries []frontierEntry
	nextSeq uint64
}

func (q *frontier) Len() int { return len(q.entries) }

func (q *frontier) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (q *frontier) Swap(i, j int) { q.entries[i], q.entries[j] = q.entries[j], q.entries[i] }

func (q *frontier) Push(x interface{}) { q.entries = append(q.entries, x.(frontierEntry)) }

func (q *frontier) Pop() interface{} {
	n := len(q.entries)
	e := q.entries[n-1]
	q.entries = q.entries[:n-1]
	return e
}

func (q *frontier) push(cell grid.Cell, g, f int) {
	heap.Push(q, frontierEntry{f: f, seq: q.nextSeq, g: g, cell: cell})
	q.nextSeq++
}

func (q *frontier) pop() frontierEntry {
	return heap.Pop(q).(frontierEntry)
}
