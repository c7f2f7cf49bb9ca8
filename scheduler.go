package spreadsheet

import "container/heap"

// cellHeap is a min-heap of CellRefs ordered row-major (top-to-bottom,
// left-to-right). It gives the recalculation scheduler a deterministic
// tie-break whenever more than one dependent becomes ready in the same
// wave of Kahn's algorithm — necessary because SLEEP makes processing
// order observable through wall-clock timing, so "whatever map iteration
// happens to produce" is not an acceptable order.
type cellHeap []CellRef

func (h cellHeap) Len() int { return len(h) }
func (h cellHeap) Less(i, j int) bool {
	if h[i].Row != h[j].Row {
		return h[i].Row < h[j].Row
	}
	return h[i].Col < h[j].Col
}
func (h cellHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cellHeap) Push(x interface{}) { *h = append(*h, x.(CellRef)) }
func (h *cellHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// transitiveDependents returns every cell reachable from start by
// following rdeps edges (i.e. everything that would need to recompute
// because start's value changed), not including start itself.
func (s *Sheet) transitiveDependents(start CellRef) map[CellRef]struct{} {
	visited := make(map[CellRef]struct{})
	queue := []CellRef{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range s.graph.Dependents(cur) {
			if _, ok := visited[dep]; ok {
				continue
			}
			visited[dep] = struct{}{}
			queue = append(queue, dep)
		}
	}
	return visited
}

// recalcDependents recomputes every cell transitively dependent on start,
// in topological order (Kahn's algorithm over the subgraph induced by
// start's descendants). Among the cells that are ready, the row-major
// smallest is always taken next; cells are not processed in the order in
// which they became ready. start itself must already hold its new value;
// this only walks outward from it.
func (s *Sheet) recalcDependents(start CellRef) {
	affected := s.transitiveDependents(start)
	if len(affected) == 0 {
		return
	}

	indegree := make(map[CellRef]int, len(affected))
	for cell := range affected {
		n := 0
		for _, dep := range s.graph.Dependencies(cell) {
			// start already holds its new value and is never pushed onto
			// the heap, so it must not contribute local indegree to its
			// direct dependents. In an acyclic graph start is not in
			// affected, so the affected check below excludes it as well.
			if dep == start {
				continue
			}
			if _, ok := affected[dep]; ok {
				n++
			}
		}
		indegree[cell] = n
	}

	h := &cellHeap{}
	heap.Init(h)
	for cell, n := range indegree {
		if n == 0 {
			heap.Push(h, cell)
		}
	}

	for h.Len() > 0 {
		cell := heap.Pop(h).(CellRef)
		status := s.recomputeCell(cell)
		s.logger.Debug("recalculated", "cell", cell.String(), "status", string(status))

		// BAD_RANGE/PARSE/OUT_OF_BOUNDS during a cascaded re-evaluation
		// marks that cell ERROR, but its own dependents are not released
		// and so are not re-evaluated in this pass (SPEC_FULL.md §4.7
		// step 4); the other cells of the affected set still are. Only
		// DIV_ZERO/PROPAGATED_ERROR flow further downstream through
		// ordinary dependency reads.
		if status == StatusInvalidFormula || status == StatusInvalidRange || status == StatusRangeOutOfBound {
			continue
		}

		for _, dependent := range s.graph.Dependents(cell) {
			if _, ok := affected[dependent]; !ok {
				continue
			}
			indegree[dependent]--
			if indegree[dependent] == 0 {
				heap.Push(h, dependent)
			}
		}
	}
}
