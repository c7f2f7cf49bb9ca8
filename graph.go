package spreadsheet

import (
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

// DependencyGraph tracks, for every cell, the set of cells it reads
// (deps) and the set of cells that read it (rdeps). It is the basis for
// both cycle rejection and recalculation scheduling.
//
// Edge bookkeeping is deliberately hybrid. The hot path — adding an edge,
// removing an edge, walking a cell's dependents during recalculation — runs
// over plain Go maps, which give O(1) operations and (combined with the
// scheduler's row-major priority queue) the exact, reproducible ordering the
// SLEEP side effect makes observable. A mirrored github.com/katalvlaran/lvlath/core
// graph is maintained alongside it purely so cycle detection can be
// delegated to a real graph-theory implementation (dfs.DetectCycles)
// instead of a hand-rolled DFS; lvlath's own dfs.TopologicalSort is not
// used for scheduling because it orders by DFS post-order reversal, which
// does not reproduce the scheduler's row-major tie-breaking.
type DependencyGraph struct {
	deps  map[CellRef]map[CellRef]struct{}
	rdeps map[CellRef]map[CellRef]struct{}

	mirror  *core.Graph
	edgeIDs map[[2]CellRef]string
}

// NewDependencyGraph builds an empty graph. Self-loops must be permitted
// on the mirror so a formula that references its own cell (e.g. A1=A1+1)
// can be installed and then correctly reported as a cycle by
// dfs.DetectCycles, rather than being rejected earlier by AddEdge itself.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps:    make(map[CellRef]map[CellRef]struct{}),
		rdeps:   make(map[CellRef]map[CellRef]struct{}),
		mirror:  core.NewGraph(core.WithDirected(true), core.WithLoops()),
		edgeIDs: make(map[[2]CellRef]string),
	}
}

func (g *DependencyGraph) ensureVertex(ref CellRef) {
	name := ref.String()
	if !g.mirror.HasVertex(name) {
		_ = g.mirror.AddVertex(name)
	}
}

// SetDeps replaces cell's dependency set with deps, updating forward and
// reverse edges (and the mirror graph) accordingly. It does not itself
// check for cycles; callers install the new set speculatively, call
// HasCycle, and call SetDeps again with the old set to roll back if a
// cycle was found.
func (g *DependencyGraph) SetDeps(cell CellRef, deps []CellRef) {
	g.ClearDeps(cell)

	g.ensureVertex(cell)
	set := make(map[CellRef]struct{}, len(deps))
	for _, d := range deps {
		set[d] = struct{}{}

		if g.rdeps[d] == nil {
			g.rdeps[d] = make(map[CellRef]struct{})
		}
		g.rdeps[d][cell] = struct{}{}

		g.ensureVertex(d)
		eid, err := g.mirror.AddEdge(d.String(), cell.String(), 0)
		if err == nil {
			g.edgeIDs[[2]CellRef{d, cell}] = eid
		}
	}
	g.deps[cell] = set
}

// ClearDeps removes every edge pointing away from cell (i.e. cell's own
// dependencies), leaving edges into cell (its dependents) untouched.
func (g *DependencyGraph) ClearDeps(cell CellRef) {
	for d := range g.deps[cell] {
		delete(g.rdeps[d], cell)
		if len(g.rdeps[d]) == 0 {
			delete(g.rdeps, d)
		}
		key := [2]CellRef{d, cell}
		if eid, ok := g.edgeIDs[key]; ok {
			_ = g.mirror.RemoveEdge(eid)
			delete(g.edgeIDs, key)
		}
	}
	delete(g.deps, cell)
}

// Dependents returns the cells that directly read cell.
func (g *DependencyGraph) Dependents(cell CellRef) []CellRef {
	out := make([]CellRef, 0, len(g.rdeps[cell]))
	for d := range g.rdeps[cell] {
		out = append(out, d)
	}
	return out
}

// Dependencies returns the cells that cell directly reads.
func (g *DependencyGraph) Dependencies(cell CellRef) []CellRef {
	out := make([]CellRef, 0, len(g.deps[cell]))
	for d := range g.deps[cell] {
		out = append(out, d)
	}
	return out
}

// HasCycle reports whether the graph, as currently committed, contains
// a cycle that passes through cell. DetectCycles walks the whole mirrored
// graph (it has no single-source variant), so this is O(V+E) regardless
// of cell; callers typically call it once per edit, immediately after a
// speculative SetDeps, which is the only point a new cycle could appear.
// If the graph was acyclic before that SetDeps, any new cycle must pass
// through cell, so the whole-graph scan gives the same answer as a scan
// seeded from cell.
func (g *DependencyGraph) HasCycle(cell CellRef) (bool, error) {
	found, cycles, err := dfs.DetectCycles(g.mirror)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	name := cell.String()
	for _, cyc := range cycles {
		for _, v := range cyc {
			if v == name {
				return true, nil
			}
		}
	}
	// A cycle exists elsewhere in the graph but does not pass through
	// cell; the edit that introduced it is not the one being validated.
	return false, nil
}
