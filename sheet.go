package spreadsheet

import (
	"log/slog"
)

// Sheet is the whole spreadsheet: a fixed Rows x Cols grid of cells, the
// dependency graph over them, and the viewport/output state the REPL
// commands (w/a/s/d, scroll_to, enable_output/disable_output) mutate.
// Its size never changes after NewSheet, which is what lets CellRef double
// as a stable lvlath vertex ID and map key for the graph's whole lifetime.
type Sheet struct {
	Rows, Cols int

	cells map[CellRef]*Cell
	graph *DependencyGraph

	clock  Clock
	logger *slog.Logger

	ViewRow, ViewCol   int
	PageRows, PageCols int
	OutputEnabled      bool
}

// NewSheet builds an empty Rows x Cols sheet. logger may be nil, in which
// case a discarding logger is used — tests construct Sheets this way to
// keep output quiet.
func NewSheet(rows, cols int, clock Clock, logger *slog.Logger) *Sheet {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return &Sheet{
		Rows:          rows,
		Cols:          cols,
		cells:         make(map[CellRef]*Cell),
		graph:         NewDependencyGraph(),
		clock:         clock,
		logger:        logger,
		OutputEnabled: true,
		PageRows:      DefaultPageSize,
		PageCols:      DefaultPageSize,
	}
}

// DefaultPageSize is the w/a/s/d scroll step used until SetPageSize is
// called with a real terminal size.
const DefaultPageSize = 10

// SetPageSize lets the CLI front end tell the sheet how large a viewport
// page is, once it has measured the real terminal.
func (s *Sheet) SetPageSize(rows, cols int) {
	if rows > 0 {
		s.PageRows = rows
	}
	if cols > 0 {
		s.PageCols = cols
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// InBounds implements EvalContext.
func (s *Sheet) InBounds(ref CellRef) bool {
	return ref.Row >= 0 && ref.Row < s.Rows && ref.Col >= 0 && ref.Col < s.Cols
}

// CellValue implements EvalContext: a never-assigned cell reads as 0, and
// a cell left in CellError status propagates as an evaluation error to
// whatever formula is reading it.
func (s *Sheet) CellValue(ref CellRef) (int32, error) {
	c, ok := s.cells[ref]
	if !ok || c.empty() {
		return 0, nil
	}
	if c.Status == CellError {
		return 0, newEvalError(ErrKindPropagatedError, "cell "+ref.String()+" holds an error")
	}
	return c.Value, nil
}

// Get returns the current contents of ref, or the zero Cell if it has
// never been assigned.
func (s *Sheet) Get(ref CellRef) Cell {
	if c, ok := s.cells[ref]; ok {
		return *c
	}
	return Cell{}
}

// SetCell is the edit transaction described in SPEC_FULL.md §4.6: it
// installs body as ref's formula, validates the resulting dependency
// graph stays acyclic, evaluates ref, and cascades recalculation to every
// transitive dependent — all before returning the CommandStatus the REPL
// prints.
//
// A cycle is the only failure that rolls the edit back entirely: the
// dependency edges SetDeps just installed are restored to their prior
// state and ref keeps its old contents. Every other evaluation failure
// (parse, bad range, out of bounds, div by zero, a poisoned dependency)
// still commits — ref is set to CellError and the status line reports
// which kind of problem it was, distinguishing failures that are evident
// from the formula text alone (Invalid formula / Invalid range / Range
// out of bounds) from failures that only evaluation can discover (div by
// zero, a dependency already in error), which both report "ok" since the
// edit itself was well-formed.
func (s *Sheet) SetCell(ref CellRef, body string) CommandStatus {
	oldDeps := s.graph.Dependencies(ref)
	newDeps := ExtractDependencies(body)

	s.graph.SetDeps(ref, newDeps)
	if cyclic, err := s.graph.HasCycle(ref); err != nil {
		s.logger.Warn("cycle detection failed", "cell", ref.String(), "error", err)
	} else if cyclic {
		s.graph.SetDeps(ref, oldDeps)
		s.logger.Debug("rejected circular edit", "cell", ref.String())
		return circularStatus(ref)
	}

	s.assignFormula(ref, body)
	status := s.recomputeCell(ref)
	// An out-of-bounds reference during evaluation surfaces the error and
	// stops there; per SPEC_FULL.md §4.6 the edit still installs, but
	// dependents are deliberately not re-evaluated.
	if status != StatusRangeOutOfBound {
		s.recalcDependents(ref)
	}
	return status
}

// recomputeCell evaluates ref's stored formula against the sheet's
// current state and commits the result, returning the CommandStatus that
// applies when ref is the cell the user directly edited. It is also used
// by the recalculation scheduler to refresh dependents; there the status
// is only logged and used to decide whether the cell's own dependents are
// released.
func (s *Sheet) recomputeCell(ref CellRef) CommandStatus {
	formula := ""
	if c, ok := s.cells[ref]; ok {
		formula = c.Formula
	}

	val, err := Evaluate(formula, s, s.clock)
	if err == nil {
		s.cells[ref] = &Cell{Formula: formula, Value: val, Status: CellOK}
		return StatusOK
	}

	s.cells[ref] = &Cell{Formula: formula, Value: 0, Status: CellError}

	ee, ok := asEvalError(err)
	if !ok {
		return StatusOK
	}
	switch ee.Kind {
	case ErrKindParse:
		return StatusInvalidFormula
	case ErrKindBadRange:
		return StatusInvalidRange
	case ErrKindOutOfBounds:
		return StatusRangeOutOfBound
	default: // ErrKindDivZero, ErrKindPropagatedError: data-dependent, edit still "ok"
		return StatusOK
	}
}

// assignFormula stores body on ref ahead of the first recomputeCell call
// SetCell makes; recomputeCell reads it back out of s.cells, so this must
// run before recomputeCell to seed the text it evaluates.
func (s *Sheet) assignFormula(ref CellRef, body string) {
	s.cells[ref] = &Cell{Formula: body, Status: CellEmpty}
}

// ScrollBy moves the viewport origin by (dRows, dCols), clamping it so the
// origin never leaves the grid. The renderer decides how many rows/cols
// are actually visible from that origin based on terminal size.
func (s *Sheet) ScrollBy(dRows, dCols int) {
	s.ViewRow = clamp(s.ViewRow+dRows, 0, s.Rows-1)
	s.ViewCol = clamp(s.ViewCol+dCols, 0, s.Cols-1)
}

// ScrollTo sets the viewport origin directly, clamping to the grid.
func (s *Sheet) ScrollTo(row, col int) {
	s.ViewRow = clamp(row, 0, s.Rows-1)
	s.ViewCol = clamp(col, 0, s.Cols-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
