package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSheet(rows, cols int) (*Sheet, *fakeClock) {
	clock := &fakeClock{}
	return NewSheet(rows, cols, clock, nil), clock
}

func mustRef(t *testing.T, name string) CellRef {
	t.Helper()
	ref, ok := nameToCoord(name)
	require.True(t, ok)
	return ref
}

// TestCascadeUpdatesDependent covers spec scenario 1/2: a direct
// dependency propagates, and re-editing the source cascades again.
func TestCascadeUpdatesDependent(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	a1, b1 := mustRef(t, "A1"), mustRef(t, "B1")

	status := RunCommand(sheet, "A1=100").Status
	require.Equal(t, StatusOK, status)
	status = RunCommand(sheet, "B1=A1+50").Status
	require.Equal(t, StatusOK, status)

	assert.EqualValues(t, 100, sheet.Get(a1).Value)
	assert.EqualValues(t, 150, sheet.Get(b1).Value)

	status = RunCommand(sheet, "A1=7").Status
	require.Equal(t, StatusOK, status)
	assert.EqualValues(t, 7, sheet.Get(a1).Value)
	assert.EqualValues(t, 57, sheet.Get(b1).Value)
}

// TestErrorPropagationSurvivesUnrelatedEdit covers spec scenario 3: an
// error cell poisons its dependent, and editing an unrelated upstream
// cell neither clears nor is blocked by the existing error.
func TestErrorPropagationSurvivesUnrelatedEdit(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	a1, b1, c1, d1 := mustRef(t, "A1"), mustRef(t, "B1"), mustRef(t, "C1"), mustRef(t, "D1")

	require.Equal(t, StatusOK, RunCommand(sheet, "A1=100").Status)
	require.Equal(t, StatusOK, RunCommand(sheet, "B1=A1+50").Status)

	require.Equal(t, StatusOK, RunCommand(sheet, "C1=A1/0").Status)
	assert.Equal(t, CellError, sheet.Get(c1).Status)

	require.Equal(t, StatusOK, RunCommand(sheet, "D1=C1+1").Status)
	assert.Equal(t, CellError, sheet.Get(d1).Status)

	require.Equal(t, StatusOK, RunCommand(sheet, "A1=200").Status)
	assert.EqualValues(t, 200, sheet.Get(a1).Value)
	assert.EqualValues(t, 250, sheet.Get(b1).Value)
	assert.Equal(t, CellError, sheet.Get(c1).Status)
	assert.Equal(t, CellError, sheet.Get(d1).Status)
}

// TestSelfReferenceRejectedAsCircular covers spec scenario 4.
func TestSelfReferenceRejectedAsCircular(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	x1 := mustRef(t, "X1")

	result := RunCommand(sheet, "X1=X1+1")
	assert.Equal(t, circularStatus(x1), result.Status)

	cell := sheet.Get(x1)
	assert.Equal(t, CellEmpty, cell.Status)
	assert.EqualValues(t, 0, cell.Value)
	assert.Empty(t, cell.Formula)
}

// TestRangeAggregates covers spec scenario 5.
func TestRangeAggregates(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	require.Equal(t, StatusOK, RunCommand(sheet, "A1=1").Status)
	require.Equal(t, StatusOK, RunCommand(sheet, "B1=2").Status)
	require.Equal(t, StatusOK, RunCommand(sheet, "C1=3").Status)

	require.Equal(t, StatusOK, RunCommand(sheet, "E1=SUM(A1:C1)").Status)
	assert.EqualValues(t, 6, sheet.Get(mustRef(t, "E1")).Value)

	require.Equal(t, StatusOK, RunCommand(sheet, "F1=AVG(A1:C1)").Status)
	assert.EqualValues(t, 2, sheet.Get(mustRef(t, "F1")).Value)

	require.Equal(t, StatusOK, RunCommand(sheet, "G1=STDEV(A1:C1)").Status)
	assert.EqualValues(t, 1, sheet.Get(mustRef(t, "G1")).Value)

	require.Equal(t, StatusOK, RunCommand(sheet, "H1=MIN(A1:C1)").Status)
	assert.EqualValues(t, 1, sheet.Get(mustRef(t, "H1")).Value)

	require.Equal(t, StatusOK, RunCommand(sheet, "I1=MAX(A1:C1)").Status)
	assert.EqualValues(t, 3, sheet.Get(mustRef(t, "I1")).Value)
}

// TestIndirectCycleRejectedSecondEdit covers spec scenario 6.
func TestIndirectCycleRejectedSecondEdit(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	o1, p1 := mustRef(t, "O1"), mustRef(t, "P1")

	require.Equal(t, StatusOK, RunCommand(sheet, "O1=P1+1").Status)
	assert.EqualValues(t, 1, sheet.Get(o1).Value)

	result := RunCommand(sheet, "P1=O1+1")
	assert.Equal(t, circularStatus(p1), result.Status)

	cell := sheet.Get(p1)
	assert.Equal(t, CellEmpty, cell.Status)
	assert.EqualValues(t, 0, cell.Value)
}

// TestSleepOrderingAndSign covers spec scenario 7. It runs the sheet with
// a fakeClock injected directly so wall-clock time is never actually
// spent on a negative SLEEP and positive SLEEPs are merely recorded, not
// waited out.
func TestSleepOrderingAndSign(t *testing.T) {
	sheet, clock := newTestSheet(10, 10)

	result := RunCommand(sheet, "R1=SLEEP(1)")
	require.Equal(t, StatusOK, result.Status)
	assert.EqualValues(t, 1, sheet.Get(mustRef(t, "R1")).Value)
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])

	result = RunCommand(sheet, "S1=SLEEP(-3)")
	require.Equal(t, StatusOK, result.Status)
	assert.EqualValues(t, -3, sheet.Get(mustRef(t, "S1")).Value)
	assert.Len(t, clock.slept, 1) // negative argument: no additional sleep recorded
}

// TestOutOfBoundsReferenceDuringEvaluation covers spec scenario 8.
func TestOutOfBoundsReferenceDuringEvaluation(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	a1 := mustRef(t, "A1")

	result := RunCommand(sheet, "A1=Z1000+1")
	assert.Equal(t, StatusRangeOutOfBound, result.Status)
	assert.EqualValues(t, 0, sheet.Get(a1).Value)
}

func TestTopologicalOrderingObservesFreshValues(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)

	require.Equal(t, StatusOK, RunCommand(sheet, "A1=1").Status)
	require.Equal(t, StatusOK, RunCommand(sheet, "B1=A1+1").Status)
	require.Equal(t, StatusOK, RunCommand(sheet, "C1=B1+1").Status)

	require.Equal(t, StatusOK, RunCommand(sheet, "A1=10").Status)
	assert.EqualValues(t, 11, sheet.Get(mustRef(t, "B1")).Value)
	assert.EqualValues(t, 12, sheet.Get(mustRef(t, "C1")).Value)
}

func TestInvalidCellNameRejectedWithoutMutation(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	result := RunCommand(sheet, "1A=5")
	assert.Equal(t, StatusInvalidCell, result.Status)
}

func TestCellOutOfBoundsTargetRejected(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	result := RunCommand(sheet, "Z1000=5")
	assert.Equal(t, StatusCellOutOfBounds, result.Status)
}

func TestViewportAndOutputToggle(t *testing.T) {
	sheet, _ := newTestSheet(20, 20)
	sheet.SetPageSize(5, 5)

	require.Equal(t, StatusOK, RunCommand(sheet, "s").Status)
	assert.Equal(t, 5, sheet.ViewRow)

	require.Equal(t, StatusOK, RunCommand(sheet, "d").Status)
	assert.Equal(t, 5, sheet.ViewCol)

	require.Equal(t, StatusOK, RunCommand(sheet, "scroll_to A1").Status)
	assert.Equal(t, 0, sheet.ViewRow)
	assert.Equal(t, 0, sheet.ViewCol)

	require.Equal(t, StatusOK, RunCommand(sheet, "disable_output").Status)
	assert.False(t, sheet.OutputEnabled)
	require.Equal(t, StatusOK, RunCommand(sheet, "enable_output").Status)
	assert.True(t, sheet.OutputEnabled)
}

func TestUnrecognizedCommand(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	result := RunCommand(sheet, "frobnicate")
	assert.Equal(t, StatusUnrecognized, result.Status)
}

func TestInvalidFormulaStillCommitsAsErrorCell(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	a1 := mustRef(t, "A1")

	result := RunCommand(sheet, "A1=1+")
	assert.Equal(t, StatusInvalidFormula, result.Status)
	assert.Equal(t, CellError, sheet.Get(a1).Status)
}

func TestInvalidRangeStillCommitsAsErrorCell(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	a1 := mustRef(t, "A1")

	result := RunCommand(sheet, "A1=SUM(C1:A1)")
	assert.Equal(t, StatusInvalidRange, result.Status)
	assert.Equal(t, CellError, sheet.Get(a1).Status)
}

func TestQuitCommand(t *testing.T) {
	sheet, _ := newTestSheet(10, 10)
	result := RunCommand(sheet, "q")
	assert.True(t, result.Quit)
	assert.Equal(t, StatusOK, result.Status)
}
