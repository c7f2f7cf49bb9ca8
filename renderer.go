package spreadsheet

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// TerminalPageSize asks the controlling terminal how many grid rows/columns
// of cells a viewport page should show, falling back to DefaultPageSize
// when stdout is not a terminal (piped input, CI, tests). Two rows are
// reserved (the column header and the status line) and a few character
// columns for the row
// gutter, mirroring how the teacher's repl package only engages raw-TTY
// behavior when both ends are real terminals.
func TerminalPageSize() (rows, cols int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return DefaultPageSize, DefaultPageSize
	}
	width, height, err := term.GetSize(fd)
	if err != nil {
		return DefaultPageSize, DefaultPageSize
	}

	rows = height - 2
	if rows < 1 {
		rows = DefaultPageSize
	}
	cols = (width - gutterWidth) / cellWidth
	if cols < 1 {
		cols = DefaultPageSize
	}
	return rows, cols
}

const (
	gutterWidth = 6
	cellWidth   = 10
)

// Render draws the viewport-sized window of the grid starting at
// (s.ViewRow, s.ViewCol), ERROR cells shown as "ERR", per SPEC_FULL.md §6.
// It is a no-op string when OutputEnabled is false — callers should still
// check OutputEnabled themselves before calling, so a disabled redraw
// costs nothing.
func (s *Sheet) Render() string {
	if !s.OutputEnabled {
		return ""
	}

	var b strings.Builder

	rowEnd := min(s.ViewRow+s.PageRows, s.Rows)
	colEnd := min(s.ViewCol+s.PageCols, s.Cols)

	b.WriteString(strings.Repeat(" ", gutterWidth))
	for c := s.ViewCol; c < colEnd; c++ {
		header := coordToName(0, c)
		header = header[:len(header)-1] // strip the row digit, keep the column letters
		b.WriteString(padCell(header))
	}
	b.WriteByte('\n')

	for r := s.ViewRow; r < rowEnd; r++ {
		b.WriteString(padGutter(strconv.Itoa(r + 1)))
		for c := s.ViewCol; c < colEnd; c++ {
			cell := s.Get(CellRef{Row: r, Col: c})
			var text string
			switch cell.Status {
			case CellError:
				text = "ERR"
			case CellOK:
				text = strconv.FormatInt(int64(cell.Value), 10)
			default:
				text = "0"
			}
			b.WriteString(padCell(text))
		}
		b.WriteByte('\n')
	}

	return b.String()
}

func padCell(s string) string {
	if len(s) >= cellWidth {
		return s[:cellWidth]
	}
	return s + strings.Repeat(" ", cellWidth-len(s))
}

func padGutter(s string) string {
	if len(s) >= gutterWidth {
		return s[:gutterWidth]
	}
	return s + strings.Repeat(" ", gutterWidth-len(s))
}

// PromptLine formats the status line printed after every command:
// "[<elapsed_seconds.1>] (<status>) > ".
func PromptLine(elapsedSeconds float64, status CommandStatus) string {
	return fmt.Sprintf("[%.1f] (%s) > ", elapsedSeconds, string(status))
}
