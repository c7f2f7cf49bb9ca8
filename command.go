package spreadsheet

import "strings"

// CommandResult is everything the REPL front end needs after running one
// line: the status to print and whether the session should end.
type CommandResult struct {
	Status CommandStatus
	Quit   bool
}

// RunCommand interprets one line of REPL input against s, per the command
// table in SPEC_FULL.md §6. It is the only entry point the front end
// needs; parsing a bare command keyword, a "scroll_to <cell>" argument,
// or a "<cell>=<formula>" edit all happen here before delegating the
// actual mutation to Sheet.
//
// "Unrecognized" is reserved for lines that do not match any known
// command shape at all. A line that does match a shape but carries a
// malformed argument (e.g. "scroll_to" with a name that will not decode)
// reports "Invalid command" instead — the distinction the status
// vocabulary draws between "I don't know what this is" and "I know what
// this is and it's broken".
func RunCommand(s *Sheet, line string) CommandResult {
	line = strings.TrimSpace(line)

	switch line {
	case "":
		return CommandResult{Status: StatusUnrecognized}
	case "q":
		return CommandResult{Status: StatusOK, Quit: true}
	case "w":
		s.ScrollBy(-s.PageRows, 0)
		return CommandResult{Status: StatusOK}
	case "s":
		s.ScrollBy(s.PageRows, 0)
		return CommandResult{Status: StatusOK}
	case "a":
		s.ScrollBy(0, -s.PageCols)
		return CommandResult{Status: StatusOK}
	case "d":
		s.ScrollBy(0, s.PageCols)
		return CommandResult{Status: StatusOK}
	case "disable_output":
		s.OutputEnabled = false
		return CommandResult{Status: StatusOK}
	case "enable_output":
		s.OutputEnabled = true
		return CommandResult{Status: StatusOK}
	}

	if rest, ok := strings.CutPrefix(line, "scroll_to "); ok {
		return CommandResult{Status: runScrollTo(s, strings.TrimSpace(rest))}
	}

	if eq := strings.IndexByte(line, '='); eq > 0 {
		return CommandResult{Status: runAssignment(s, line[:eq], line[eq+1:])}
	}

	return CommandResult{Status: StatusUnrecognized}
}

func runScrollTo(s *Sheet, name string) CommandStatus {
	ref, ok := nameToCoord(name)
	if !ok {
		return StatusInvalidCommand
	}
	if !s.InBounds(ref) {
		return StatusInvalidCommand
	}
	s.ScrollTo(ref.Row, ref.Col)
	return StatusOK
}

func runAssignment(s *Sheet, name, formula string) CommandStatus {
	ref, ok := nameToCoord(strings.TrimSpace(name))
	if !ok {
		return StatusInvalidCell
	}
	if !s.InBounds(ref) {
		return StatusCellOutOfBounds
	}
	return s.SetCell(ref, strings.TrimSpace(formula))
}
