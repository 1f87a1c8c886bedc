// Package diag implements the diagnostic sink (spec.md §6): the single,
// always-on text protocol every pass uses to report the one error that
// stopped it.
package diag

import (
	"fmt"

	"ccfront/pkg/source"
)

// Phase names the pass that raised an Error, used verbatim in the
// rendered diagnostic line and to pick the CLI driver's exit code.
type Phase string

const (
	PhaseLexer      Phase = "Lexer"
	PhaseParse      Phase = "Parse"
	PhaseIdentRes   Phase = "Identifier Resolution"
	PhaseLabelRes   Phase = "Label"
	PhaseType       Phase = "Type"
	PhaseTAC        Phase = "TAC"
)

// ExitCode maps a phase to the CLI driver's documented process exit code.
// Any other phase maps to 1.
func (p Phase) ExitCode() int {
	switch p {
	case PhaseLexer:
		return 1
	case PhaseParse:
		return 2
	case PhaseIdentRes:
		return 3
	case PhaseLabelRes:
		return 4
	case PhaseType:
		return 5
	case PhaseTAC:
		return 6
	default:
		return 1
	}
}

// Error is the one diagnostic a failing pass reports. Loc may be the zero
// source.Loc ("Line == 0"), in which case Error() omits the "at ..." clause.
type Error struct {
	Phase Phase
	Loc   source.Loc
	Msg   string
}

func New(phase Phase, loc source.Loc, format string, args ...any) *Error {
	return &Error{Phase: phase, Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// Error renders the diagnostic line exactly as spec.md §6 specifies:
//
//	"<phase> error at <file>:<line>:<col>: <message>"
//
// with "at ..." omitted when no location is available.
func (e *Error) Error() string {
	if e.Loc.Line == 0 {
		return fmt.Sprintf("%s error: %s", e.Phase, e.Msg)
	}
	return fmt.Sprintf("%s error at %s: %s", e.Phase, e.Loc, e.Msg)
}
