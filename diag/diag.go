// Copyright (c) 2024 The gatecore Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package diag implements the structured error taxonomy of §7: every pass
// returns either a rewritten IR or a single diag.Error, never a partial
// mutation. Errors are stable values — they carry a SourceLocation by value,
// never a pointer into a transient buffer, so they outlive the pass that
// raised them.
package diag

import (
	"fmt"

	"github.com/pkg/errors"

	"gatecore/sourcepool"
)

// Cause classifies an Error per the §7 taxonomy.
type Cause int

const (
	// CauseType: unresolved type equivalence, mismatched widths, unknown
	// field/variant.
	CauseType Cause = iota
	// CauseSemantic: non-exhaustive Case, write to a literal, zero-width
	// resize, dynamic index out of declared range.
	CauseSemantic
	// CauseClockDomain: a cross-color read with no explicit Retime.
	CauseClockDomain
	// CauseStructural: combinational cycle, undriven wire, multiple writes
	// to one register — all raised after lowering, on NTL.
	CauseStructural
	// CauseICE: an invariant violation that indicates a compiler bug, not a
	// user error. Should never fire on a well-formed program.
	CauseICE
)

func (c Cause) String() string {
	switch c {
	case CauseType:
		return "type error"
	case CauseSemantic:
		return "semantic error"
	case CauseClockDomain:
		return "clock-domain error"
	case CauseStructural:
		return "structural error"
	case CauseICE:
		return "internal compiler error"
	}
	return "unknown error"
}

// Error is the one structured error type every pass may return. It carries
// its own span set (a diagnostic may implicate more than one location, e.g.
// a combinational loop spans both feedback edges) so a renderer can resolve
// every one of them against a sourcepool.SpannedSourceSet.
type Error struct {
	Cause   Cause
	Message string
	Spans   []sourcepool.SourceLocation
	cause   error // wrapped via github.com/pkg/errors for a stack trace
}

func New(cause Cause, message string, spans ...sourcepool.SourceLocation) *Error {
	return &Error{
		Cause:   cause,
		Message: message,
		Spans:   spans,
		cause:   errors.New(message),
	}
}

// Wrap attaches a Cause and span set to an arbitrary lower-level error
// (e.g. one bubbling out of the kernel/sourcepool layer), preserving its
// stack trace via github.com/pkg/errors.
func Wrap(err error, cause Cause, spans ...sourcepool.SourceLocation) *Error {
	return &Error{
		Cause:   cause,
		Message: err.Error(),
		Spans:   spans,
		cause:   errors.WithStack(err),
	}
}

// ICE constructs an internal-compiler-error Error — reserve for invariant
// violations a well-formed program should never trigger.
func ICE(message string, spans ...sourcepool.SourceLocation) *Error {
	return New(CauseICE, message, spans...)
}

func (e *Error) Error() string {
	if len(e.Spans) == 0 {
		return fmt.Sprintf("%s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %v)", e.Cause, e.Message, e.Spans[0])
}

// Unwrap exposes the wrapped stack-traced error for errors.Is/As and for
// github.com/pkg/errors' %+v stack-trace formatting.
func (e *Error) Unwrap() error { return e.cause }

func (e *Error) IsICE() bool { return e.Cause == CauseICE }
