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
package diag

import (
	"errors"
	"testing"

	"gatecore/sourcepool"
)

func TestNewErrorCarriesCauseAndSpans(t *testing.T) {
	loc := sourcepool.SourceLocation{Func: 1, Node: 2}
	err := New(CauseSemantic, "non-exhaustive case", loc)
	if err.Cause != CauseSemantic {
		t.Fatalf("expected CauseSemantic, got %v", err.Cause)
	}
	if len(err.Spans) != 1 || err.Spans[0] != loc {
		t.Fatalf("expected the error to carry the given span, got %+v", err.Spans)
	}
	want := "semantic error: non-exhaustive case (at " + loc.String() + ")"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewErrorWithoutSpansOmitsLocation(t *testing.T) {
	err := New(CauseType, "mismatched widths")
	want := "type error: mismatched widths"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(underlying, CauseStructural)
	if err.Cause != CauseStructural {
		t.Fatalf("expected CauseStructural, got %v", err.Cause)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected Wrap to preserve an unwrappable cause")
	}
}

func TestICEReportsIsICE(t *testing.T) {
	err := ICE("invariant violated")
	if !err.IsICE() {
		t.Fatalf("expected ICE() to produce an error with IsICE() == true")
	}
	if New(CauseType, "x").IsICE() {
		t.Fatalf("expected a non-ICE cause to report IsICE() == false")
	}
}

func TestCauseStringTaxonomy(t *testing.T) {
	cases := map[Cause]string{
		CauseType:         "type error",
		CauseSemantic:     "semantic error",
		CauseClockDomain:  "clock-domain error",
		CauseStructural:   "structural error",
		CauseICE:          "internal compiler error",
		Cause(99):         "unknown error",
	}
	for cause, want := range cases {
		if got := cause.String(); got != want {
			t.Errorf("Cause(%d).String() = %q, want %q", cause, got, want)
		}
	}
}
