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
package main

import (
	"testing"

	"gatecore/passmgr"
)

func TestAllDemosCompile(t *testing.T) {
	for _, d := range allDemos {
		d := d
		t.Run(d.name, func(t *testing.T) {
			res, err := passmgr.Compile(d.k, demoKernels(d), passmgr.Options{})
			if err != nil {
				t.Fatalf("Compile(%s): %v", d.name, err)
			}
			if res.NTL == nil {
				t.Fatalf("Compile(%s): nil NTL result", d.name)
			}
			if len(res.NTL.Outputs) != d.k.Ret.BitWidth() {
				t.Errorf("Compile(%s): expected %d output wire(s), got %d", d.name, d.k.Ret.BitWidth(), len(res.NTL.Outputs))
			}
		})
	}
}

func TestDemoByNameAndList(t *testing.T) {
	names := demoNames()
	if len(names) != len(allDemos) {
		t.Fatalf("expected %d demo names, got %d", len(allDemos), len(names))
	}
	for _, name := range names {
		if _, ok := demoByName(name); !ok {
			t.Errorf("demoByName(%q) not found", name)
		}
	}
	if _, ok := demoByName("nonexistent"); ok {
		t.Errorf("demoByName(\"nonexistent\") unexpectedly found")
	}
}

func TestRootCmdListRuns(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"list"})
	if err := root.Execute(); err != nil {
		t.Fatalf("gatecore list: %v", err)
	}
}

func TestRootCmdCompileRejectsUnknownDemo(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"compile", "nonexistent"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for an unknown demo name")
	}
}

func TestRootCmdCompileAllSucceeds(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"compile-all", "--mode", "async", "--workers", "2"})
	if err := root.Execute(); err != nil {
		t.Fatalf("gatecore compile-all: %v", err)
	}
}
