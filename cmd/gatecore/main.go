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

// Command gatecore drives the compilation pipeline over the built-in demo
// kernels (see demos.go). It exists to exercise passmgr end to end; a real
// surface-language frontend would replace demos.go with an actual parser
// and hand Kernels to the same passmgr.Compile/CompileAll entry points.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gatecore/hdlcontract"
	"gatecore/kernel"
	"gatecore/passmgr"
)

var (
	modeFlag    string
	verboseFlag int
	workersFlag int
)

func parseMode() (passmgr.Mode, error) {
	switch modeFlag {
	case "", "sync", "synchronous":
		return passmgr.Synchronous, nil
	case "async", "asynchronous":
		return passmgr.Asynchronous, nil
	default:
		return 0, errors.Errorf("unknown --mode %q (want sync or async)", modeFlag)
	}
}

func parseVerbosity() passmgr.Verbosity {
	switch {
	case verboseFlag >= 2:
		return passmgr.Verbose
	case verboseFlag == 1:
		return passmgr.Summary
	default:
		return passmgr.Silent
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gatecore",
		Short:         "Compile demo kernels through the MIR/RHIF/RTL/NTL pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&modeFlag, "mode", "sync", "batch scheduling mode: sync or async")
	root.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "increase stage output (-v summary, -vv full IR dumps)")
	root.AddCommand(newListCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newCompileAllCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in demo kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range demoNames() {
				d, _ := demoByName(name)
				fmt.Printf("%-14s %s\n", d.name, d.doc)
			}
			return nil
		},
	}
}

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <demo>",
		Short: "Compile one demo kernel and print its final netlist and output contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := demoByName(args[0])
			if !ok {
				return errors.Errorf("unknown demo %q (try \"gatecore list\")", args[0])
			}
			mode, err := parseMode()
			if err != nil {
				return err
			}
			opts := passmgr.Options{Mode: mode, Verbosity: parseVerbosity()}

			res, diagErr := passmgr.Compile(d.k, demoKernels(d), opts)
			if diagErr != nil {
				return diagErr
			}
			if opts.Verbosity < passmgr.Verbose {
				fmt.Print(res.NTL)
			}

			mod, herr := hdlcontract.Build(res.RTL, res.NTL)
			if herr != nil {
				return herr
			}
			fmt.Printf("module %s: %d port(s), %d statement(s)\n", mod.Name, len(mod.Ports), len(mod.Body))
			return nil
		},
	}
}

func newCompileAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile-all",
		Short: "Compile every demo kernel as one batch (§5 independent-kernel parallelism)",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseMode()
			if err != nil {
				return err
			}
			opts := passmgr.Options{Mode: mode, Verbosity: parseVerbosity(), Workers: workersFlag}

			topLevel := make([]*kernel.Kernel, len(allDemos))
			kernels := make(map[string]*kernel.Kernel, len(allDemos))
			for i, d := range allDemos {
				topLevel[i] = d.k
				for name, k := range demoKernels(d) {
					kernels[name] = k
				}
			}

			results := passmgr.CompileAll(topLevel, kernels, opts)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "gatecore: %s: %s\n", r.Kernel.Name, r.Err.Error())
					continue
				}
				if opts.Verbosity < passmgr.Verbose {
					fmt.Printf("%s: %d ntl op(s), %d output wire(s)\n", r.Kernel.Name, len(r.Result.NTL.Ops), len(r.Result.NTL.Outputs))
				}
			}
			if failed > 0 {
				return errors.Errorf("%d/%d demo kernel(s) failed to compile", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "worker pool size in async mode (0 = runtime.NumCPU())")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gatecore:", err)
		os.Exit(1)
	}
}
