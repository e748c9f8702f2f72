package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// CompileAll compiles every machine declared under the top-level "machine"
// field of v, in declaration order. Errors are collected; machines that fail
// to compile are left out of the result.
func CompileAll(v cue.Value) ([]*ir.Machine, []error) {
	machines := v.LookupPath(cue.ParsePath("machine"))
	if !machines.Exists() {
		return nil, nil
	}
	iter, err := machines.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var out []*ir.Machine
	var errs []error
	for iter.Next() {
		m, err := CompileMachine(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("machine.%s: %w", iter.Selector(), err))
			continue
		}
		out = append(out, m)
	}
	return out, errs
}

// CompileFile compiles the machines of a single CUE file.
func CompileFile(path string) ([]*ir.Machine, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("read %s: %w", path, err)}
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}
	return CompileAll(v)
}

// Find returns the machine called name, or the only machine when name is
// empty.
func Find(machines []*ir.Machine, name string) (*ir.Machine, error) {
	if name == "" {
		switch len(machines) {
		case 0:
			return nil, fmt.Errorf("no machines declared")
		case 1:
			return machines[0], nil
		default:
			return nil, fmt.Errorf("%d machines declared, name one of them", len(machines))
		}
	}
	for _, m := range machines {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("machine %q not declared", name)
}
