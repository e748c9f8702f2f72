package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/arthurvalves/IC-Tomato/internal/compiler"
	"github.com/arthurvalves/IC-Tomato/internal/engine"
	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// LoadMode controls how errors are handled during machine loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the machines found under a path.
type LoadResult struct {
	Machines  []*ir.Machine
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during machine loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadMachines loads and compiles CUE machine definitions. path is either a
// directory holding one CUE package or a single .cue file.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadMachines(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}}
	}

	var value cue.Value
	var fileCount int
	if info.IsDir() {
		value, fileCount, err = buildDir(path)
	} else {
		value, err = buildFile(path)
		fileCount = 1
	}
	if err != nil {
		return nil, []error{err}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
	}

	var errs []error
	machinesVal := value.LookupPath(cue.ParsePath("machine"))
	if machinesVal.Exists() {
		iter, iterErr := machinesVal.Fields()
		if iterErr != nil {
			return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating machines: %v", iterErr)}}
		}
		for iter.Next() {
			m, compileErr := compiler.CompileMachine(iter.Value())
			if compileErr != nil {
				errs = append(errs, convertCompileError(compileErr, "machine."+iter.Selector().String()))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Machines = append(result.Machines, m)
		}
	}

	if len(result.Machines) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no machines found"})
	}

	return result, errs
}

// buildDir loads the CUE package in dir.
func buildDir(dir string) (cue.Value, int, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// buildFile compiles a single CUE file.
func buildFile(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("not a CUE file: %s", path)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// LoadEngine builds the engine for one machine. JSON files are decoded
// directly; CUE files and directories are compiled and validated, and name
// selects the machine when several are declared. For JSON files a non-empty
// name replaces the one taken from the file name.
func LoadEngine(path, name string, opts ...engine.EngineOption) (*engine.Engine, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		eng, err := engine.LoadJSON(name, data, opts...)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
		}
		return eng, nil
	}

	result, errs := LoadMachines(path, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	m, err := compiler.Find(result.Machines, name)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeMachineNotFound, Message: err.Error()}
	}
	if verrs := compiler.Validate(m); len(verrs) > 0 {
		return nil, &LoadError{Code: verrs[0].Code, Message: verrs[0].Message}
	}
	return engine.Load(m, opts...)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeScanError       = "E002" // Directory scan error
	ErrCodeNoFiles         = "E003" // No CUE files found
	ErrCodeLoadFailed      = "E004" // CUE load failed
	ErrCodeNotFound        = "E005" // Path not found
	ErrCodeBuildFailed     = "E006" // CUE build failed
	ErrCodeWriteFailed     = "E007" // File write error
	ErrCodeDecodeFailed    = "E008" // JSON document could not be decoded
	ErrCodeMachineNotFound = "E009" // Named machine not declared
	ErrCodeUnsupported     = "E010" // Operation not defined for the machine kind
	ErrCodeStoreFailed     = "E011" // Store open/read/write error

	// Machine definition errors
	ErrCodeInvalidKind       = "E020" // Missing or unknown kind
	ErrCodeInvalidStates     = "E021" // Missing or malformed states
	ErrCodeInvalidTransition = "E022" // Malformed transition
	ErrCodeInvalidOutputs    = "E023" // Malformed Moore outputs
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "kind":
		return ErrCodeInvalidKind
	case field == "states" || field == "start" || field == "final":
		return ErrCodeInvalidStates
	case field == "outputs":
		return ErrCodeInvalidOutputs
	case strings.HasPrefix(field, "transitions"),
		field == "from", field == "to", field == "symbol", field == "input",
		field == "pop", field == "push", field == "read", field == "write",
		field == "move", field == "output":
		return ErrCodeInvalidTransition
	case field == "cue":
		return ErrCodeBuildFailed
	default:
		return ErrCodeGeneric
	}
}
