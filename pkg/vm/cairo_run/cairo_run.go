// Package cairo_run wires a parsed program, a layout's builtins, and the
// core VirtualMachine together into a full run: initialize memory and
// registers, execute until the program's end pc, then relocate.
package cairo_run

import (
	"fmt"
	"sort"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/layouts"
	"github.com/cairovm-core/cairovm/pkg/parser"
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

// HintExecutor runs the hints registered at one pc, given the scopes
// stack active for the run; CairoRunner calls it once per step before
// decoding and executing the instruction there.
type HintExecutor interface {
	ExecuteHints(pc int, vm *vm.VirtualMachine, scopes *types.ExecutionScopes) error
}

// CairoRunner drives one execution of a parsed Program under a named
// layout.
type CairoRunner struct {
	Program *parser.Program
	Layout  *layouts.Layout
	Vm      *vm.VirtualMachine
	Scopes  *types.ExecutionScopes

	builtinRunners map[parser.BuiltinName]builtins.BuiltinRunner
	proofMode      bool
}

// MaxStepsExceededError guards the run loop against a program whose pc
// never reaches its declared end.
type MaxStepsExceededError struct{ MaxSteps int }

func (e *MaxStepsExceededError) Error() string {
	return fmt.Sprintf("execution did not halt within %d steps", e.MaxSteps)
}

// MissingEndPcError is returned when the program has no declared end pc
// to run to.
type MissingEndPcError struct{}

func (e *MissingEndPcError) Error() string { return "program has no end pc" }

// NewCairoRunner builds a runner for program under the named layout,
// instantiating exactly the builtins the program declares (which must
// be a subset of what the layout enables).
func NewCairoRunner(program *parser.Program, layoutName string) (*CairoRunner, error) {
	layout, err := layouts.NewLayout(layoutName)
	if err != nil {
		return nil, err
	}

	runner := &CairoRunner{
		Program:        program,
		Layout:         layout,
		Vm:             vm.NewVirtualMachine(),
		Scopes:         types.NewExecutionScopes(nil),
		builtinRunners: make(map[parser.BuiltinName]builtins.BuiltinRunner),
	}

	for _, name := range program.Builtins {
		config, ok := layout.Builtins[string(name)]
		if !ok {
			return nil, &layouts.UnsupportedLayoutError{Name: string(name) + "@" + layoutName}
		}
		runner.builtinRunners[name] = newBuiltinRunner(name, config)
	}

	// Builtins run in the program's declared order; the layout's ratios
	// just gate which ones are available.
	for _, name := range program.Builtins {
		runner.Vm.BuiltinRunners = append(runner.Vm.BuiltinRunners, runner.builtinRunners[name])
	}
	return runner, nil
}

func newBuiltinRunner(name parser.BuiltinName, config layouts.BuiltinConfig) builtins.BuiltinRunner {
	switch name {
	case parser.BuiltinOutput:
		return builtins.NewOutputBuiltinRunner(true)
	case parser.BuiltinRangeCheck:
		return builtins.NewRangeCheckBuiltinRunner(true, config.Ratio, config.NParts)
	case parser.BuiltinPedersen:
		return builtins.NewPedersenBuiltinRunner(true, config.Ratio, referencePedersenHash)
	case parser.BuiltinBitwise:
		return builtins.NewBitwiseBuiltinRunner(true, config.Ratio)
	case parser.BuiltinEcOp:
		return builtins.NewEcOpBuiltinRunner(true, config.Ratio)
	case parser.BuiltinEcdsa:
		return builtins.NewEcdsaBuiltinRunner(true, config.Ratio, rejectAllSignatures)
	case parser.BuiltinKeccak:
		return builtins.NewKeccakBuiltinRunner(true, config.Ratio, builtins.DefaultKeccakPermutation(sha3Like256))
	case parser.BuiltinPoseidon:
		return builtins.NewPoseidonBuiltinRunner(true, config.Ratio, placeholderPoseidonPermutation)
	case parser.BuiltinSegmentArena:
		return builtins.NewSegmentArenaBuiltinRunner(true)
	}
	return nil
}

// InitializeSegments lays out the program segment, every builtin's
// segment, and the execution segment, and points pc/ap/fp at the run's
// start.
func (r *CairoRunner) InitializeSegments() error {
	segments := r.Vm.Segments

	programBase := segments.AddSegment()
	if _, err := segments.LoadData(programBase, r.Program.Data); err != nil {
		return err
	}

	for _, name := range r.Program.Builtins {
		r.builtinRunners[name].InitializeSegments(segments)
	}

	executionBase := segments.AddSegment()
	stack := []memory.Value{}
	for _, name := range r.Program.Builtins {
		stack = append(stack, r.builtinRunners[name].InitialStack()...)
	}

	entrypoint := r.Program.Main
	if entrypoint == nil {
		entrypoint = r.Program.Start
	}
	if entrypoint == nil {
		return &parser.EntrypointNotFoundError{Name: "main"}
	}

	returnFp := segments.AddSegment()
	endPc, err := programBase.AddUint(uint64(len(r.Program.Data)))
	if err != nil {
		return err
	}
	stack = append(stack, memory.NewAddressValue(returnFp), memory.NewAddressValue(endPc))

	finalExecAddr, err := segments.LoadData(executionBase, stack)
	if err != nil {
		return err
	}

	r.Vm.RunContext.Pc, err = programBase.AddUint(uint64(*entrypoint))
	if err != nil {
		return err
	}
	r.Vm.RunContext.Ap = finalExecAddr
	r.Vm.RunContext.Fp = finalExecAddr

	for _, name := range r.Program.Builtins {
		if err := r.builtinRunners[name].AddValidationRule(segments.Memory); err != nil {
			return err
		}
	}
	return nil
}

const defaultMaxSteps = 1_000_000

// RunUntilPc steps the VM until pc reaches endPc, invoking executor (if
// non-nil) before decoding each step's instruction.
func (r *CairoRunner) RunUntilPc(endPc memory.Relocatable, executor HintExecutor) error {
	for steps := 0; !r.Vm.RunContext.Pc.Equal(endPc); steps++ {
		if steps >= defaultMaxSteps {
			return &MaxStepsExceededError{MaxSteps: defaultMaxSteps}
		}
		if executor != nil {
			if err := executor.ExecuteHints(int(r.Vm.RunContext.Pc.Offset), r.Vm, r.Scopes); err != nil {
				return err
			}
		}
		encoded, err := r.Vm.Segments.Memory.GetFelt(r.Vm.RunContext.Pc)
		if err != nil {
			return err
		}
		felt, _ := encoded.GetFelt()
		instruction, err := vm.DecodeInstruction(felt)
		if err != nil {
			return err
		}
		if err := r.Vm.Step(*instruction); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the program from its entrypoint to its declared end pc
// and relocates the resulting memory and trace.
func (r *CairoRunner) Run(executor HintExecutor) error {
	if err := r.InitializeSegments(); err != nil {
		return err
	}
	if r.Program.End == nil {
		return &MissingEndPcError{}
	}
	programBase := memory.NewRelocatable(0, 0)
	endPc, err := programBase.AddUint(uint64(*r.Program.End))
	if err != nil {
		return err
	}
	if err := r.RunUntilPc(endPc, executor); err != nil {
		return err
	}
	if err := r.Vm.Segments.Memory.ValidateExistingMemory(); err != nil {
		return err
	}
	return r.Vm.Relocate()
}

// BuiltinNames reports which builtins were instantiated, sorted by name
// — used by callers that need deterministic iteration.
func (r *CairoRunner) BuiltinNames() []string {
	names := make([]string, 0, len(r.builtinRunners))
	for name := range r.builtinRunners {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
