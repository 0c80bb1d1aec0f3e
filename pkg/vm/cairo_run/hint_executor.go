package cairo_run

import (
	"github.com/cairovm-core/cairovm/pkg/hints"
	"github.com/cairovm-core/cairovm/pkg/parser"
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm"
)

// ProgramHintExecutor is the default HintExecutor: it runs every hint a
// Program's compiled artifact attached to the pc about to execute,
// resolving each one's ids against the program's flat reference list.
type ProgramHintExecutor struct {
	Program *parser.Program
}

// NewProgramHintExecutor builds an executor bound to program's own hints
// and references.
func NewProgramHintExecutor(program *parser.Program) *ProgramHintExecutor {
	return &ProgramHintExecutor{Program: program}
}

// ExecuteHints implements HintExecutor.
func (p *ProgramHintExecutor) ExecuteHints(pc int, machine *vm.VirtualMachine, scopes *types.ExecutionScopes) error {
	if p.Program.Hints == nil {
		return nil
	}
	for _, params := range p.Program.Hints.Get(pc) {
		ids, err := hints.BuildIdsManager(params, p.Program.References)
		if err != nil {
			return err
		}
		ctx := hints.Context{
			Ap:              machine.RunContext.Ap,
			Fp:              machine.RunContext.Fp,
			CurrentTracking: hints.ApTracking{Group: params.ApTracking.Group, Offset: params.ApTracking.Offset},
		}
		if err := hints.ExecuteHint(params.Code, ids, machine.Segments.Memory, machine.Segments, ctx, scopes); err != nil {
			return err
		}
	}
	return nil
}
