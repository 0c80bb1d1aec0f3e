package vm

import "github.com/cairovm-core/cairovm/pkg/vm/memory"

// TraceEntry records the three registers' state at the start of one
// executed step, before segments have been relocated.
type TraceEntry struct {
	Pc memory.Relocatable
	Ap memory.Relocatable
	Fp memory.Relocatable
}

// RelocatedTraceEntry is a TraceEntry after relocation, with every
// register expressed as a flat address.
type RelocatedTraceEntry struct {
	Pc uint64
	Ap uint64
	Fp uint64
}
