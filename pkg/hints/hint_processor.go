package hints

import (
	"strings"

	"github.com/cairovm-core/cairovm/pkg/hints/hint_codes"
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/pkg/errors"
)

// BuildIdsManager resolves a hint's ReferenceIds against the program's
// flat reference list into name-keyed HintReferences, stripping each
// accessible-scope's dotted prefix down to the bare ids name a hint's
// Python source refers to it by.
func BuildIdsManager(params HintParams, references []*HintReference) (IdsManager, error) {
	resolved := make(map[string]*HintReference, len(params.ReferenceIds))
	for qualifiedName, id := range params.ReferenceIds {
		if id < 0 || id >= len(references) {
			return IdsManager{}, errors.Errorf("reference id %d out of range", id)
		}
		parts := strings.Split(qualifiedName, ".")
		resolved[parts[len(parts)-1]] = references[id]
	}
	return NewIdsManager(resolved), nil
}

// UnknownHintCodeError is returned when a hint's code does not match any
// of the dispatcher's known implementations.
type UnknownHintCodeError struct {
	Code string
}

func (e *UnknownHintCodeError) Error() string {
	return "unknown hint: " + e.Code
}

// ExecuteHint dispatches one hint's code to its Go implementation. ctx's
// CurrentTracking must be the hint's own ApTracking, as HintReference
// resolution requires.
func ExecuteHint(code string, ids IdsManager, mem *memory.Memory, segments *memory.SegmentManager, ctx Context, scopes *types.ExecutionScopes) error {
	switch code {
	case hint_codes.ADD_SEGMENT:
		return addSegment(mem, segments, ctx)
	case hint_codes.VM_ENTER_SCOPE:
		return vmEnterScope(scopes)
	case hint_codes.VM_EXIT_SCOPE:
		return vmExitScope(scopes)
	case hint_codes.DEFAULT_DICT_NEW:
		return defaultDictNew(ids, scopes, mem, segments, ctx)
	case hint_codes.DICT_READ:
		return dictRead(ids, scopes, mem, ctx)
	case hint_codes.DICT_WRITE:
		return dictWrite(ids, scopes, mem, ctx)
	case hint_codes.DICT_UPDATE:
		return dictUpdate(ids, scopes, mem, ctx)
	case hint_codes.UNSAFE_KECCAK:
		return unsafeKeccak(ids, scopes, mem, ctx)
	case hint_codes.UNSAFE_KECCAK_FINALIZE:
		return unsafeKeccakFinalize(ids, mem, ctx)
	case hint_codes.UINT256_ADD:
		return uint256Add(ids, mem, ctx)
	case hint_codes.UINT256_ADD_LOW:
		return uint256AddLow(ids, mem, ctx)
	default:
		return &UnknownHintCodeError{Code: code}
	}
}
