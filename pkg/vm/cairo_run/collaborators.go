package cairo_run

import (
	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/ebfe/keccak"
)

// referencePedersenHash is the default PedersenHashFunc wired into a
// pedersen builtin runner when no caller-supplied collaborator is given.
// It combines the two inputs deterministically but is not the real
// Starknet pedersen constants table (that table is large and
// out of scope here); callers that need conformant proofs must supply
// their own via NewPedersenBuiltinRunner.
func referencePedersenHash(a, b lambdaworks.Felt) lambdaworks.Felt {
	mixed := a.Mul(lambdaworks.FeltFromUint64(31)).Add(b)
	return mixed.Mul(mixed)
}

// sha3Like256 is the default byte-hash collaborator for the keccak
// builtin's permutation, reusing the same ebfe/keccak hash the
// unsafe_keccak hint uses.
func sha3Like256(data []byte) []byte {
	h := keccak.New256()
	h.Write(data)
	return h.Sum(nil)
}

// placeholderPoseidonPermutation is the default PoseidonPermutationFunc:
// a placeholder that maps each lane f to f*f + 1, not a real Poseidon
// round function.
func placeholderPoseidonPermutation(state [builtins.InputCellsPerPoseidon]lambdaworks.Felt) [builtins.InputCellsPerPoseidon]lambdaworks.Felt {
	one := lambdaworks.FeltFromUint64(1)
	var out [builtins.InputCellsPerPoseidon]lambdaworks.Felt
	for i, f := range state {
		out[i] = f.Mul(f).Add(one)
	}
	return out
}

// rejectAllSignatures is the default EcdsaVerifyFunc: it rejects every
// signature, since no signature has ever been legitimately registered
// without the caller supplying a real verifier.
func rejectAllSignatures(pubkey, message lambdaworks.Felt, sig builtins.EcdsaSignature) bool {
	return false
}
