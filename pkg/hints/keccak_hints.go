package hints

import (
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/types"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/ebfe/keccak"
	"github.com/pkg/errors"
)

const keccakMaxSizeScopeName = "__keccak_max_size"

// unsafeKeccak implements the unsafe_keccak hint: hashes ids.length bytes
// read word-by-word (16 bytes each, big-endian) from ids.data and writes
// the 256-bit digest split across ids.high/ids.low.
func unsafeKeccak(ids IdsManager, scopes *types.ExecutionScopes, mem *memory.Memory, ctx Context) error {
	lengthFelt, err := ids.GetFelt("length", mem, ctx)
	if err != nil {
		return err
	}
	length, err := lengthFelt.ToU64()
	if err != nil {
		return err
	}

	if maxSize, err := scopes.GetFelt(keccakMaxSizeScopeName); err == nil {
		if bound, err := maxSize.ToU64(); err == nil && length > bound {
			return errors.Errorf("unsafe_keccak() can only be used with length<=%d. Got: length=%d", bound, length)
		}
	}

	data, err := ids.GetAddress("data", mem, ctx)
	if err != nil {
		return err
	}

	digest, err := hashWordRange(mem, data, length)
	if err != nil {
		return err
	}
	return writeKeccakDigest(ids, mem, ctx, digest)
}

// unsafeKeccakFinalize implements unsafe_keccak_finalize: hashes the
// whole span [keccak_state.start_ptr, keccak_state.end_ptr) as one run of
// 16-byte words and writes the digest the same way unsafeKeccak does.
func unsafeKeccakFinalize(ids IdsManager, mem *memory.Memory, ctx Context) error {
	startAddr, err := ids.GetStructFieldAddress("keccak_state", 0, mem, ctx)
	if err != nil {
		return err
	}
	endAddr, err := ids.GetStructFieldAddress("keccak_state", 1, mem, ctx)
	if err != nil {
		return err
	}
	startVal, err := mem.GetAddress(startAddr)
	if err != nil {
		return err
	}
	endVal, err := mem.GetAddress(endAddr)
	if err != nil {
		return err
	}
	startPtr, err := startVal.TryIntoAddress()
	if err != nil {
		return err
	}
	endPtr, err := endVal.TryIntoAddress()
	if err != nil {
		return err
	}
	nWords, err := endPtr.Sub(startPtr)
	if err != nil {
		return err
	}

	digest, err := hashWordRange(mem, startPtr, nWords*16)
	if err != nil {
		return err
	}
	return writeKeccakDigest(ids, mem, ctx, digest)
}

// hashWordRange reads ceil(length/16) consecutive 16-byte-big-endian
// words starting at base, concatenates exactly length bytes of them, and
// returns the keccak-256 digest.
func hashWordRange(mem *memory.Memory, base memory.Relocatable, length uint64) ([]byte, error) {
	input := make([]byte, 0, length)
	for byteIdx, wordIdx := uint64(0), uint64(0); byteIdx < length; byteIdx, wordIdx = byteIdx+16, wordIdx+1 {
		wordAddr, err := base.AddUint(wordIdx)
		if err != nil {
			return nil, err
		}
		wordVal, err := mem.GetFelt(wordAddr)
		if err != nil {
			return nil, err
		}
		word, _ := wordVal.GetFelt()

		nBytes := length - byteIdx
		if nBytes > 16 {
			nBytes = 16
		}
		if uint64(word.Bits()) > 8*nBytes {
			return nil, errors.Errorf("invalid word size: %s", word.ToHexString())
		}

		be := word.ToBeBytes()
		input = append(input, be[32-nBytes:]...)
	}

	hasher := keccak.New256()
	hasher.Write(input)
	return hasher.Sum(nil), nil
}

func writeKeccakDigest(ids IdsManager, mem *memory.Memory, ctx Context, digest []byte) error {
	high := lambdaworks.FeltFromBeBytesSlice(digest[:16])
	low := lambdaworks.FeltFromBeBytesSlice(digest[16:32])
	if err := ids.Insert("high", memory.NewFeltValue(high), mem, ctx); err != nil {
		return err
	}
	return ids.Insert("low", memory.NewFeltValue(low), mem, ctx)
}
