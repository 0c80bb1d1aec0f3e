package hint_codes

const UNSAFE_KECCAK = "from eth_hash.auto import keccak\n" +
	"data, length = ids.data, ids.length\n\n" +
	"if '__keccak_max_size' in globals():\n" +
	"    assert length <= __keccak_max_size, \\\n" +
	"        f'unsafe_keccak() can only be used with length<={__keccak_max_size}. ' \\\n" +
	"        f'Got: length={length}.'\n\n" +
	"keccak_input = bytearray()\n" +
	"for word_i, byte_i in enumerate(range(0, length, 16)):\n" +
	"    word = memory[data + word_i]\n" +
	"    n_bytes = min(16, length - byte_i)\n" +
	"    assert 0 <= word < 2 ** (8 * n_bytes)\n" +
	"    keccak_input += word.to_bytes(n_bytes, 'big')\n\n" +
	"hashed = keccak(keccak_input)\n" +
	"ids.high = int.from_bytes(hashed[:16], 'big')\n" +
	"ids.low = int.from_bytes(hashed[16:32], 'big')"

const UNSAFE_KECCAK_FINALIZE = "from eth_hash.auto import keccak\n" +
	"keccak_input = bytearray()\n" +
	"n_elems = ids.keccak_state.end_ptr - ids.keccak_state.start_ptr\n" +
	"for word in memory.get_range(ids.keccak_state.start_ptr, n_elems):\n" +
	"    keccak_input += word.to_bytes(16, 'big')\n" +
	"hashed = keccak(bytes(keccak_input))\n" +
	"ids.high = int.from_bytes(hashed[:16], 'big')\n" +
	"ids.low = int.from_bytes(hashed[16:32], 'big')"
