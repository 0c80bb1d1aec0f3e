package hint_codes

// These match the hint source strings common/dict.cairo's macros embed
// verbatim into a compiled program's hints array; the processor dispatches
// on the literal code string exactly as the compiler emitted it.
const (
	DEFAULT_DICT_NEW = "if '__dict_manager' not in globals():\n" +
		"    from starkware.cairo.common.dict import DictManager\n" +
		"    __dict_manager = DictManager()\n\n" +
		"memory[ap] = __dict_manager.new_default_dict(segments, ids.default_value)"

	DICT_READ = "dict_tracker = __dict_manager.get_tracker(ids.dict_ptr)\n" +
		"dict_tracker.current_ptr += ids.DictAccess.SIZE\n" +
		"ids.value = dict_tracker.data[ids.key]"

	DICT_WRITE = "dict_tracker = __dict_manager.get_tracker(ids.dict_ptr)\n" +
		"dict_tracker.current_ptr += ids.DictAccess.SIZE\n" +
		"ids.prev_value = dict_tracker.data[ids.key]\n" +
		"dict_tracker.data[ids.key] = ids.new_value"

	DICT_UPDATE = "# Verify dict pointer and prev value.\n" +
		"dict_ptr = ids.dict_ptr.address_\n" +
		"current_value = __dict_manager.get_tracker(dict_ptr).data[ids.key]\n" +
		"assert current_value == ids.prev_value, \\\n" +
		"    f'Wrong previous value in dict. Got {ids.prev_value}, expected {current_value}.'\n\n" +
		"# Update value.\n" +
		"__dict_manager.get_tracker(dict_ptr).data[ids.key] = ids.new_value"
)
