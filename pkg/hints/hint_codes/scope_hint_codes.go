package hint_codes

const (
	VM_ENTER_SCOPE = "vm_enter_scope()"
	VM_EXIT_SCOPE  = "vm_exit_scope()"
	ADD_SEGMENT    = "memory[ap] = segments.add()"
)
