// Package types holds the core's shared value types that sit above
// pkg/vm/memory: ExecutionScopes, the HintType union scopes store, and
// the reference-counted handle used to share a DictManager across
// scopes.
package types

// counter is the shared strong/weak reference block backing Rc; every
// clone of an Rc[T] points at the same counter.
type counter struct {
	strong int
	weak   int
	value  interface{}
}

// Rc is a single-threaded reference-counted handle, modeling the core's
// one sharing primitive (used to hold a *dict_manager.DictManager across
// multiple ExecutionScopes entries). Strong count controls destruction
// of the held value; weak count keeps the counter block itself alive so
// a Weak can still report "already destroyed" instead of dangling.
type Rc[T any] struct {
	block *counter
}

// NewRc wraps value in a fresh Rc with strong count 1.
func NewRc[T any](value T) Rc[T] {
	return Rc[T]{block: &counter{strong: 1, value: value}}
}

// Clone increments the strong count and returns a new handle to the same
// value.
func (r Rc[T]) Clone() Rc[T] {
	r.block.strong++
	return r
}

// Get returns the held value, or the zero value of T once the last
// strong handle has been dropped; it does not panic.
func (r Rc[T]) Get() T {
	if r.block.strong == 0 {
		var zero T
		return zero
	}
	return r.block.value.(T)
}

// Drop decrements the strong count, destroying the value exactly once
// when it reaches zero (clearing the stored value so it can be garbage
// collected even if weak handles keep the counter block alive).
func (r Rc[T]) Drop() {
	if r.block.strong == 0 {
		return
	}
	r.block.strong--
	if r.block.strong == 0 {
		var zero T
		r.block.value = zero
	}
}

// StrongCount reports the number of live strong handles.
func (r Rc[T]) StrongCount() int {
	return r.block.strong
}

// Downgrade produces a Weak handle that does not keep the value alive by
// itself.
func (r Rc[T]) Downgrade() Weak[T] {
	r.block.weak++
	return Weak[T]{block: r.block}
}

// Weak is a non-owning handle to an Rc's counter block.
type Weak[T any] struct {
	block *counter
}

// Upgrade returns a new strong Rc handle if the value is still alive
// (strong count > 0), else ok is false.
func (w Weak[T]) Upgrade() (Rc[T], bool) {
	if w.block.strong == 0 {
		return Rc[T]{}, false
	}
	w.block.strong++
	return Rc[T]{block: w.block}, true
}
