package layouts_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/layouts"
)

func TestNewLayoutPlainHasNoBuiltins(t *testing.T) {
	l, err := layouts.NewLayout("plain")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(l.Builtins) != 0 {
		t.Errorf("expected plain layout to have no builtins, got %v", l.Builtins)
	}
}

func TestNewLayoutAllCairoHasExpectedBuiltins(t *testing.T) {
	l, err := layouts.NewLayout("all_cairo")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, name := range []string{"output", "pedersen", "range_check", "ecdsa", "bitwise", "ec_op", "keccak", "poseidon", "segment_arena"} {
		if _, ok := l.Builtins[name]; !ok {
			t.Errorf("expected all_cairo layout to enable %s", name)
		}
	}
}

func TestNewLayoutUnsupportedName(t *testing.T) {
	if _, err := layouts.NewLayout("not_a_layout"); err == nil {
		t.Errorf("expected UnsupportedLayout error")
	}
}

func TestCellsPerInvocationFixedConstants(t *testing.T) {
	cases := map[string][2]int{
		"bitwise":     {5, 2},
		"ec_op":       {7, 5},
		"pedersen":    {3, 2},
		"poseidon":    {6, 3},
		"ecdsa":       {2, 2},
		"range_check": {1, 1},
	}
	for name, want := range cases {
		cells, input, ok := layouts.CellsPerInvocation(name)
		if !ok {
			t.Fatalf("expected %s to be known", name)
		}
		if cells != want[0] || input != want[1] {
			t.Errorf("%s: expected %v, got (%d, %d)", name, want, cells, input)
		}
	}
}
