package hints_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/hints"
)

func TestHintCollectionEmpty(t *testing.T) {
	hc, err := hints.NewHintCollection(map[int][]hints.HintParams{}, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(hc.IntoMap()) != 0 {
		t.Errorf("expected empty collection")
	}
}

func TestHintCollectionInvalidPc(t *testing.T) {
	input := map[int][]hints.HintParams{
		5: {{Code: "pass"}},
	}
	if _, err := hints.NewHintCollection(input, 3, true); err == nil {
		t.Errorf("expected InvalidHintPc error")
	}
}

func TestHintCollectionDenseAndSparseAgree(t *testing.T) {
	input := map[int][]hints.HintParams{
		0: {{Code: "a"}, {Code: "b"}},
		2: {{Code: "c"}},
	}
	dense, err := hints.NewHintCollection(input, 5, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	sparse, err := hints.NewHintCollection(input, 5, false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	denseMap := dense.IntoMap()
	sparseMap := sparse.IntoMap()
	if len(denseMap) != len(sparseMap) {
		t.Fatalf("expected matching pc sets, got %d vs %d", len(denseMap), len(sparseMap))
	}
	for pc, params := range denseMap {
		other, ok := sparseMap[pc]
		if !ok {
			t.Fatalf("pc %d missing from sparse map", pc)
		}
		if len(params) != len(other) {
			t.Fatalf("pc %d length mismatch", pc)
		}
		for i := range params {
			if params[i].Code != other[i].Code {
				t.Errorf("pc %d index %d: dense=%s sparse=%s", pc, i, params[i].Code, other[i].Code)
			}
		}
	}
}

func TestHintCollectionGetMissingPc(t *testing.T) {
	hc, err := hints.NewHintCollection(map[int][]hints.HintParams{0: {{Code: "a"}}}, 5, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if hc.Get(1) != nil {
		t.Errorf("expected nil for pc with no hints")
	}
}
