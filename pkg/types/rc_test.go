package types_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/types"
)

func TestRcCloneSharesStrongCount(t *testing.T) {
	rc := types.NewRc(42)
	clone := rc.Clone()

	if rc.StrongCount() != 2 {
		t.Fatalf("expected strong count 2, got %d", rc.StrongCount())
	}
	if clone.Get() != 42 {
		t.Errorf("expected clone to see the shared value, got %d", clone.Get())
	}

	rc.Drop()
	if clone.StrongCount() != 1 {
		t.Errorf("expected strong count 1 after one drop, got %d", clone.StrongCount())
	}

	clone.Drop()
	if clone.StrongCount() != 0 {
		t.Errorf("expected strong count 0 after both drops, got %d", clone.StrongCount())
	}
}

func TestWeakUpgradeFailsAfterLastStrongDrops(t *testing.T) {
	rc := types.NewRc("value")
	weak := rc.Downgrade()

	rc.Drop()

	if _, ok := weak.Upgrade(); ok {
		t.Errorf("expected upgrade to fail once the last strong handle dropped")
	}
}

func TestWeakUpgradeSucceedsWhileStrongAlive(t *testing.T) {
	rc := types.NewRc("value")
	weak := rc.Downgrade()

	upgraded, ok := weak.Upgrade()
	if !ok {
		t.Fatalf("expected upgrade to succeed")
	}
	if upgraded.Get() != "value" {
		t.Errorf("expected upgraded handle to see the shared value, got %q", upgraded.Get())
	}
	if rc.StrongCount() != 2 {
		t.Errorf("expected strong count 2 after upgrade, got %d", rc.StrongCount())
	}
}
