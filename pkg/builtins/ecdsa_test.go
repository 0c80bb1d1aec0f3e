package builtins_test

import (
	"testing"

	"github.com/cairovm-core/cairovm/pkg/builtins"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
)

func signatureMatchesInputs(pubkey, message lambdaworks.Felt, sig builtins.EcdsaSignature) bool {
	return sig.R.Equal(pubkey) && sig.S.Equal(message)
}

func TestEcdsaAcceptsRegisteredSignature(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewEcdsaBuiltinRunner(true, 512, signatureMatchesInputs)
	runner.InitializeSegments(segments)
	if err := runner.AddValidationRule(segments.Memory); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pubkeyAddr := memory.NewRelocatable(runner.Base().SegmentIndex, 0)
	messageAddr := memory.NewRelocatable(runner.Base().SegmentIndex, 1)

	pubkey := lambdaworks.FeltFromUint64(5)
	message := lambdaworks.FeltFromUint64(9)
	runner.AddSignature(pubkeyAddr, builtins.EcdsaSignature{R: pubkey, S: message})

	if err := segments.Memory.Insert(pubkeyAddr, memory.NewFeltValue(pubkey)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := segments.Memory.Insert(messageAddr, memory.NewFeltValue(message)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestEcdsaRejectsMissingSignature(t *testing.T) {
	segments := memory.NewSegmentManager()
	runner := builtins.NewEcdsaBuiltinRunner(true, 512, signatureMatchesInputs)
	runner.InitializeSegments(segments)
	if err := runner.AddValidationRule(segments.Memory); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	pubkeyAddr := memory.NewRelocatable(runner.Base().SegmentIndex, 0)
	messageAddr := memory.NewRelocatable(runner.Base().SegmentIndex, 1)
	if err := segments.Memory.Insert(pubkeyAddr, memory.NewFeltValue(lambdaworks.FeltFromUint64(5))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err := segments.Memory.Insert(messageAddr, memory.NewFeltValue(lambdaworks.FeltFromUint64(9)))
	if err == nil {
		t.Errorf("expected a missing-signature error")
	}
}
