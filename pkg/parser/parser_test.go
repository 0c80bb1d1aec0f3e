package parser_test

import (
	"fmt"
	"testing"

	"github.com/cairovm-core/cairovm/pkg/parser"
)

func sampleArtifact() string {
	return fmt.Sprintf(`{
		"prime": %q,
		"data": ["0x480680017fff8000","0x1","0x480680017fff8000","0x1","0x480680017fff8000","0x208b7fff7fff7ffe"],
		"builtins": [],
		"hints": {},
		"identifiers": {
			"__main__.main": {"pc": 0, "type": "function"}
		},
		"reference_manager": {"references": []},
		"attributes": [],
		"debug_info": {"instruction_locations": {}},
		"main_scope": "__main__"
	}`, parser.ExpectedStarkPrime)
}

func TestParseProgramBasic(t *testing.T) {
	entry := "main"
	prog, err := parser.ParseProgram([]byte(sampleArtifact()), &entry)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(prog.Data) != 6 {
		t.Errorf("expected 6 data words, got %d", len(prog.Data))
	}
	if prog.Main == nil || *prog.Main != 0 {
		t.Errorf("expected main == 0, got %v", prog.Main)
	}
	if len(prog.Constants) != 0 {
		t.Errorf("expected no constants, got %d", len(prog.Constants))
	}
	if len(prog.Builtins) != 0 {
		t.Errorf("expected no builtins, got %d", len(prog.Builtins))
	}
}

func TestParseProgramPrimeDiffers(t *testing.T) {
	raw := `{"prime": "0x1", "data": [], "builtins": [], "hints": {}, "identifiers": {}, "reference_manager": {"references": []}, "attributes": [], "debug_info": {"instruction_locations": {}}, "main_scope": "__main__"}`
	if _, err := parser.ParseProgram([]byte(raw), nil); err == nil {
		t.Errorf("expected PrimeDiffers error")
	}
}

func TestParseProgramEntrypointNotFound(t *testing.T) {
	entry := "missing"
	_, err := parser.ParseProgram([]byte(sampleArtifact()), &entry)
	if err == nil {
		t.Errorf("expected EntrypointNotFound error")
	}
}

func TestParseProgramUnsupportedBuiltin(t *testing.T) {
	raw := fmt.Sprintf(`{"prime": %q, "data": [], "builtins": ["not_a_builtin"], "hints": {}, "identifiers": {}, "reference_manager": {"references": []}, "attributes": [], "debug_info": {"instruction_locations": {}}, "main_scope": "__main__"}`, parser.ExpectedStarkPrime)
	if _, err := parser.ParseProgram([]byte(raw), nil); err == nil {
		t.Errorf("expected UnsupportedBuiltin error")
	}
}

func TestParseProgramConstWithoutValue(t *testing.T) {
	raw := fmt.Sprintf(`{"prime": %q, "data": [], "builtins": [], "hints": {}, "identifiers": {"X": {"type": "const"}}, "reference_manager": {"references": []}, "attributes": [], "debug_info": {"instruction_locations": {}}, "main_scope": "__main__"}`, parser.ExpectedStarkPrime)
	if _, err := parser.ParseProgram([]byte(raw), nil); err == nil {
		t.Errorf("expected ConstWithoutValue error")
	}
}

func TestParseProgramInvalidHintPc(t *testing.T) {
	raw := fmt.Sprintf(`{"prime": %q, "data": ["0x1","0x2","0x3"], "builtins": [], "hints": {"5": [{"code": "pass", "accessible_scopes": [], "flow_tracking_data": {"ap_tracking": {"group": 0, "offset": 0}, "reference_ids": {}}}]}, "identifiers": {}, "reference_manager": {"references": []}, "attributes": [], "debug_info": {"instruction_locations": {}}, "main_scope": "__main__"}`, parser.ExpectedStarkPrime)
	if _, err := parser.ParseProgram([]byte(raw), nil); err == nil {
		t.Errorf("expected InvalidHintPc error")
	}
}
