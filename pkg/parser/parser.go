package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cairovm-core/cairovm/pkg/hints"
	"github.com/cairovm-core/cairovm/pkg/lambdaworks"
	"github.com/cairovm-core/cairovm/pkg/vm/memory"
	"github.com/pkg/errors"
)

// rawArtifact mirrors the top-level keys of a compiled program artifact;
// unrecognized keys are ignored by encoding/json by default.
type rawArtifact struct {
	Prime            string                     `json:"prime"`
	Data             []string                   `json:"data"`
	Builtins         []string                   `json:"builtins"`
	Hints            map[string][]rawHintParams `json:"hints"`
	Identifiers      map[string]rawIdentifier   `json:"identifiers"`
	ReferenceManager rawReferenceManager        `json:"reference_manager"`
	Attributes       []rawAttribute             `json:"attributes"`
	DebugInfo        rawDebugInfo               `json:"debug_info"`
	MainScope        string                     `json:"main_scope"`
	CompilerVersion  string                     `json:"compiler_version"`
}

type rawHintParams struct {
	Code              string              `json:"code"`
	AccessibleScopes  []string            `json:"accessible_scopes"`
	FlowTrackingData  rawFlowTrackingData `json:"flow_tracking_data"`
}

type rawFlowTrackingData struct {
	ApTracking   rawApTracking  `json:"ap_tracking"`
	ReferenceIds map[string]int `json:"reference_ids"`
}

type rawApTracking struct {
	Group  int `json:"group"`
	Offset int `json:"offset"`
}

type rawReferenceManager struct {
	References []rawReference `json:"references"`
}

type rawReference struct {
	ApTrackingData rawApTracking `json:"ap_tracking_data"`
	Pc             int           `json:"pc"`
	Value          string        `json:"value"`
}

type rawAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Start int    `json:"start_pc"`
	End   int    `json:"end_pc"`
}

type rawDebugInfo struct {
	InstructionLocations map[string]json.RawMessage `json:"instruction_locations"`
}

type rawIdentifier struct {
	Pc          *int                     `json:"pc"`
	Type        string                   `json:"type"`
	Destination string                   `json:"destination"`
	Decorators  []string                 `json:"decorators"`
	Value       json.Number              `json:"value"`
	Size        *int                     `json:"size"`
	FullName    string                   `json:"full_name"`
	References  []int                    `json:"references"`
	Members     map[string]rawIdentifier `json:"members"`
	CairoType   string                   `json:"cairo_type"`
}

// ParseProgram decodes a compiled program artifact's JSON bytes into a
// Program, applying every construction-time check from §4.H/I.
func ParseProgram(raw []byte, entrypoint *string) (*Program, error) {
	var artifact rawArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, errors.Wrap(err, "decoding program artifact")
	}
	if artifact.Prime != ExpectedStarkPrime {
		return nil, &PrimeDiffersError{Got: artifact.Prime}
	}

	data, err := parseData(artifact.Data)
	if err != nil {
		return nil, err
	}

	references, err := parseReferences(artifact.ReferenceManager.References)
	if err != nil {
		return nil, err
	}

	identifiers, err := parseIdentifiers(artifact.Identifiers)
	if err != nil {
		return nil, err
	}

	constants := map[string]lambdaworks.Felt{}
	for name, id := range identifiers {
		if id.Type == "const" {
			if id.Value == nil {
				return nil, &ConstWithoutValueError{Name: name}
			}
			constants[name] = *id.Value
		}
	}

	builtins, err := parseBuiltins(artifact.Builtins)
	if err != nil {
		return nil, err
	}

	var main, start, end *int
	if entrypoint != nil {
		id, ok := identifiers["__main__."+*entrypoint]
		if !ok || id.Pc == nil {
			return nil, &EntrypointNotFoundError{Name: *entrypoint}
		}
		main = id.Pc
	}
	if id, ok := identifiers["__main__.__start__"]; ok {
		start = id.Pc
	}
	if id, ok := identifiers["__main__.__end__"]; ok {
		end = id.Pc
	}

	var errAttrs []Attribute
	for _, a := range artifact.Attributes {
		if a.Name == "error_message" {
			errAttrs = append(errAttrs, Attribute{Name: a.Name, Value: a.Value, Start: a.Start, End: a.End})
		}
	}

	byPc := map[int][]hints.HintParams{}
	for pcStr, params := range artifact.Hints {
		pc, err := parsePc(pcStr)
		if err != nil {
			return nil, err
		}
		var converted []hints.HintParams
		for _, p := range params {
			converted = append(converted, hints.HintParams{
				Code:             p.Code,
				AccessibleScopes: p.AccessibleScopes,
				ApTracking:       hints.ApTrackingData{Group: p.FlowTrackingData.ApTracking.Group, Offset: p.FlowTrackingData.ApTracking.Offset},
				ReferenceIds:     p.FlowTrackingData.ReferenceIds,
			})
		}
		byPc[pc] = converted
	}
	hintCollection, err := hints.NewHintCollection(byPc, len(data), len(byPc) > len(data)/2)
	if err != nil {
		return nil, err
	}

	instructionLocations, err := parseInstructionLocations(artifact.DebugInfo.InstructionLocations)
	if err != nil {
		return nil, err
	}

	return &Program{
		Data:                 data,
		Hints:                hintCollection,
		Main:                 main,
		Start:                start,
		End:                  end,
		ErrorAttributes:      errAttrs,
		InstructionLocations: instructionLocations,
		Identifiers:          identifiers,
		References:           references,
		Constants:            constants,
		Builtins:             builtins,
	}, nil
}

// parseInstructionLocations converts the artifact's pc-keyed debug_info
// blob into the typed map a Program carries. Each entry's raw JSON is
// preserved verbatim (the core never inspects it beyond carrying it
// through to a trace dump) while the pc itself is parsed into the map's
// key so Program.InstructionLocations can be looked up with an int pc.
func parseInstructionLocations(raw map[string]json.RawMessage) (map[int]InstructionLocation, error) {
	out := make(map[int]InstructionLocation, len(raw))
	for pcStr, msg := range raw {
		pc, err := parsePc(pcStr)
		if err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal(msg, &fields); err != nil {
			return nil, errors.Wrapf(err, "invalid instruction location for pc %q", pcStr)
		}
		out[pc] = InstructionLocation{Pc: pc, Raw: fields}
	}
	return out, nil
}

func parsePc(s string) (int, error) {
	pc, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hint pc %q", s)
	}
	return pc, nil
}

func parseData(words []string) ([]memory.Value, error) {
	out := make([]memory.Value, 0, len(words))
	for _, w := range words {
		f, err := lambdaworks.FeltFromHex(w)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid data word %q", w)
		}
		out = append(out, memory.NewFeltValue(f))
	}
	return out, nil
}

func parseIdentifiers(raw map[string]rawIdentifier) (map[string]Identifier, error) {
	out := make(map[string]Identifier, len(raw))
	for name, id := range raw {
		converted, err := convertIdentifier(id)
		if err != nil {
			return nil, err
		}
		out[name] = converted
	}
	return out, nil
}

func convertIdentifier(id rawIdentifier) (Identifier, error) {
	var value *lambdaworks.Felt
	if id.Value != "" {
		f, err := lambdaworks.FeltFromDecString(string(id.Value))
		if err != nil {
			return Identifier{}, errors.Wrapf(err, "invalid identifier value %q", id.Value)
		}
		value = &f
	}
	var members map[string]Identifier
	if len(id.Members) > 0 {
		members = make(map[string]Identifier, len(id.Members))
		for name, m := range id.Members {
			converted, err := convertIdentifier(m)
			if err != nil {
				return Identifier{}, err
			}
			members[name] = converted
		}
	}
	return Identifier{
		Pc:          id.Pc,
		Type:        id.Type,
		Destination: id.Destination,
		Decorators:  id.Decorators,
		Value:       value,
		Size:        id.Size,
		FullName:    id.FullName,
		References:  id.References,
		Members:     members,
		CairoType:   id.CairoType,
	}, nil
}

func parseBuiltins(names []string) ([]BuiltinName, error) {
	out := make([]BuiltinName, 0, len(names))
	for _, n := range names {
		b := BuiltinName(strings.TrimSuffix(n, "_builtin"))
		if !validBuiltins[b] {
			return nil, &UnsupportedBuiltinError{Name: n}
		}
		out = append(out, b)
	}
	return out, nil
}

func parseReferences(refs []rawReference) ([]*hints.HintReference, error) {
	out := make([]*hints.HintReference, 0, len(refs))
	for _, r := range refs {
		ref, err := ParseReferenceExpression(r.Value)
		if err != nil {
			return nil, err
		}
		ref.ApTracking = hints.ApTracking{Group: r.ApTrackingData.Group, Offset: r.ApTrackingData.Offset}
		out = append(out, ref)
	}
	return out, nil
}
