package hints

// ApTrackingData is the {group, offset} pair attached to a HintParams'
// flow_tracking_data, matching the compiled artifact's JSON shape.
type ApTrackingData struct {
	Group  int
	Offset int
}

// HintParams is one hint attached to a program counter: its source code
// plus the scope/reference bookkeeping needed to run it.
type HintParams struct {
	Code             string
	AccessibleScopes []string
	ApTracking       ApTrackingData
	ReferenceIds     map[string]int
}

// HintRange is a (start, length) slice into a flat []HintParams. A range
// with length zero is never stored.
type HintRange struct {
	Start  int
	Length int
}

// InvalidHintPcError is returned when constructing a HintCollection from
// input referencing a PC at or beyond the program's length.
type InvalidHintPcError struct {
	Pc     int
	Length int
}

func (e *InvalidHintPcError) Error() string {
	return "hint pc out of program range"
}

// HintCollection indexes HintParams by program counter, in one of two
// representations chosen once per program: dense (a PC-indexed slice of
// optional ranges) for densely-hinted programs, sparse (a map) for
// sparse ones. Both share the same flat backing slice and read API.
type HintCollection struct {
	flat    []HintParams
	dense   []HintRange // nil entries represented by Length == 0
	sparse  map[int]HintRange
	isDense bool
}

// NewHintCollection builds a collection from a pc -> []HintParams input.
// programLength bounds valid PCs; dense selects the dense representation
// when true, else the sparse one. Iteration order over byPc is not
// guaranteed by Go maps, but the flat vector's per-PC contents and each
// slice's internal order are preserved regardless of iteration order,
// satisfying the bijection property with into_map.
func NewHintCollection(byPc map[int][]HintParams, programLength int, dense bool) (*HintCollection, error) {
	maxPc := 0
	total := 0
	for pc, params := range byPc {
		if pc > maxPc {
			maxPc = pc
		}
		total += len(params)
	}
	if maxPc == 0 && total == 0 {
		return &HintCollection{isDense: dense, dense: nil, sparse: map[int]HintRange{}}, nil
	}
	if maxPc >= programLength {
		return nil, &InvalidHintPcError{Pc: maxPc, Length: programLength}
	}

	hc := &HintCollection{isDense: dense, flat: make([]HintParams, 0, total)}
	if dense {
		hc.dense = make([]HintRange, maxPc+1)
	} else {
		hc.sparse = make(map[int]HintRange, len(byPc))
	}

	for pc, params := range byPc {
		if len(params) == 0 {
			continue
		}
		r := HintRange{Start: len(hc.flat), Length: len(params)}
		hc.flat = append(hc.flat, params...)
		if dense {
			hc.dense[pc] = r
		} else {
			hc.sparse[pc] = r
		}
	}
	return hc, nil
}

// Get returns the hints attached to pc, or nil if none.
func (hc *HintCollection) Get(pc int) []HintParams {
	var r HintRange
	if hc.isDense {
		if pc < 0 || pc >= len(hc.dense) {
			return nil
		}
		r = hc.dense[pc]
	} else {
		var ok bool
		r, ok = hc.sparse[pc]
		if !ok {
			return nil
		}
	}
	if r.Length == 0 {
		return nil
	}
	return hc.flat[r.Start : r.Start+r.Length]
}

// IntoMap materializes the collection as a pc -> []HintParams map,
// skipping empty ranges exactly as Get does.
func (hc *HintCollection) IntoMap() map[int][]HintParams {
	out := make(map[int][]HintParams)
	if hc.isDense {
		for pc, r := range hc.dense {
			if r.Length == 0 {
				continue
			}
			out[pc] = hc.flat[r.Start : r.Start+r.Length]
		}
	} else {
		for pc, r := range hc.sparse {
			if r.Length == 0 {
				continue
			}
			out[pc] = hc.flat[r.Start : r.Start+r.Length]
		}
	}
	return out
}

// IsDense reports which representation was chosen at construction.
func (hc *HintCollection) IsDense() bool {
	return hc.isDense
}
