package slicer

import (
	"fmt"
	"strings"
)

// FillPattern is the infill pattern passed to the slicer with --fill-pattern
type FillPattern int

const (
	Rectilinear FillPattern = iota
	Monotonic
	Grid
	Triangles
	Stars
	Line
	Honeycomb
	Hexagonal
	Gyroid
	HilbertCurve
	ArchimedeanChords
	OctagramSpiral
	ScatteredRectilinear
)

var fillPatternNames = map[FillPattern]string{
	Rectilinear:          "rectilinear",
	Monotonic:            "monotonic",
	Grid:                 "grid",
	Triangles:            "triangles",
	Stars:                "stars",
	Line:                 "line",
	Honeycomb:            "honeycomb",
	Hexagonal:            "hexagonal",
	Gyroid:               "gyroid",
	HilbertCurve:         "hilbertcurve",
	ArchimedeanChords:    "archimedeanchords",
	OctagramSpiral:       "octagramspiral",
	ScatteredRectilinear: "scatteredrectilinear",
}

// FillPatterns returns every known pattern in declaration order
func FillPatterns() []FillPattern {
	patterns := make([]FillPattern, 0, len(fillPatternNames))
	for p := Rectilinear; p <= ScatteredRectilinear; p++ {
		patterns = append(patterns, p)
	}

	return patterns
}

func (p FillPattern) String() string {
	if name, ok := fillPatternNames[p]; ok {
		return name
	}

	return fmt.Sprintf("FillPattern(%d)", int(p))
}

// Valid reports whether p is one of the declared patterns
func (p FillPattern) Valid() bool {
	_, ok := fillPatternNames[p]
	return ok
}

// ParseFillPattern maps a slicer pattern name to its FillPattern.
// Matching ignores case and surrounding whitespace.
func ParseFillPattern(name string) (FillPattern, error) {
	clean := strings.ToLower(strings.TrimSpace(name))
	for p, n := range fillPatternNames {
		if n == clean {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown fill pattern: %q", name)
}

func (p FillPattern) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown fill pattern: %d", int(p))
	}

	return []byte(p.String()), nil
}

func (p *FillPattern) UnmarshalText(text []byte) error {
	parsed, err := ParseFillPattern(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
