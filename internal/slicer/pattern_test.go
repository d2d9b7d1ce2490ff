package slicer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillPatternString(t *testing.T) {
	tests := []struct {
		pattern  FillPattern
		expected string
	}{
		{Rectilinear, "rectilinear"},
		{Monotonic, "monotonic"},
		{Grid, "grid"},
		{Triangles, "triangles"},
		{Stars, "stars"},
		{Line, "line"},
		{Honeycomb, "honeycomb"},
		{Hexagonal, "hexagonal"},
		{Gyroid, "gyroid"},
		{HilbertCurve, "hilbertcurve"},
		{ArchimedeanChords, "archimedeanchords"},
		{OctagramSpiral, "octagramspiral"},
		{ScatteredRectilinear, "scatteredrectilinear"},
	}

	require.Len(t, tests, len(FillPatterns()), "every pattern must be covered")

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.pattern.String())
			assert.True(t, tt.pattern.Valid())

			parsed, err := ParseFillPattern(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, parsed)
		})
	}
}

func TestFillPatternUnknown(t *testing.T) {
	p := FillPattern(99)

	assert.False(t, p.Valid())
	assert.Equal(t, "FillPattern(99)", p.String())

	_, err := p.MarshalText()
	assert.Error(t, err)
}

func TestParseFillPattern(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    FillPattern
		expectError bool
	}{
		{name: "mixed case", input: "Gyroid", expected: Gyroid},
		{name: "upper case", input: "HILBERTCURVE", expected: HilbertCurve},
		{name: "whitespace", input: "  stars ", expected: Stars},
		{name: "unknown", input: "zigzag", expectError: true},
		{name: "empty", input: "", expectError: true},
		{name: "separated words", input: "hilbert curve", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseFillPattern(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}
