package gcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expectOK bool
		x, y, z  *float64
		e        *float64
	}{
		{name: "print move", line: "G1 X10.5 Y-2 E0.05", expectOK: true, x: ptr(10.5), y: ptr(-2), e: ptr(0.05)},
		{name: "travel", line: "G0 X1 Y2", expectOK: true, x: ptr(1), y: ptr(2)},
		{name: "layer change", line: "G1 Z0.3 F7800", expectOK: true, z: ptr(0.3)},
		{name: "comment after move", line: "G1 X5 Y5 E1 ; perimeter", expectOK: true, x: ptr(5), y: ptr(5), e: ptr(1)},
		{name: "comment only", line: "; G1 X5 Y5", expectOK: false},
		{name: "G10 is not a move", line: "G10 X1", expectOK: false},
		{name: "other command", line: "M104 S200", expectOK: false},
		{name: "bare G1", line: "G1", expectOK: false},
		{name: "feedrate only", line: "G1 F1200", expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coords := ParseLine(tt.line)
			if !tt.expectOK {
				assert.Nil(t, coords)
				return
			}

			require.NotNil(t, coords)
			assert.Equal(t, tt.x, coords.X)
			assert.Equal(t, tt.y, coords.Y)
			assert.Equal(t, tt.z, coords.Z)
			assert.Equal(t, tt.e, coords.E)
		})
	}
}

func TestSummarize(t *testing.T) {
	program := strings.Join([]string{
		"; generated by SuperSlicer",
		"M104 S210",
		"G28",
		"G1 Z0.2 F7800",
		"G0 X0 Y0",
		"G1 X10 Y0 E0.5",
		"G1 X10 Y20 E1.0",
		"G1 E-0.8 ; retract",
		"G1 Z0.4",
		"G1 X-5 Y20 E0.4",
		"G1 X-5 Y3 E0.4",
		"M107",
	}, "\n")

	s := Summarize(program)

	assert.Equal(t, 12, s.Lines)
	assert.Equal(t, 8, s.Moves)
	assert.Equal(t, 4, s.PrintMoves)
	assert.Equal(t, 2, s.Layers)
	assert.Equal(t, -5.0, s.MinX)
	assert.Equal(t, 10.0, s.MaxX)
	assert.Equal(t, 0.0, s.MinY)
	assert.Equal(t, 20.0, s.MaxY)
	assert.Equal(t, 0.4, s.MaxZ)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(""))
	assert.Equal(t, Summary{Lines: 1}, Summarize("just text"))
}

func ptr(v float64) *float64 {
	return &v
}

func TestSummarizeLongLines(t *testing.T) {
	// embedded thumbnails and config dumps can exceed any fixed line buffer
	program := strings.Join([]string{
		"; thumbnail " + strings.Repeat("x", 2<<20),
		"G1 Z0.2",
		"G1 X1 Y1 E0.1\r",
		"G1 X4 Y2 E0.1",
	}, "\n") + "\n"

	s := Summarize(program)

	assert.Equal(t, 4, s.Lines)
	assert.Equal(t, 3, s.Moves)
	assert.Equal(t, 2, s.PrintMoves)
	assert.Equal(t, 1, s.Layers)
	assert.Equal(t, 4.0, s.MaxX)
}
