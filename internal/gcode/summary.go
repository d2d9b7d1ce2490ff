package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	xRegex = regexp.MustCompile(`X([-+]?\d*\.?\d+)`)
	yRegex = regexp.MustCompile(`Y([-+]?\d*\.?\d+)`)
	zRegex = regexp.MustCompile(`Z([-+]?\d*\.?\d+)`)
	eRegex = regexp.MustCompile(`E([-+]?\d*\.?\d+)`)
)

// Coordinates holds the axis words found on a single move
type Coordinates struct {
	X *float64
	Y *float64
	Z *float64
	E *float64
}

// Summary describes a sliced G-code program
type Summary struct {
	Lines      int
	Moves      int // G0/G1 commands
	PrintMoves int // G1 with positive E and an XY target
	Layers     int // distinct Z heights reached while printing
	MinX       float64
	MinY       float64
	MaxX       float64
	MaxY       float64
	MaxZ       float64
}

// Summarize scans text once and collects move statistics.
// It never fails: lines it does not understand are counted and skipped.
func Summarize(text string) Summary {
	var (
		s                      Summary
		currentZ               *float64
		minX, minY, maxX, maxY *float64
	)

	layers := make(map[float64]struct{})

	// no line length limit: slicers emit long thumbnail and config comment lines
	for line := range strings.Lines(text) {
		s.Lines++

		coords := ParseLine(strings.TrimRight(line, "\r\n"))
		if coords == nil {
			continue
		}

		s.Moves++

		if coords.Z != nil {
			currentZ = coords.Z
			if *coords.Z > s.MaxZ {
				s.MaxZ = *coords.Z
			}
		}

		if coords.E == nil || *coords.E <= 0 || (coords.X == nil && coords.Y == nil) {
			continue
		}

		s.PrintMoves++

		if currentZ != nil {
			layers[*currentZ] = struct{}{}
		}

		if coords.X != nil {
			if minX == nil || *coords.X < *minX {
				minX = coords.X
			}

			if maxX == nil || *coords.X > *maxX {
				maxX = coords.X
			}
		}

		if coords.Y != nil {
			if minY == nil || *coords.Y < *minY {
				minY = coords.Y
			}

			if maxY == nil || *coords.Y > *maxY {
				maxY = coords.Y
			}
		}
	}

	s.Layers = len(layers)
	s.MinX = deref(minX)
	s.MinY = deref(minY)
	s.MaxX = deref(maxX)
	s.MaxY = deref(maxY)

	return s
}

// ParseLine extracts coordinates from a G0 or G1 move; any other line returns nil
func ParseLine(line string) *Coordinates {
	trimmed := strings.TrimSpace(line)

	// drop trailing comment
	if i := strings.IndexByte(trimmed, ';'); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 || (fields[0] != "G1" && fields[0] != "G0") {
		return nil
	}

	coords := &Coordinates{
		X: parseAxis(xRegex, trimmed),
		Y: parseAxis(yRegex, trimmed),
		Z: parseAxis(zRegex, trimmed),
		E: parseAxis(eRegex, trimmed),
	}

	if coords.X == nil && coords.Y == nil && coords.Z == nil && coords.E == nil {
		return nil
	}

	return coords
}

func parseAxis(re *regexp.Regexp, line string) *float64 {
	match := re.FindStringSubmatch(line)
	if match == nil {
		return nil
	}

	val, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}

	return &val
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}

	return *v
}
