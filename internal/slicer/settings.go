package slicer

import (
	"fmt"
	"strconv"
	"strings"
)

// Settings describes how the infill and perimeters of a drawing are sliced
type Settings struct {
	SVG            string      `json:"svg" toml:"svg"`
	FillDensity    float64     `json:"fill_density" toml:"fill_density"`
	FillPattern    FillPattern `json:"fill_pattern" toml:"fill_pattern"`
	FillConnected  bool        `json:"fill_connected" toml:"fill_connected"`
	FillOverlap    float64     `json:"fill_overlap" toml:"fill_overlap"`
	FillAngle      int         `json:"fill_angle" toml:"fill_angle"`
	FillSpeed      int         `json:"fill_speed" toml:"fill_speed"`
	Perimeters     int         `json:"perimeters" toml:"perimeters"`
	PerimeterSpeed int         `json:"perimeter_speed" toml:"perimeter_speed"`
}

// Options returns the slicer options in the order the slice script expects.
// Each element is one flag with its value. Values are not range checked.
func (s Settings) Options(configPath string) []string {
	return []string{
		"-g",
		"--load " + configPath,
		"--fill-density " + percent(s.FillDensity),
		"--fill-pattern " + s.FillPattern.String(),
		"--infill-connection " + connection(s.FillConnected),
		"--infill-overlap " + percent(s.FillOverlap),
		fmt.Sprintf("--fill-angle %d", s.FillAngle),
		fmt.Sprintf("--infill-speed %d", s.FillSpeed),
		fmt.Sprintf("--perimeters %d", s.Perimeters),
		fmt.Sprintf("--perimeter-speed %d", s.PerimeterSpeed),
	}
}

// Args returns the options followed by the model file to slice
func (s Settings) Args(configPath, modelPath string) []string {
	return append(s.Options(configPath), modelPath)
}

// ArgString joins Args with single spaces, the form carried in SARGS
func (s Settings) ArgString(configPath, modelPath string) string {
	return strings.Join(s.Args(configPath, modelPath), " ")
}

// percentDigits is enough significant digits to keep any input written by hand
// while dropping the noise of the *100 step, such as 15.000000000000002.
const percentDigits = 12

// percent renders a fraction as a bare percentage followed by '%'
func percent(fraction float64) string {
	v := fraction * 100

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', percentDigits, 64), 64)
	if err == nil {
		v = rounded
	}

	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func connection(connected bool) string {
	if connected {
		return "connected"
	}

	return "notconnected"
}
