package profile

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"svgslice/internal/slicer"

	"github.com/BurntSushi/toml"
)

//go:embed profiles/*.toml
var profileFiles embed.FS

// Profile is a named preset of print settings
type Profile struct {
	Name        string
	Description string
	Settings    slicer.Settings
}

// Overrides carries the settings a request sets explicitly; nil fields keep the profile value
type Overrides struct {
	FillDensity    *float64            `json:"fill_density,omitempty"`
	FillPattern    *slicer.FillPattern `json:"fill_pattern,omitempty"`
	FillConnected  *bool               `json:"fill_connected,omitempty"`
	FillOverlap    *float64            `json:"fill_overlap,omitempty"`
	FillAngle      *int                `json:"fill_angle,omitempty"`
	FillSpeed      *int                `json:"fill_speed,omitempty"`
	Perimeters     *int                `json:"perimeters,omitempty"`
	PerimeterSpeed *int                `json:"perimeter_speed,omitempty"`
}

// NormalizeName lowercases name and turns spaces into dashes
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")

	return strings.ToLower(name)
}

func isValidName(name string) bool {
	if len(name) == 0 {
		return false
	}

	for _, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '-'

		if !isLetter && !isDigit && !isSpecial {
			return false
		}
	}

	return true
}

// Load returns the embedded profile called name
func Load(name string) (*Profile, error) {
	data, err := Raw(name)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes a profile from TOML
func Parse(data []byte) (*Profile, error) {
	var p Profile

	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse profile %s: unknown key %s", p.Name, undecoded[0])
	}

	if p.Name == "" {
		return nil, fmt.Errorf("failed to parse profile: missing Name")
	}

	return &p, nil
}

// Raw returns the TOML source of the named profile
func Raw(name string) ([]byte, error) {
	name = NormalizeName(name)
	if !isValidName(name) {
		return nil, fmt.Errorf("invalid profile name: %q", name)
	}

	data, err := profileFiles.ReadFile("profiles/" + name + ".toml")
	if err != nil {
		return nil, fmt.Errorf("profile not found: %s", name)
	}

	return data, nil
}

// Names lists the embedded profiles in alphabetical order
func Names() []string {
	entries, err := fs.ReadDir(profileFiles, "profiles")
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}

		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}

	sort.Strings(names)

	return names
}

// Apply returns base with every non-nil override set
func Apply(base slicer.Settings, o Overrides) slicer.Settings {
	if o.FillDensity != nil {
		base.FillDensity = *o.FillDensity
	}

	if o.FillPattern != nil {
		base.FillPattern = *o.FillPattern
	}

	if o.FillConnected != nil {
		base.FillConnected = *o.FillConnected
	}

	if o.FillOverlap != nil {
		base.FillOverlap = *o.FillOverlap
	}

	if o.FillAngle != nil {
		base.FillAngle = *o.FillAngle
	}

	if o.FillSpeed != nil {
		base.FillSpeed = *o.FillSpeed
	}

	if o.Perimeters != nil {
		base.Perimeters = *o.Perimeters
	}

	if o.PerimeterSpeed != nil {
		base.PerimeterSpeed = *o.PerimeterSpeed
	}

	return base
}
