package profile

import (
	"encoding/json"
	"testing"

	"svgslice/internal/slicer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name         string
		profile      string
		expectError  bool
		errorMatch   string
		checkProfile func(t *testing.T, p *Profile)
	}{
		{
			name:    "standard",
			profile: "standard",
			checkProfile: func(t *testing.T, p *Profile) {
				assert.Equal(t, "standard", p.Name)
				assert.Equal(t, slicer.Settings{
					FillDensity:    0.2,
					FillPattern:    slicer.Grid,
					FillConnected:  true,
					FillOverlap:    0.15,
					FillAngle:      45,
					FillSpeed:      80,
					Perimeters:     2,
					PerimeterSpeed: 60,
				}, p.Settings)
			},
		},
		{
			name:    "name is normalized",
			profile: " Strong ",
			checkProfile: func(t *testing.T, p *Profile) {
				assert.Equal(t, slicer.Gyroid, p.Settings.FillPattern)
				assert.Equal(t, 4, p.Settings.Perimeters)
			},
		},
		{
			name:        "path traversal",
			profile:     "../config/default",
			expectError: true,
			errorMatch:  "invalid profile name",
		},
		{
			name:        "unknown",
			profile:     "ultra",
			expectError: true,
			errorMatch:  "profile not found",
		},
		{
			name:        "empty",
			profile:     "",
			expectError: true,
			errorMatch:  "invalid profile name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(tt.profile)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMatch)
				return
			}

			require.NoError(t, err)
			tt.checkProfile(t, p)
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"draft", "standard", "strong"}, Names())

	for _, name := range Names() {
		p, err := Load(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.True(t, p.Settings.FillPattern.Valid())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		errorMatch string
	}{
		{
			name: "valid custom profile",
			data: "Name = \"custom\"\n[Settings]\nfill_pattern = \"honeycomb\"\nperimeters = 3\n",
		},
		{
			name:       "unknown pattern",
			data:       "Name = \"custom\"\n[Settings]\nfill_pattern = \"zigzag\"\n",
			errorMatch: "unknown fill pattern",
		},
		{
			name:       "unknown key",
			data:       "Name = \"custom\"\n[Settings]\nbrim = 3\n",
			errorMatch: "unknown key",
		},
		{
			name:       "missing name",
			data:       "[Settings]\nperimeters = 3\n",
			errorMatch: "missing Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.data))
			if tt.errorMatch != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMatch)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, slicer.Honeycomb, p.Settings.FillPattern)
			assert.Equal(t, 3, p.Settings.Perimeters)
		})
	}
}

func TestApply(t *testing.T) {
	base, err := Load("standard")
	require.NoError(t, err)

	var o Overrides
	require.NoError(t, json.Unmarshal([]byte(`{"fill_density": 0.35, "fill_pattern": "stars", "fill_connected": false}`), &o))

	got := Apply(base.Settings, o)

	assert.Equal(t, 0.35, got.FillDensity)
	assert.Equal(t, slicer.Stars, got.FillPattern)
	assert.False(t, got.FillConnected)
	assert.Equal(t, base.Settings.Perimeters, got.Perimeters, "unset fields keep the profile value")
	assert.Equal(t, base.Settings.FillOverlap, got.FillOverlap)

	assert.Equal(t, base.Settings, Apply(base.Settings, Overrides{}))
}
