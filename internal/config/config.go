package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath names the config file when no path is given explicitly
const EnvConfigPath = "SVGSLICE_CONFIG"

//go:embed default.toml
var defaultConfig []byte

// Config is the complete service configuration loaded from TOML
type Config struct {
	Server struct {
		Addr           string
		MaxUploadBytes int64
	}
	Tools struct {
		OpenSCAD      string
		ConvertScript string
		SliceScript   string
		SlicerConfig  string
		Timeout       time.Duration
	}
	Workspace struct {
		Root        string
		DrawingName string
		ModelName   string
		GCodeName   string
		Keep        bool
	}
	Pipeline struct {
		AllowNonZeroExit bool
		MaxConcurrent    int
		DefaultProfile   string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Default returns the embedded default configuration
func Default() (*Config, error) {
	var cfg Config

	err := toml.Unmarshal(defaultConfig, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	return &cfg, nil
}

// Load reads the defaults and decodes path over them.
// An empty path falls back to $SVGSLICE_CONFIG; when that is unset too the defaults are returned.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}

			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the values the pipeline depends on are usable
func (c *Config) Validate() error {
	if c.Tools.OpenSCAD == "" {
		return errors.New("config: Tools.OpenSCAD must be set")
	}

	if c.Tools.SliceScript == "" {
		return errors.New("config: Tools.SliceScript must be set")
	}

	if c.Tools.SlicerConfig == "" {
		return errors.New("config: Tools.SlicerConfig must be set")
	}

	// both names travel in the word-split SARGS string
	if strings.ContainsFunc(filepath.Base(c.Tools.SlicerConfig), unicode.IsSpace) {
		return fmt.Errorf("config: Tools.SlicerConfig file name must not contain spaces, got %q", filepath.Base(c.Tools.SlicerConfig))
	}

	if strings.ContainsFunc(c.Workspace.ModelName, unicode.IsSpace) {
		return fmt.Errorf("config: Workspace.ModelName must not contain spaces, got %q", c.Workspace.ModelName)
	}

	if c.Tools.Timeout < 0 {
		return fmt.Errorf("config: Tools.Timeout must not be negative, got %s", c.Tools.Timeout)
	}

	if c.Workspace.Root == "" {
		return errors.New("config: Workspace.Root must be set")
	}

	for key, name := range map[string]string{
		"DrawingName": c.Workspace.DrawingName,
		"ModelName":   c.Workspace.ModelName,
		"GCodeName":   c.Workspace.GCodeName,
	} {
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("config: Workspace.%s must be a plain file name, got %q", key, name)
		}
	}

	if c.Pipeline.MaxConcurrent < 1 {
		return fmt.Errorf("config: Pipeline.MaxConcurrent must be at least 1, got %d", c.Pipeline.MaxConcurrent)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses Log.Level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Log.Level))
	if err != nil {
		return level, fmt.Errorf("config: invalid Log.Level %q: %w", c.Log.Level, err)
	}

	return level, nil
}

// NewLogger builds the slog logger described by the Log section
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.LogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
