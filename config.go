package sprite

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Capacity is the maximum number of quads a batch holds per frame.
type Capacity int

// Capacity presets.
const (
	Tiny   Capacity = 100
	Small  Capacity = 2000
	Medium Capacity = 10000
	Large  Capacity = 50000
)

// ParseCapacity parses a preset name ("tiny", "small", "medium", "large")
// or a positive quad count.
func ParseCapacity(s string) (Capacity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tiny":
		return Tiny, nil
	case "small":
		return Small, nil
	case "medium":
		return Medium, nil
	case "large":
		return Large, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse capacity %q: %w", s, ErrInvalidCapacity)
	}
	if n <= 0 {
		return 0, fmt.Errorf("parse capacity %q: %w", s, ErrInvalidCapacity)
	}
	return Capacity(n), nil
}

// String returns the preset name, or the quad count for custom sizes.
func (c Capacity) String() string {
	switch c {
	case Tiny:
		return "tiny"
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return strconv.Itoa(int(c))
	}
}

// Set implements flag.Value.
func (c *Capacity) Set(s string) error {
	v, err := ParseCapacity(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// UnmarshalYAML accepts a preset name or a number.
func (c *Capacity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: capacity must be a scalar: %w", node.Line, ErrInvalidCapacity)
	}
	return c.Set(node.Value)
}

// MarshalYAML writes the preset name or the number.
func (c Capacity) MarshalYAML() (any, error) {
	switch c {
	case Tiny, Small, Medium, Large:
		return c.String(), nil
	default:
		return int(c), nil
	}
}

// Config holds batch configuration.
type Config struct {
	// Capacity is the maximum number of quads per frame.
	// Default: Small
	Capacity Capacity `yaml:"capacity"`

	// ViewportWidth and ViewportHeight size the default surface. They are
	// used for off-screen culling and the projection when no target is set.
	// Default: 800x600
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	// Reserve enables per-texture slot reservation across frames.
	// Default: true
	Reserve bool `yaml:"reserve"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:       Small,
		ViewportWidth:  800,
		ViewportHeight: 600,
		Reserve:        true,
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity %d: %w", int(c.Capacity), ErrInvalidCapacity)
	}
	if c.ViewportWidth < 0 || c.ViewportHeight < 0 {
		return fmt.Errorf("sprite: negative viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	return nil
}
