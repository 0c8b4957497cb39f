package sprite

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		in      string
		want    Capacity
		wantErr bool
	}{
		{"tiny", Tiny, false},
		{"Small", Small, false},
		{" medium ", Medium, false},
		{"LARGE", Large, false},
		{"750", 750, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"huge", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCapacity(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("ParseCapacity(%q) error = %v, want ErrInvalidCapacity", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseCapacity(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestCapacityString(t *testing.T) {
	if got := Large.String(); got != "large" {
		t.Errorf("Large.String() = %q, want large", got)
	}
	if got := Capacity(123).String(); got != "123" {
		t.Errorf("Capacity(123).String() = %q, want 123", got)
	}
}

func TestCapacityFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c := Small
	fs.Var(&c, "capacity", "batch capacity")
	if err := fs.Parse([]string{"-capacity", "medium"}); err != nil {
		t.Fatal(err)
	}
	if c != Medium {
		t.Errorf("capacity = %v, want medium", c)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("capacity: large\nviewport_width: 1280\nviewport_height: 720\nreserve: false\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	want := Config{Capacity: Large, ViewportWidth: 1280, ViewportHeight: 720, Reserve: false}
	if cfg != want {
		t.Errorf("ParseConfig = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("capacity: 300\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	want := DefaultConfig()
	want.Capacity = 300
	if cfg != want {
		t.Errorf("ParseConfig = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad capacity", "capacity: enormous\n"},
		{"zero capacity", "capacity: 0\n"},
		{"capacity list", "capacity: [1, 2]\n"},
		{"negative viewport", "viewport_width: -1\n"},
		{"malformed", "capacity: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data)); err == nil {
				t.Error("ParseConfig error = nil, want error")
			}
		})
	}
}

func TestCapacityYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Config{Capacity: Tiny, ViewportWidth: 10, ViewportHeight: 10})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := ParseConfig(out)
	if err != nil {
		t.Fatalf("ParseConfig(%s) failed: %v", out, err)
	}
	if cfg.Capacity != Tiny {
		t.Errorf("Capacity = %v, want tiny", cfg.Capacity)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.yaml")
	if err := os.WriteFile(path, []byte("capacity: tiny\nviewport_width: 320\nviewport_height: 240\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Capacity != Tiny || cfg.ViewportWidth != 320 || cfg.ViewportHeight != 240 || !cfg.Reserve {
		t.Errorf("LoadConfig = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig(missing) error = nil, want error")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := Config{Capacity: 5, ViewportWidth: 64, ViewportHeight: 32}
	b, err := New(&fakeBackend{}, WithConfig(cfg), WithViewport(128, 64))
	if err != nil {
		t.Fatal(err)
	}
	if b.MaxQuads() != 5 {
		t.Errorf("MaxQuads() = %d, want 5", b.MaxQuads())
	}
	if w, h := b.Viewport(); w != 128 || h != 64 {
		t.Errorf("Viewport() = %dx%d, want 128x64", w, h)
	}
}
