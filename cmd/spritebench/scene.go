package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/lights"
)

// scene describes one benchmark run. The batch configuration is inlined so a
// scene file can set capacity and viewport next to the scene fields.
type scene struct {
	sprite.Config `yaml:",inline"`

	// ClearColor fills the target before every frame. Hex notation.
	ClearColor string `yaml:"clear_color"`

	// Sprites is the number of sprites added per frame.
	Sprites int `yaml:"sprites"`

	// Frames is the number of frames rendered.
	Frames int `yaml:"frames"`

	// Textures is the number of procedural textures sprites cycle through.
	Textures int `yaml:"textures"`

	// TextureSize is the edge length of procedural textures in pixels.
	TextureSize int `yaml:"texture_size"`

	// Images are image files loaded as additional textures.
	Images []string `yaml:"images"`

	// Lights is the number of point lights drawn over the sprites.
	Lights int `yaml:"lights"`
}

func defaultScene() scene {
	return scene{
		Config:      sprite.DefaultConfig(),
		ClearColor:  "#1e1e28",
		Sprites:     1000,
		Frames:      120,
		Textures:    4,
		TextureSize: 32,
		Lights:      4,
	}
}

// loadScene reads a scene file on top of defaultScene. Relative image paths
// are resolved against the scene file's directory.
func loadScene(path string) (scene, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return scene{}, fmt.Errorf("reading scene: %w", err)
	}
	s, err := parseScene(data)
	if err != nil {
		return scene{}, err
	}
	dir := filepath.Dir(path)
	for i, img := range s.Images {
		if !filepath.IsAbs(img) {
			s.Images[i] = filepath.Join(dir, img)
		}
	}
	return s, nil
}

func parseScene(data []byte) (scene, error) {
	s := defaultScene()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return scene{}, fmt.Errorf("parsing scene: %w", err)
	}
	if err := s.validate(); err != nil {
		return scene{}, err
	}
	return s, nil
}

func (s scene) validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	switch {
	case s.Sprites < 0:
		return fmt.Errorf("scene: negative sprite count %d", s.Sprites)
	case s.Lights < 0 || s.Lights > lights.DefaultMax:
		return fmt.Errorf("scene: light count %d outside [0, %d]", s.Lights, lights.DefaultMax)
	case s.Frames <= 0:
		return fmt.Errorf("scene: frame count %d must be positive", s.Frames)
	case s.Textures <= 0 && len(s.Images) == 0:
		return errors.New("scene: no textures")
	case s.Textures > 0 && s.TextureSize <= 0:
		return fmt.Errorf("scene: texture size %d must be positive", s.TextureSize)
	case s.ViewportWidth == 0 || s.ViewportHeight == 0:
		return fmt.Errorf("scene: empty viewport %dx%d", s.ViewportWidth, s.ViewportHeight)
	}
	return nil
}
