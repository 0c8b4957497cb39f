// Command spritebench renders an animated sprite scene through a batch and
// reports how many draw calls each frame needed.
//
// Usage:
//
//	spritebench -backend noop -sprites 5000 -frames 300
//	spritebench -config scene.yaml -backend vulkan -out last.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/gpu"
	spriteimage "github.com/gogpu/sprite/internal/image"
	"github.com/gogpu/sprite/lights"
)

type bench struct {
	scene scene
	log   *slog.Logger

	renderer *gpu.Renderer
	textures []sprite.Texture
	lights   *lights.Set
	lightTex *gpu.Texture
}

func (b *bench) run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	configPath := fs.String("config", "", "scene file (yaml)")
	backendName := fs.String("backend", "noop", "GPU backend: noop, vulkan, metal, dx12 or gl")
	frames := fs.Int("frames", 0, "number of frames to render (overrides the scene)")
	sprites := fs.Int("sprites", 0, "sprites per frame (overrides the scene)")
	out := fs.String("out", "", "write the last frame to this PNG file")
	verbose := fs.Bool("v", false, "log debug output")
	var capacity sprite.Capacity
	fs.Var(&capacity, "capacity", "batch capacity: tiny, small, medium, large or a number (overrides the scene)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	b.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	sprite.SetLogger(b.log)
	gpu.SetLogger(b.log)

	b.scene = defaultScene()
	if *configPath != "" {
		s, err := loadScene(*configPath)
		if err != nil {
			return err
		}
		b.scene = s
	}
	if *frames > 0 {
		b.scene.Frames = *frames
	}
	if *sprites > 0 {
		b.scene.Sprites = *sprites
	}
	if capacity > 0 {
		b.scene.Capacity = capacity
	}
	if err := b.scene.validate(); err != nil {
		return err
	}

	backend, err := gpu.ParseBackend(*backendName)
	if err != nil {
		return err
	}
	dev, err := gpu.OpenDevice(backend)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer dev.Close()

	return b.render(dev.Device, dev.Queue, *out)
}

func (b *bench) render(device hal.Device, queue hal.Queue, out string) error {
	r, err := gpu.NewRenderer(device, queue)
	if err != nil {
		return err
	}
	defer r.Close()
	b.renderer = r

	if err := b.loadTextures(); err != nil {
		return err
	}
	defer b.freeTextures()

	if err := b.createLights(); err != nil {
		return err
	}

	fb, err := r.NewFrameBuffer(b.scene.ViewportWidth, b.scene.ViewportHeight)
	if err != nil {
		return err
	}
	defer fb.Free()

	batch, err := sprite.New(r, sprite.WithConfig(b.scene.Config))
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	defer batch.Free()
	batch.SetTarget(fb)

	bg := sprite.Hex(b.scene.ClearColor)
	var total sprite.Stats

	pb := progressbar.Default(int64(b.scene.Frames))
	defer pb.Close()

	start := time.Now()
	for frame := range b.scene.Frames {
		if err := fb.Clear(bg); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		b.addSprites(batch, frame)
		if err := b.addLights(batch, frame); err != nil && !errors.Is(err, sprite.ErrBatchFull) {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := batch.RenderAll(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		accumulate(&total, batch.Stats())
		_ = pb.Add(1)
	}
	elapsed := time.Since(start)

	n := b.scene.Frames
	b.log.Info("spritebench done",
		"frames", n,
		"elapsed", elapsed.Round(time.Millisecond),
		"fps", float64(n)/elapsed.Seconds(),
		"quads_per_frame", total.Quads/n,
		"draw_calls_per_frame", float64(total.DrawCalls)/float64(n),
		"texture_changes", total.TextureChanges,
		"culled", total.Culled,
		"rejected", total.Rejected,
		"upload_bytes", total.UploadBytes)

	if out == "" {
		return nil
	}
	img, err := fb.Pixels()
	if err != nil {
		return fmt.Errorf("failed to read frame buffer: %w", err)
	}
	if err := spriteimage.SavePNG(out, img); err != nil {
		return err
	}
	b.log.Info("last frame saved", "path", out)
	return nil
}

// addSprites adds the scene's sprites orbiting the viewport center.
func (b *bench) addSprites(batch *sprite.Batch, frame int) {
	w, h := float32(b.scene.ViewportWidth), float32(b.scene.ViewportHeight)
	cx, cy := w/2, h/2
	radius := math32.Min(w, h) * 0.45
	t := float32(frame) / 60

	for i := range b.scene.Sprites {
		tex := b.textures[i%len(b.textures)]
		fi := float32(i)
		// Golden angle spreads sprites evenly over the disc.
		angle := fi*2.39996 + t
		dist := radius * math32.Sqrt((fi+0.5)/float32(b.scene.Sprites))
		sin, cos := math32.Sincos(angle)

		size := float32(tex.Width())
		q := sprite.Quad{
			Texture:  tex,
			Dst:      sprite.R(cx+cos*dist-size/2, cy+sin*dist-size/2, size, size),
			Rotation: t*90 + fi,
			Origin:   &sprite.Vec2{X: size / 2, Y: size / 2},
			Color:    sprite.White,
			Depth:    float32(i % 4),
		}
		if i%5 == 0 {
			q.Color = sprite.RGBA(1, 1, 1, 0.75)
		}
		if i%7 == 0 {
			q.Flip = sprite.FlipHorizontal
		}
		err := batch.AddQuad(q)
		if errors.Is(err, sprite.ErrBatchFull) {
			return
		}
		if err != nil {
			b.log.Warn("add sprite", "index", i, "err", err)
		}
	}
}

// createLights creates the scene's point lights, spread around the viewport.
func (b *bench) createLights() error {
	if b.scene.Lights == 0 {
		return nil
	}
	tex, err := b.renderer.NewLightTexture()
	if err != nil {
		return fmt.Errorf("failed to create light texture: %w", err)
	}
	b.lightTex = tex
	shader, err := gpu.NewLightShader()
	if err != nil {
		return fmt.Errorf("failed to compile light shader: %w", err)
	}
	set, err := lights.New(tex, shader)
	if err != nil {
		return err
	}
	radius := float32(min(b.scene.ViewportWidth, b.scene.ViewportHeight)) / 4
	for i := range b.scene.Lights {
		c := hsv(float32(i)/float32(b.scene.Lights), 0.5, 1)
		if _, err := set.Add(0, 0, radius, 0.6, sprite.FromColor(c)); err != nil {
			return err
		}
	}
	b.lights = set
	return nil
}

// addLights moves the lights along a slow orbit and adds them to the batch.
func (b *bench) addLights(batch *sprite.Batch, frame int) error {
	if b.lights == nil {
		return nil
	}
	w, h := float32(b.scene.ViewportWidth), float32(b.scene.ViewportHeight)
	t := float32(frame) / 120
	n := float32(b.lights.Len())
	i := float32(0)
	for l := range b.lights.All() {
		sin, cos := math32.Sincos(t + i*2*math32.Pi/n)
		l.X, l.Y = w/2+cos*w/3, h/2+sin*h/3
		i++
	}
	_, err := b.lights.Render(batch)
	return err
}

func (b *bench) loadTextures() error {
	for i := range b.scene.Textures {
		tex, err := b.renderer.NewTexture(proceduralTexture(i, b.scene.TextureSize))
		if err != nil {
			return fmt.Errorf("failed to create texture %d: %w", i, err)
		}
		b.textures = append(b.textures, tex)
	}
	for _, path := range b.scene.Images {
		tex, err := b.renderer.LoadTexture(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		b.textures = append(b.textures, tex)
	}
	return nil
}

func (b *bench) freeTextures() {
	for _, tex := range b.textures {
		if t, ok := tex.(*gpu.Texture); ok {
			t.Free()
		}
	}
	b.textures = nil
	if b.lightTex != nil {
		b.lightTex.Free()
		b.lightTex = nil
	}
}

// proceduralTexture returns a size x size checkerboard. Odd indices get a
// transparent border so both opaque and blended pipelines are exercised.
func proceduralTexture(i, size int) *image.NRGBA {
	hue := float32(i) * 0.61803
	hue -= math32.Floor(hue)
	a := hsv(hue, 0.7, 0.95)
	c := hsv(hue, 0.7, 0.55)

	const cells = 4
	small := image.NewNRGBA(image.Rect(0, 0, cells, cells))
	for y := range cells {
		for x := range cells {
			px := a
			if (x+y)%2 == 1 {
				px = c
			}
			if i%2 == 1 && (x == 0 || y == 0 || x == cells-1 || y == cells-1) {
				px.A = 0
			}
			small.SetNRGBA(x, y, px)
		}
	}
	return spriteimage.Scale(small, size, size)
}

func hsv(h, s, v float32) color.NRGBA {
	i := math32.Floor(h * 6)
	f := h*6 - i
	p, q, t := v*(1-s), v*(1-f*s), v*(1-(1-f)*s)
	var r, g, b float32
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return sprite.RGB(r, g, b).NRGBA()
}

func accumulate(dst *sprite.Stats, s sprite.Stats) {
	dst.Quads += s.Quads
	dst.DrawCalls += s.DrawCalls
	dst.ShaderChanges += s.ShaderChanges
	dst.BlendChanges += s.BlendChanges
	dst.TextureChanges += s.TextureChanges
	dst.UploadBytes += s.UploadBytes
	dst.Culled += s.Culled
	dst.DroppedInvalid += s.DroppedInvalid
	dst.Rejected += s.Rejected
}

func main() {
	b := bench{}

	if err := b.run(); err != nil {
		fmt.Fprintf(os.Stderr, "spritebench: %v\n", err)
		os.Exit(1)
	}
}
