package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

var errMixerFull = errors.New("all audio slots busy")

type sdlWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	settings WindowSettings

	trigger     *TriggerBox
	triggerLine string
	textures    []*sdl.Texture
	closed      bool
}

func newSDLWindow(window *sdl.Window, renderer *sdl.Renderer, settings WindowSettings, trigger *TriggerBox, triggerLine string) *sdlWindow {
	if settings.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}
	return &sdlWindow{
		window:      window,
		renderer:    renderer,
		settings:    settings,
		trigger:     trigger,
		triggerLine: triggerLine,
	}
}

func asSDLWindow(win Window) (*sdlWindow, error) {
	w, ok := win.(*sdlWindow)
	if !ok {
		return nil, fmt.Errorf("window %T is not an SDL window", win)
	}
	return w, nil
}

func (w *sdlWindow) center() (float32, float32) {
	return float32(w.settings.Width) / 2, float32(w.settings.Height) / 2
}

func (w *sdlWindow) clear() {
	bg := w.settings.BGColor
	w.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	w.renderer.Clear()
}

// Flip presents the back buffer, pulses the trigger line when one is
// attached and clears the next frame to the background colour.
func (w *sdlWindow) Flip() error {
	if w.closed {
		return errors.New("flip on closed window")
	}
	w.renderer.Present()
	if w.trigger != nil && w.triggerLine != "" {
		if err := w.trigger.Pulse(w.triggerLine, TriggerPulse); err != nil {
			return err
		}
	}
	w.clear()
	return nil
}

func (w *sdlWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	for _, tex := range w.textures {
		tex.Destroy()
	}
	w.textures = nil
	w.renderer.Destroy()
	w.window.Destroy()
	return nil
}

// circle is a filled disc at the window centre, size being its diameter in
// pixels.
type circle struct {
	win   *sdlWindow
	size  float32
	color sdl.Color
}

func (c *circle) Draw() error {
	r := c.win.renderer
	r.SetDrawColor(c.color.R, c.color.G, c.color.B, c.color.A)
	cx, cy := c.win.center()

	radius := c.size / 2
	if radius <= 1 {
		px := sdl.FRect{X: cx - radius, Y: cy - radius, W: c.size, H: c.size}
		r.RenderFillRect(&px)
		return nil
	}
	for dy := -radius; dy <= radius; dy++ {
		half := float32(math.Sqrt(float64(radius*radius - dy*dy)))
		r.RenderLine(cx-half, cy+dy, cx+half, cy+dy)
	}
	return nil
}

// textStim renders its content centred on the window. The texture is rebuilt
// only when the text changes.
type textStim struct {
	win   *sdlWindow
	font  *ttf.Font
	color sdl.Color

	text  string
	tex   *sdl.Texture
	w, h  float32
	dirty bool
}

func (t *textStim) SetText(text string) {
	if text == t.text {
		return
	}
	t.text = text
	t.dirty = true
}

func (t *textStim) Text() string {
	return t.text
}

func (t *textStim) render() error {
	if t.tex != nil {
		t.tex.Destroy()
		t.tex = nil
	}
	t.dirty = false
	if t.text == "" {
		return nil
	}

	surf, err := t.font.RenderTextBlended(t.text, t.color)
	if err != nil {
		return fmt.Errorf("render text %q: %w", t.text, err)
	}
	defer surf.Destroy()

	tex, err := t.win.renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return fmt.Errorf("text texture: %w", err)
	}
	t.tex = tex
	t.w, t.h = float32(surf.W), float32(surf.H)
	return nil
}

func (t *textStim) Draw() error {
	if t.dirty {
		if err := t.render(); err != nil {
			return err
		}
	}
	if t.tex == nil {
		return nil
	}
	cx, cy := t.win.center()
	dst := sdl.FRect{X: cx - t.w/2, Y: cy - t.h/2, W: t.w, H: t.h}
	t.win.renderer.RenderTexture(t.tex, nil, &dst)
	return nil
}

// image is a picture file drawn centred at its native size. The texture
// lives until the window is closed.
type image struct {
	win  *sdlWindow
	tex  *sdl.Texture
	w, h float32
}

func loadImage(win *sdlWindow, path string) (*image, error) {
	tex, err := img.LoadTexture(win.renderer, path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	w, h, _ := tex.Size()
	win.textures = append(win.textures, tex)
	return &image{win: win, tex: tex, w: w, h: h}, nil
}

func (i *image) Draw() error {
	cx, cy := i.win.center()
	dst := sdl.FRect{X: cx - i.w/2, Y: cy - i.h/2, W: i.w, H: i.h}
	i.win.renderer.RenderTexture(i.tex, nil, &dst)
	return nil
}

type tone struct {
	mixer *AudioMixer
	res   *SoundResource
}

func (t *tone) Play() error {
	if !t.mixer.Play(t.res) {
		return errMixerFull
	}
	return nil
}
