package engine

import (
	"github.com/Zyko0/go-sdl3/sdl"
)

// DefaultWinType is the render driver used for develop windows when none is
// requested: the software renderer runs everywhere.
const DefaultWinType = "software"

type Units string

const UnitsPix Units = "pix"

// Window is a display surface stimuli are drawn onto.
type Window interface {
	// Flip presents everything drawn since the previous flip.
	Flip() error
	Close() error
}

// Drawable is a stimulus bound to a window.
type Drawable interface {
	Draw() error
}

// TextStim is a drawable whose content can change between frames.
type TextStim interface {
	Drawable
	SetText(text string)
	Text() string
}

// Tone is a sound that can be replayed.
type Tone interface {
	Play() error
}

// Backend creates the windows, stimuli and sounds an experiment uses and
// blocks for keyboard input.
type Backend interface {
	// NewStandardWindow opens a develop window on the given render driver.
	NewStandardWindow(winType string, opts ...WindowOption) (Window, error)
	// NewHardwareWindow opens the dedicated experiment display.
	NewHardwareWindow() (Window, error)
	NewCircle(win Window, size float32, units Units) (Drawable, error)
	NewText(win Window) (TextStim, error)
	NewTone(freqHz, secs float64) (Tone, error)
	// WaitKeys blocks until a key is pressed and returns its name.
	WaitKeys() (string, error)
}

// WindowSettings describes a standard window.
type WindowSettings struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	BGColor    sdl.Color
}

type WindowOption func(*WindowSettings)

func WithSize(w, h int) WindowOption {
	return func(s *WindowSettings) {
		s.Width, s.Height = w, h
	}
}

func WithTitle(title string) WindowOption {
	return func(s *WindowSettings) {
		s.Title = title
	}
}

func WithFullscreen(on bool) WindowOption {
	return func(s *WindowSettings) {
		s.Fullscreen = on
	}
}

func WithVSync(on bool) WindowOption {
	return func(s *WindowSettings) {
		s.VSync = on
	}
}

func WithBGColor(c sdl.Color) WindowOption {
	return func(s *WindowSettings) {
		s.BGColor = c
	}
}

// DefaultWindowSettings returns the settings a develop window starts from
// before options are applied.
func DefaultWindowSettings() WindowSettings {
	return WindowSettings{
		Title:   "flexp",
		Width:   800,
		Height:  600,
		VSync:   true,
		BGColor: sdl.Color{R: 128, G: 128, B: 128, A: 255},
	}
}

// ApplyWindowOptions returns the default settings with opts applied in order.
func ApplyWindowOptions(opts ...WindowOption) WindowSettings {
	s := DefaultWindowSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
