package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"
)

var ErrNoFont = errors.New("no font available for text stimuli")

// Session is the SDL implementation of Backend. It owns the SDL subsystems,
// the text font, the audio output and the optional trigger box.
//
// SDL must be driven from the main OS thread; callers lock it in init.
type Session struct {
	cfg     *Config
	font    *ttf.Font
	mixer   *AudioMixer
	stream  *sdl.AudioStream
	trigger *TriggerBox
	windows []*sdlWindow
	log     *slog.Logger
}

var _ Backend = (*Session)(nil)

// Open initialises SDL, audio output and, if configured, the trigger box.
// The SDL shared libraries must already be loaded.
func Open(cfg *Config) (*Session, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init: %w", err)
	}
	if err := ttf.Init(); err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("TTF_Init: %w", err)
	}

	s := &Session{
		cfg:   cfg,
		mixer: NewAudioMixer(),
		log:   slog.Default(),
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = DefaultFontPath()
	}
	if fontPath != "" {
		font, err := ttf.OpenFont(fontPath, float32(cfg.FontSize))
		if err != nil {
			s.log.Warn("failed to load font", "path", fontPath, "error", err)
		} else {
			s.font = font
		}
	}

	spec := OutputSpec
	cb := sdl.NewAudioStreamCallback(s.mixer.Callback)
	s.stream = sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(&spec, cb)
	if s.stream == nil {
		s.Close()
		return nil, errors.New("failed to open audio stream")
	}
	s.stream.ResumeDevice()

	if dev := cfg.Hardware.TriggerDevice; dev != "" {
		t, err := OpenTriggerBox(dev, cfg.Hardware.TriggerBaud)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.trigger = t
		s.log.Info("trigger box ready", "device", dev)
	}
	return s, nil
}

// Close releases every window and subsystem the session opened.
func (s *Session) Close() {
	for _, w := range s.windows {
		w.Close()
	}
	s.windows = nil
	if s.trigger != nil {
		if err := s.trigger.Close(); err != nil {
			s.log.Warn("closing trigger box", "error", err)
		}
		s.trigger = nil
	}
	if s.stream != nil {
		s.stream.Destroy()
		s.stream = nil
	}
	if s.font != nil {
		s.font.Close()
		s.font = nil
	}
	ttf.Quit()
	sdl.Quit()
}

func (s *Session) NewStandardWindow(winType string, opts ...WindowOption) (Window, error) {
	settings := ApplyWindowOptions(opts...)
	sdl.SetHint(sdl.HINT_RENDER_DRIVER, winType)

	flags := sdl.WINDOW_RESIZABLE
	if settings.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	window, renderer, err := sdl.CreateWindowAndRenderer(settings.Title, settings.Width, settings.Height, flags)
	if err != nil {
		return nil, fmt.Errorf("CreateWindowAndRenderer: %w", err)
	}
	return s.track(newSDLWindow(window, renderer, settings, nil, "")), nil
}

func (s *Session) NewHardwareWindow() (Window, error) {
	hw := s.cfg.Hardware
	bg, err := ParseColor(hw.BGColor)
	if err != nil {
		return nil, err
	}
	settings := WindowSettings{
		Title:      "flexp",
		Width:      hw.Width,
		Height:     hw.Height,
		Fullscreen: true,
		VSync:      true,
		BGColor:    bg,
	}

	window, renderer, err := sdl.CreateWindowAndRenderer(settings.Title, settings.Width, settings.Height, sdl.WINDOW_FULLSCREEN)
	if err != nil {
		return nil, fmt.Errorf("CreateWindowAndRenderer: %w", err)
	}
	return s.track(newSDLWindow(window, renderer, settings, s.trigger, hw.TriggerLine)), nil
}

func (s *Session) track(w *sdlWindow) *sdlWindow {
	s.windows = append(s.windows, w)
	w.clear()
	return w
}

func (s *Session) NewCircle(win Window, size float32, units Units) (Drawable, error) {
	w, err := asSDLWindow(win)
	if err != nil {
		return nil, err
	}
	if units != UnitsPix {
		return nil, fmt.Errorf("unsupported units %q", units)
	}
	color, err := ParseColor(s.cfg.FixationColor)
	if err != nil {
		return nil, err
	}
	return &circle{win: w, size: size, color: color}, nil
}

func (s *Session) NewText(win Window) (TextStim, error) {
	w, err := asSDLWindow(win)
	if err != nil {
		return nil, err
	}
	if s.font == nil {
		return nil, ErrNoFont
	}
	color, err := ParseColor(s.cfg.TextColor)
	if err != nil {
		return nil, err
	}
	return &textStim{win: w, font: s.font, color: color}, nil
}

// NewImage loads a picture file as a stimulus on win. SDL_image must be
// loaded.
func (s *Session) NewImage(win Window, path string) (Drawable, error) {
	w, err := asSDLWindow(win)
	if err != nil {
		return nil, err
	}
	im, err := loadImage(w, path)
	if err != nil {
		return nil, err
	}
	return im, nil
}

func (s *Session) NewTone(freqHz, secs float64) (Tone, error) {
	if freqHz <= 0 || secs <= 0 {
		return nil, fmt.Errorf("invalid tone %gHz for %gs", freqHz, secs)
	}
	return &tone{mixer: s.mixer, res: SineTone(freqHz, secs)}, nil
}

// WaitKeys blocks on the SDL event queue until a key goes down. Closing the
// window returns ErrAborted.
func (s *Session) WaitKeys() (string, error) {
	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			return "", fmt.Errorf("wait for key: %w", err)
		}
		switch event.Type {
		case sdl.EVENT_QUIT:
			return "", ErrAborted
		case sdl.EVENT_KEY_DOWN:
			return event.KeyboardEvent().Key.KeyName(), nil
		}
	}
}
