package engine

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotImplemented is returned by BaseExperiment.DoATrial. Experiment
	// types embedding BaseExperiment must provide their own DoATrial.
	ErrNotImplemented = errors.New("DoATrial not implemented")
	// ErrAborted is returned when the participant closes the window while
	// input is awaited.
	ErrAborted = errors.New("experiment aborted")
)

const (
	FixationSize = 1
	BeepFreqHz   = 200
	BeepSecs     = 0.2
)

// Experiment is implemented by concrete experiments, usually by embedding
// *BaseExperiment and overriding DoATrial.
type Experiment interface {
	DoATrial() error
}

// BaseExperiment owns the display window and the stimuli every experiment
// needs: a fixation point, a text stimulus and an error beep.
type BaseExperiment struct {
	Win      Window
	Fixation Drawable
	Txt      TextStim
	Beep     Tone

	backend Backend
	log     *slog.Logger
}

// NewBaseExperiment opens the experiment window and creates the shared
// stimuli.
//
// With develop set a standard window is opened on winType (DefaultWinType
// when empty) and opts are forwarded to it. Otherwise the hardware display
// is opened; winType and opts do not apply to it and are ignored.
func NewBaseExperiment(backend Backend, develop bool, winType string, opts ...WindowOption) (*BaseExperiment, error) {
	b := &BaseExperiment{
		backend: backend,
		log:     slog.Default(),
	}

	var err error
	if develop {
		if winType == "" {
			winType = DefaultWinType
		}
		b.Win, err = backend.NewStandardWindow(winType, opts...)
	} else {
		b.Win, err = backend.NewHardwareWindow()
	}
	if err != nil {
		return nil, fmt.Errorf("open window: %w", err)
	}
	if develop {
		b.log.Info("opened develop window", "win_type", winType)
	} else {
		b.log.Info("opened hardware window")
	}

	if b.Fixation, err = backend.NewCircle(b.Win, FixationSize, UnitsPix); err != nil {
		b.Win.Close()
		return nil, fmt.Errorf("create fixation: %w", err)
	}
	if b.Txt, err = backend.NewText(b.Win); err != nil {
		b.Win.Close()
		return nil, fmt.Errorf("create text: %w", err)
	}
	if b.Beep, err = backend.NewTone(BeepFreqHz, BeepSecs); err != nil {
		b.Win.Close()
		return nil, fmt.Errorf("create beep: %w", err)
	}
	return b, nil
}

// DoATrial always fails. It exists so that embedding types which forget to
// override it fail loudly instead of silently doing nothing.
func (b *BaseExperiment) DoATrial() error {
	return ErrNotImplemented
}

// Feedback beeps once when the response was incorrect.
func (b *BaseExperiment) Feedback(correct bool) error {
	if correct {
		return nil
	}
	return b.Beep.Play()
}

// DrawAndFlip draws the stimuli in order and presents them in one frame.
func (b *BaseExperiment) DrawAndFlip(stimuli ...Drawable) error {
	for i, s := range stimuli {
		if err := s.Draw(); err != nil {
			return fmt.Errorf("draw stimulus %d: %w", i, err)
		}
	}
	return b.Win.Flip()
}

// Message shows text on screen and waits for any key.
func (b *BaseExperiment) Message(text string) error {
	b.Txt.SetText(text)
	if err := b.DrawAndFlip(b.Txt); err != nil {
		return err
	}
	key, err := b.backend.WaitKeys()
	if err != nil {
		return err
	}
	b.log.Debug("message acknowledged", "key", key)
	return nil
}

// WaitKeys blocks for the next key press.
func (b *BaseExperiment) WaitKeys() (string, error) {
	return b.backend.WaitKeys()
}

func (b *BaseExperiment) Close() error {
	return b.Win.Close()
}

// RunTrials runs n trials of exp, stopping at the first failure.
func RunTrials(exp Experiment, n int) error {
	for i := 0; i < n; i++ {
		if err := exp.DoATrial(); err != nil {
			return fmt.Errorf("trial %d: %w", i+1, err)
		}
	}
	return nil
}
