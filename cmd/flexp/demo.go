package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flexp/csvfile"
	"flexp/engine"
)

var demoColumns = []string{"session", "trial", "target", "key", "rt_ms", "correct"}

var demoTargets = []string{"F", "J"}

const demoFixation = 500 * time.Millisecond

// detectionExperiment shows a letter after a fixation period and records
// whether the participant pressed the matching key.
type detectionExperiment struct {
	*engine.BaseExperiment

	results   *csvfile.CsvFile
	session   string
	trial     int
	completed int
	fixation  time.Duration
	rng       *rand.Rand
	now       func() time.Time
}

func (e *detectionExperiment) DoATrial() error {
	e.trial++

	if err := e.DrawAndFlip(e.Fixation); err != nil {
		return err
	}
	time.Sleep(e.fixation)

	target := demoTargets[e.rng.IntN(len(demoTargets))]
	e.Txt.SetText(target)
	if err := e.DrawAndFlip(e.Txt); err != nil {
		return err
	}

	onset := e.now()
	key, err := e.WaitKeys()
	if err != nil {
		return err
	}
	rt := e.now().Sub(onset)

	correct := strings.EqualFold(key, target)
	if err := e.Feedback(correct); err != nil {
		return err
	}

	err = e.results.AddRecord(csvfile.Record{
		"session": e.session,
		"trial":   e.trial,
		"target":  target,
		"key":     key,
		"rt_ms":   float64(rt.Microseconds()) / 1000,
		"correct": correct,
	})
	if err != nil {
		return err
	}
	e.completed++
	return nil
}

func (a *app) newDemoCmd() *cobra.Command {
	var (
		trials    int
		output    string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a short key press detection experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.cfg.OutputFile
			}
			return a.runDemo(trials, output, overwrite)
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 10, "number of trials")
	cmd.Flags().StringVar(&output, "output", "", "results file (default from config)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing results file")
	return cmd
}

func (a *app) runDemo(trials int, output string, overwrite bool) error {
	if trials <= 0 {
		return fmt.Errorf("--trials must be positive, got %d", trials)
	}

	results, err := csvfile.New(output, demoColumns, overwrite, csvfile.WithLogger(a.log))
	if err != nil {
		return err
	}

	defer binsdl.Load().Unload()
	defer binimg.Load().Unload()
	defer binttf.Load().Unload()

	session, err := engine.Open(a.cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	opts, err := a.cfg.WindowOptions()
	if err != nil {
		return err
	}
	base, err := engine.NewBaseExperiment(session, a.cfg.Develop, a.cfg.WinType, opts...)
	if err != nil {
		return err
	}

	exp := newDetectionExperiment(base, results)
	a.log.Info("starting demo", "session", exp.session, "trials", trials, "output", output)

	if path := a.cfg.StartSplash; path != "" {
		err = showSplash(session, base, path)
	}
	if err == nil {
		err = runDetection(exp, trials)
	}
	if errors.Is(err, engine.ErrAborted) {
		a.log.Warn("demo aborted by participant", "completed_trials", exp.completed)
		return nil
	}
	return err
}

// showSplash displays an image until a key is pressed.
func showSplash(session *engine.Session, base *engine.BaseExperiment, path string) error {
	splash, err := session.NewImage(base.Win, path)
	if err != nil {
		return err
	}
	if err := base.DrawAndFlip(splash); err != nil {
		return err
	}
	_, err = base.WaitKeys()
	return err
}

func newDetectionExperiment(base *engine.BaseExperiment, results *csvfile.CsvFile) *detectionExperiment {
	return &detectionExperiment{
		BaseExperiment: base,
		results:        results,
		session:        uuid.NewString(),
		fixation:       demoFixation,
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:            time.Now,
	}
}

func runDetection(exp *detectionExperiment, trials int) error {
	if err := exp.Message("Press F or J when the letter appears. Any key starts."); err != nil {
		return err
	}
	if err := engine.RunTrials(exp, trials); err != nil {
		return err
	}
	return exp.Message("Done. Thank you!")
}
