package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/petems/whispr/internal/config"
	"github.com/petems/whispr/internal/inject"
)

const deliverTimeout = 5 * time.Second

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetIdle()
	SetRecording()
	SetProcessing()
	SetError()
}

// Runner performs one full assistant run.
type Runner interface {
	Run(ctx context.Context, obs Observer) (*Outcome, error)
}

type Config struct {
	Runner        Runner
	Injector      inject.Injector
	Config        *config.Config
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater  // Optional - can be nil
	OnOutcome     func(*Outcome) // Optional - called after a successful run
	OnError       func(error)    // Optional - called after a failed run
}

// App drives assistant runs from a global hotkey or tray action. Only one
// run is active at a time; triggers while running are ignored.
type App struct {
	runner    Runner
	inj       inject.Injector
	cfg       *config.Config
	log       zerolog.Logger
	status    StatusUpdater
	onOutcome func(*Outcome)
	onError   func(error)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	last    *Outcome
	wg      sync.WaitGroup
}

func New(cfg Config) *App {
	return &App{
		runner:    cfg.Runner,
		inj:       cfg.Injector,
		cfg:       cfg.Config,
		log:       cfg.Logger,
		status:    cfg.StatusUpdater,
		onOutcome: cfg.OnOutcome,
		onError:   cfg.OnError,
	}
}

// OnHotkey starts a run on key press. Releases are ignored.
func (a *App) OnHotkey(pressed bool) {
	if !pressed {
		return
	}
	a.Trigger()
}

// Trigger starts a run unless one is already in progress. It reports
// whether a run was started.
func (a *App) Trigger() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		a.log.Debug().Msg("Capture already in progress")
		return false
	}

	a.log.Info().Msg("Hotkey triggered, starting capture")
	a.running = true
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.setStatus(StatusUpdater.SetRecording)

	a.wg.Add(1)
	go a.run(ctx)
	return true
}

func (a *App) run(ctx context.Context) {
	defer a.wg.Done()

	out, err := a.runner.Run(ctx, statusObserver{a})

	// Cleared last so IsRunning stays true until status and callbacks
	// have settled.
	defer func() {
		a.mu.Lock()
		a.running = false
		a.cancel = nil
		if err == nil {
			a.last = out
		}
		a.mu.Unlock()
	}()

	if err != nil {
		a.log.Error().Err(err).Msg("Capture failed")
		a.setStatus(StatusUpdater.SetError)
		if a.onError != nil {
			a.onError(err)
		}
		return
	}

	a.log.Info().
		Str("transcript", out.Transcript).
		Str("response", out.Response).
		Msg("Capture finished")

	if a.cfg != nil && a.cfg.Inject.CopyResponse && a.inj != nil && out.Response != "" {
		deliverCtx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		if err := a.inj.Deliver(deliverCtx, out.Response); err != nil {
			a.log.Error().Err(err).Msg("Inject error")
		}
		cancel()
	}

	a.setStatus(StatusUpdater.SetIdle)
	if a.onOutcome != nil {
		a.onOutcome(out)
	}
}

func (a *App) setStatus(f func(StatusUpdater)) {
	if a.status != nil {
		f(a.status)
	}
}

// IsRunning reports whether a capture run is in progress.
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// LastOutcome returns the most recent successful run, or nil.
func (a *App) LastOutcome() *Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// CopyLast puts the last response on the clipboard.
func (a *App) CopyLast(ctx context.Context) error {
	last := a.LastOutcome()
	if last == nil || last.Response == "" || a.inj == nil {
		return nil
	}
	return a.inj.Copy(ctx, last.Response)
}

// Shutdown cancels an active run and waits for it to finish or for ctx
// to expire.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// statusObserver moves the tray from recording to processing once speech
// has been captured.
type statusObserver struct{ a *App }

func (o statusObserver) StepStarted(Step) {}

func (o statusObserver) StepDone(s Step, _ *Outcome) {
	if s == StepSpeech {
		o.a.setStatus(StatusUpdater.SetProcessing)
	}
}

func (o statusObserver) StepFailed(s Step, err error) {
	o.a.log.Warn().Err(err).Stringer("step", s).Msg("Step failed")
}
