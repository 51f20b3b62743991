package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/chunk"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/scenes"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/script"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/jobs"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/ports"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/quota"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// Stage names, in execution order. Each stage owns a progress sub-range;
// failure in a stage marks the job failed with that stage and runs nothing
// later.
const (
	StageQuotaCheck     = "quotaCheck"
	StageTranscribe     = "transcribe"
	StageSceneSplit     = "sceneSplit"
	StageTextFormat     = "textFormat"
	StageTimingAssemble = "timingAssemble"
)

// stageBounds maps a stage onto its [from, to] progress percent band.
var stageBounds = map[string][2]int{
	StageQuotaCheck:     {0, 5},
	StageTranscribe:     {5, 60},
	StageSceneSplit:     {60, 75},
	StageTextFormat:     {75, 90},
	StageTimingAssemble: {90, 100},
}

// ErrCancelled marks a job aborted by a cancellation request.
var ErrCancelled = errors.New("job cancelled")

// StageError pins a pipeline failure to exactly one stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Config carries everything one job needs.
type Config struct {
	InputPath string
	WorkDir   string

	Engine   chunk.EngineConfig
	Split    scenes.SplitConfig
	Assemble script.AssembleConfig
	Usage    quota.Usage

	// OverallTimeoutPerMinute scales the whole-job deadline with the media
	// duration. Zero disables the deadline.
	OverallTimeoutPerMinute time.Duration

	Logf func(format string, args ...any)
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.WorkDir == "" {
		return errors.New("work dir is empty")
	}
	return nil
}

// Deps are the external collaborators the orchestrator drives.
type Deps struct {
	Media ports.MediaTool
	ASR   ports.SpeechEngine
	Jobs  *jobs.Manager
}

// Orchestrator sequences the caption pipeline for submitted jobs and owns
// all job-state mutation. Many jobs may run concurrently; each runs its
// stages sequentially on its own worker.
type Orchestrator struct {
	d Deps
}

func New(d Deps) *Orchestrator {
	return &Orchestrator{d: d}
}

// Submit registers a new pending job and returns its id.
func (o *Orchestrator) Submit(cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	snap := o.d.Jobs.Create()
	return snap.ID, nil
}

// Status returns the current job snapshot.
func (o *Orchestrator) Status(id string) (jobs.Snapshot, error) {
	return o.d.Jobs.Get(id)
}

// Result returns the animation script of a completed job.
func (o *Orchestrator) Result(id string) (*types.AnimationScript, error) {
	return o.d.Jobs.Result(id)
}

// Cancel requests cancellation; the worker honors it between stages and
// before each window dispatch.
func (o *Orchestrator) Cancel(id string) error {
	return o.d.Jobs.Cancel(id)
}

// Run executes all stages for a submitted job. It is the single writer of
// the job's state; on any stage failure the job is marked failed with that
// stage and the error, and nothing later runs.
func (o *Orchestrator) Run(ctx context.Context, id string, cfg Config) error {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if _, err := o.d.Jobs.Update(id, func(s *jobs.Snapshot) {
		s.Status = jobs.StatusProcessing
		s.ProgressMessage = "starting"
	}); err != nil {
		return err
	}

	result, err := o.run(ctx, id, cfg, logf)
	if err != nil {
		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			stageErr = &StageError{Stage: StageQuotaCheck, Err: err}
		}
		status := jobs.StatusFailed
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			status = jobs.StatusCancelled
		}
		o.d.Jobs.Update(id, func(s *jobs.Snapshot) {
			s.Status = status
			s.FailedStage = stageErr.Stage
			s.Error = stageErr.Err.Error()
			s.ProgressMessage = stageErr.Error()
		})
		logf("job %s failed at %s: %v", id, stageErr.Stage, stageErr.Err)
		return err
	}

	o.d.Jobs.SetResult(id, result)
	o.d.Jobs.Update(id, func(s *jobs.Snapshot) {
		s.Status = jobs.StatusCompleted
		s.ProgressPercent = 100
		s.ProgressMessage = "completed"
		s.SceneCount = len(result.Units)
	})
	logf("job %s completed with %d caption units", id, len(result.Units))
	return nil
}

func (o *Orchestrator) run(ctx context.Context, id string, cfg Config, logf func(string, ...any)) (*types.AnimationScript, error) {
	// quotaCheck: probe the duration (cheap) and gate before any
	// transcription or formatting work is spent.
	if err := o.checkCancelled(id); err != nil {
		return nil, &StageError{Stage: StageQuotaCheck, Err: err}
	}
	o.advance(id, StageQuotaCheck, 0, "checking quota")

	duration, err := o.d.Media.ProbeDuration(ctx, cfg.InputPath)
	if err != nil {
		return nil, &StageError{Stage: StageQuotaCheck, Err: err}
	}
	if err := quota.Check(cfg.Usage, duration); err != nil {
		return nil, &StageError{Stage: StageQuotaCheck, Err: err}
	}
	o.advance(id, StageQuotaCheck, 100, fmt.Sprintf("quota ok for %.0fs of audio", duration))

	if cfg.OverallTimeoutPerMinute > 0 {
		timeout := time.Duration(duration/60+1) * cfg.OverallTimeoutPerMinute
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// transcribe: extract audio, then run the chunked engine. Engine
	// progress (0..100) maps into this stage's band.
	if err := o.checkCancelled(id); err != nil {
		return nil, &StageError{Stage: StageTranscribe, Err: err}
	}
	o.advance(id, StageTranscribe, 0, "extracting audio")

	wav := filepath.Join(cfg.WorkDir, "audio.wav")
	if err := o.d.Media.ExtractAudioMono16k(ctx, cfg.InputPath, wav); err != nil {
		return nil, &StageError{Stage: StageTranscribe, Err: err}
	}

	engCtx, engCancel := context.WithCancel(ctx)
	defer engCancel()
	go func() {
		// Best-effort abort of outstanding window calls on cancellation.
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-engCtx.Done():
				return
			case <-t.C:
				if o.d.Jobs.Cancelled(id) {
					engCancel()
					return
				}
			}
		}
	}()

	engCfg := cfg.Engine
	engCfg.Logf = logf
	engine := chunk.NewEngine(o.d.Media, o.d.ASR, engCfg)
	transcript, err := engine.TranscribeFullLength(engCtx, wav, duration, cfg.WorkDir,
		func(percent int, message string) {
			o.advance(id, StageTranscribe, percent, message)
		})
	if err != nil {
		if o.d.Jobs.Cancelled(id) {
			return nil, &StageError{Stage: StageTranscribe, Err: ErrCancelled}
		}
		return nil, &StageError{Stage: StageTranscribe, Err: err}
	}

	// sceneSplit
	if err := o.checkCancelled(id); err != nil {
		return nil, &StageError{Stage: StageSceneSplit, Err: err}
	}
	o.advance(id, StageSceneSplit, 0, "splitting scenes")
	split, err := scenes.Split(transcript, cfg.Split)
	if err != nil {
		return nil, &StageError{Stage: StageSceneSplit, Err: err}
	}
	o.advance(id, StageSceneSplit, 100, fmt.Sprintf("%d scenes", len(split)))

	// textFormat
	if err := o.checkCancelled(id); err != nil {
		return nil, &StageError{Stage: StageTextFormat, Err: err}
	}
	o.advance(id, StageTextFormat, 0, "formatting captions")
	formatted := scenes.Format(split)
	o.advance(id, StageTextFormat, 100, fmt.Sprintf("%d scenes formatted", len(formatted)))

	// timingAssemble
	if err := o.checkCancelled(id); err != nil {
		return nil, &StageError{Stage: StageTimingAssemble, Err: err}
	}
	o.advance(id, StageTimingAssemble, 0, "assembling animation script")
	animation, err := script.Assemble(formatted, cfg.Assemble)
	if err != nil {
		return nil, &StageError{Stage: StageTimingAssemble, Err: err}
	}
	return &animation, nil
}

func (o *Orchestrator) checkCancelled(id string) error {
	if o.d.Jobs.Cancelled(id) {
		return ErrCancelled
	}
	return nil
}

// advance maps a stage-local percent (0..100) into the stage's band and
// publishes the new snapshot.
func (o *Orchestrator) advance(id, stage string, stagePercent int, message string) {
	bounds := stageBounds[stage]
	pct := bounds[0] + (bounds[1]-bounds[0])*stagePercent/100
	o.d.Jobs.Update(id, func(s *jobs.Snapshot) {
		s.ProgressPercent = pct
		s.ProgressMessage = message
	})
}
