package chunk

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/ports"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// ProgressFunc receives 0..100 percentages as windows complete. The final
// 10% is reserved for stitching.
type ProgressFunc func(percent int, message string)

// EngineConfig tunes window planning, concurrency, and retry policy.
type EngineConfig struct {
	WindowSeconds  float64
	OverlapSeconds float64

	// MaxConcurrent bounds simultaneous speech-engine calls.
	MaxConcurrent int
	// MaxRetries is how many extra attempts a failed window gets.
	MaxRetries int
	// RetryBackoff is the base delay before a retry; doubled per attempt.
	RetryBackoff time.Duration
	// WindowTimeout is the hard per-window deadline for one engine call.
	WindowTimeout time.Duration
	// ToleratedMissing is how many windows may stay failed before the whole
	// call errors with a CoverageError.
	ToleratedMissing int
	// OverlapTolerance is passed through to the stitcher.
	OverlapTolerance float64

	Logf func(format string, args ...any)
}

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WindowSeconds:    DefaultWindowSeconds,
		OverlapSeconds:   DefaultOverlapSeconds,
		MaxConcurrent:    3,
		MaxRetries:       2,
		RetryBackoff:     250 * time.Millisecond,
		WindowTimeout:    2 * time.Minute,
		ToleratedMissing: 0,
		OverlapTolerance: 0.2,
	}
}

// Engine orchestrates window planning, bounded-concurrency transcription of
// each window, and stitching of the per-window results.
type Engine struct {
	media ports.MediaTool
	asr   ports.SpeechEngine
	cfg   EngineConfig
	sleep func(ctx context.Context, d time.Duration) error
}

func NewEngine(media ports.MediaTool, asr ports.SpeechEngine, cfg EngineConfig) *Engine {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	return &Engine{media: media, asr: asr, cfg: cfg, sleep: sleepCtx}
}

// TranscribeFullLength transcribes the whole recording at wavPath. Windows
// run concurrently and complete out of order; results are keyed by window
// index so only the stitch step imposes ordering. Failed windows are
// retried with exponential backoff; if more than ToleratedMissing remain
// failed, the call returns a CoverageError naming them and no partial
// transcript is returned.
func (e *Engine) TranscribeFullLength(
	ctx context.Context,
	wavPath string,
	totalDuration float64,
	workDir string,
	onProgress ProgressFunc,
) (types.Transcript, error) {
	windows, err := PlanWindows(totalDuration, e.cfg.WindowSeconds, e.cfg.OverlapSeconds)
	if err != nil {
		return types.Transcript{}, err
	}
	if onProgress == nil {
		onProgress = func(int, string) {}
	}

	e.cfg.Logf("planned %d windows (%.1fs window, %.1fs overlap)", len(windows), e.cfg.WindowSeconds, e.cfg.OverlapSeconds)

	results := make(map[int][]types.Segment, len(windows))
	pending := windows

	for attempt := 0; attempt <= e.cfg.MaxRetries && len(pending) > 0; attempt++ {
		if attempt > 0 {
			delay := e.cfg.RetryBackoff << (attempt - 1)
			e.cfg.Logf("retrying %d failed windows (attempt %d, backoff %s)", len(pending), attempt, delay)
			if err := e.sleep(ctx, delay); err != nil {
				return types.Transcript{}, err
			}
		}
		pending = e.runPass(ctx, wavPath, workDir, pending, results, len(windows), onProgress)
		if ctx.Err() != nil {
			return types.Transcript{}, ctx.Err()
		}
	}

	missing := missingWindows(results, windows)
	if len(missing) > e.cfg.ToleratedMissing {
		return types.Transcript{}, &CoverageError{Expected: len(windows), Missing: missing}
	}

	onProgress(90, "stitching transcript")
	tr, err := Stitch(results, windows, StitchConfig{
		OverlapSeconds:   e.cfg.OverlapSeconds,
		OverlapTolerance: e.cfg.OverlapTolerance,
		ToleratedMissing: e.cfg.ToleratedMissing,
	})
	if err != nil {
		return types.Transcript{}, err
	}
	onProgress(100, fmt.Sprintf("transcribed %d segments", len(tr.Segments)))
	return tr, nil
}

// runPass dispatches one transcription attempt for every window in todo and
// returns the windows that failed. Successes land in results keyed by index.
func (e *Engine) runPass(
	ctx context.Context,
	wavPath, workDir string,
	todo []Window,
	results map[int][]types.Segment,
	total int,
	onProgress ProgressFunc,
) []Window {
	sem := newSemaphore(e.cfg.MaxConcurrent)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []Window
	)
	for _, w := range todo {
		if err := sem.acquire(ctx); err != nil {
			mu.Lock()
			failed = append(failed, w)
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(w Window) {
			defer wg.Done()
			defer sem.release()

			segs, err := e.transcribeWindow(ctx, wavPath, workDir, w)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.cfg.Logf("%v", &WindowError{Window: w.Index, Err: err})
				failed = append(failed, w)
				return
			}
			results[w.Index] = segs
			done := len(results)
			// Window work maps onto 0..90%; stitching owns the rest.
			onProgress(done*90/total, fmt.Sprintf("transcribed window %d/%d", done, total))
		}(w)
	}
	wg.Wait()
	return failed
}

func (e *Engine) transcribeWindow(ctx context.Context, wavPath, workDir string, w Window) ([]types.Segment, error) {
	wctx := ctx
	if e.cfg.WindowTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, e.cfg.WindowTimeout)
		defer cancel()
	}

	winWav := filepath.Join(workDir, fmt.Sprintf("window_%03d.wav", w.Index))
	if err := e.media.ExtractWindow(wctx, wavPath, w.Start, w.End, winWav); err != nil {
		return nil, err
	}
	return e.asr.Transcribe(wctx, winWav)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
