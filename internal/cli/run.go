package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/config"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/chunk"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/scenes"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/domain/script"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/jobs"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/pipeline"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/ports/adapters/ffmpeg"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/ports/adapters/whispercpp"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/quota"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/watch"
)

func runOnce(cmd *cobra.Command, input string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return processFile(ctx, cfg, absIn, log.Printf)
}

func runWatch(cmd *cobra.Command, dir string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Paths.Watch
	}
	if dir == "" {
		return errors.New("no watch directory: pass one or set paths.watch in the config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w := watch.New(dir, cfg.Windows.MaxConcurrent, log.Printf, func(ctx context.Context, path string) error {
		return processFile(ctx, cfg, path, log.Printf)
	})
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flags override the file.
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.Paths.Output = v
	}
	if v, _ := cmd.Flags().GetString("style"); v != "" {
		cfg.Style.Preset = v
	}
	if v, _ := cmd.Flags().GetString("position"); v != "" {
		cfg.Style.Position = v
	}
	if v, _ := cmd.Flags().GetString("tier"); v != "" {
		cfg.Quota.Tier = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// overallTimeoutPerMinute is the wall-clock budget one job gets per minute
// of source audio, covering extraction, all window transcriptions with
// retries, and the formatting stages.
const overallTimeoutPerMinute = 2 * time.Minute

// processFile runs the full pipeline on one input and writes the JSX and
// SRT artifacts next to each other in the output directory.
func processFile(ctx context.Context, cfg *config.Config, input string, logf func(string, ...any)) error {
	media := ffmpeg.New(cfg.Media.FFmpegPath, cfg.Media.FFprobePath)
	asr := whispercpp.New(cfg.Whisper.BinaryPath, cfg.Whisper.ModelPath, cfg.Whisper.Language)
	orch := pipeline.New(pipeline.Deps{Media: media, ASR: asr, Jobs: jobs.NewManager()})

	if err := os.MkdirAll(cfg.Paths.Cache, 0o755); err != nil {
		return err
	}
	workDir, err := os.MkdirTemp(cfg.Paths.Cache, "job-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	jobCfg := pipeline.Config{
		InputPath: input,
		WorkDir:   workDir,
		Engine:    engineConfig(cfg, logf),
		Split:     splitConfig(cfg),
		Assemble:  assembleConfig(cfg),
		Usage:     quota.Usage{Tier: quota.Tier(cfg.Quota.Tier)},

		OverallTimeoutPerMinute: overallTimeoutPerMinute,

		Logf: logf,
	}

	id, err := orch.Submit(jobCfg)
	if err != nil {
		return err
	}
	logf("job %s: %s", id, filepath.Base(input))

	if err := orch.Run(ctx, id, jobCfg); err != nil {
		if snap, serr := orch.Status(id); serr == nil && snap.FailedStage != "" {
			return fmt.Errorf("job %s failed at %s: %w", id, snap.FailedStage, err)
		}
		return fmt.Errorf("job %s: %w", id, err)
	}

	res, err := orch.Result(id)
	if err != nil {
		return err
	}
	return writeOutputs(cfg.Paths.Output, input, res, logf)
}

func writeOutputs(outDir, input string, res *types.AnimationScript, logf func(string, ...any)) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	jsxPath := filepath.Join(outDir, base+".jsx")
	if err := os.WriteFile(jsxPath, []byte(script.RenderJSX(*res)), 0o644); err != nil {
		return err
	}

	scs := make([]types.Scene, len(res.Units))
	for i, u := range res.Units {
		scs[i] = types.Scene{Index: u.Index, Start: u.StartTime, End: u.OutTime, Lines: u.Lines}
	}
	srtPath := filepath.Join(outDir, base+".srt")
	if err := os.WriteFile(srtPath, []byte(script.RenderSRT(scs)), 0o644); err != nil {
		return err
	}

	logf("wrote %s and %s (%d captions)", jsxPath, srtPath, len(res.Units))
	return nil
}

func engineConfig(cfg *config.Config, logf func(string, ...any)) chunk.EngineConfig {
	ec := chunk.DefaultEngineConfig()
	ec.WindowSeconds = cfg.Windows.Seconds
	ec.OverlapSeconds = cfg.Windows.OverlapSeconds
	ec.MaxConcurrent = cfg.Windows.MaxConcurrent
	ec.MaxRetries = cfg.Windows.MaxRetries
	ec.ToleratedMissing = cfg.Windows.ToleratedMissing
	ec.Logf = logf
	return ec
}

func splitConfig(cfg *config.Config) scenes.SplitConfig {
	sc := scenes.DefaultSplitConfig()
	sc.MinSceneSeconds = cfg.Scenes.MinSeconds
	sc.MaxSceneSeconds = cfg.Scenes.MaxSeconds
	sc.GapThreshold = cfg.Scenes.GapThreshold
	sc.MaxLineChars = cfg.Scenes.MaxLineChars
	return sc
}

func assembleConfig(cfg *config.Config) script.AssembleConfig {
	ac := script.DefaultAssembleConfig()
	ac.StylePreset = cfg.Style.Preset
	ac.PositionPreset = cfg.Style.Position
	ac.FadeEnabled = cfg.Style.Fade == nil || *cfg.Style.Fade
	ac.FadeInSeconds = cfg.Style.FadeInSeconds
	ac.FadeOutSeconds = cfg.Style.FadeOutSeconds
	return ac
}
