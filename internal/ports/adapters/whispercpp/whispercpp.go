package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

// Transcribe runs whisper.cpp on one window WAV and parses its JSON output.
// Segment times come back window-local.
func (a *Adapter) Transcribe(ctx context.Context, wavPath string) ([]types.Segment, error) {
	outPrefix := strings.TrimSuffix(wavPath, filepath.Ext(wavPath))
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if lang := normalizeLanguage(a.language); lang != "" {
		args = append(args, "-l", lang)
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var tr types.Transcript
	if err := json.Unmarshal(jb, &tr); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segs := make([]types.Segment, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" || s.End <= s.Start {
			continue
		}
		segs = append(segs, s)
	}
	return segs, nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}
