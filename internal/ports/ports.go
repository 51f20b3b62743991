package ports

import (
	"context"

	"github.com/ArcSyn/TRUECAPTIONTOOL1-sub001/internal/types"
)

// MediaTool abstracts the media probe/extract operations backed by ffmpeg.
type MediaTool interface {
	// ProbeDuration returns the media duration in seconds.
	ProbeDuration(ctx context.Context, inPath string) (float64, error)
	// ExtractAudioMono16k converts arbitrary input media into the mono
	// 16 kHz WAV the speech engine expects.
	ExtractAudioMono16k(ctx context.Context, inPath, outWav string) error
	// ExtractWindow cuts [start, end) seconds out of a WAV file.
	ExtractWindow(ctx context.Context, inWav string, start, end float64, outWav string) error
}

// SpeechEngine transcribes one window of audio. Returned segment times are
// window-local; callers own the conversion to global time. The engine does
// no retrying itself.
type SpeechEngine interface {
	Transcribe(ctx context.Context, wavPath string) ([]types.Segment, error)
}
