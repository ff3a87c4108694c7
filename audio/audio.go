package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// SpeakerSampleRate is the rate the output is initialised with. Tracks with a
// different rate are resampled.
const SpeakerSampleRate = beep.SampleRate(44100)

// playableExtensions are decoded directly; anything else has to be
// transcoded by the Loader first.
var playableExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
}

// IsPlayable reports whether a file with extension ext can be loaded without transcoding.
func IsPlayable(ext string) bool {
	return playableExtensions[strings.ToLower(ext)]
}

// decodeFile opens path and returns a streamer for it. The returned streamer
// owns the file: closing it closes the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, *os.File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlayable(ext) {
		return nil, beep.Format{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	return streamer, format, f, nil
}
