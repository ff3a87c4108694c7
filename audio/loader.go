package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"jukebox/models"
	"jukebox/sentryhelper"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// transcodeExtensions are container formats the Player cannot decode itself.
var transcodeExtensions = map[string]bool{
	".m4a": true,
}

type LoaderOptions struct {
	FFmpegPath       string
	TranscodeTimeout time.Duration
	// TempDir defaults to the system temp directory.
	TempDir string
}

// Loader downloads tracks into temporary files and turns them into something
// the Player can decode.
type Loader struct {
	client           *http.Client
	ffmpegPath       string
	transcodeTimeout time.Duration
	tempDir          string
	logger           *log.Entry
}

func NewLoader(client *http.Client, opts LoaderOptions) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.TranscodeTimeout <= 0 {
		opts.TranscodeTimeout = 120 * time.Second
	}
	return &Loader{
		client:           client,
		ffmpegPath:       opts.FFmpegPath,
		transcodeTimeout: opts.TranscodeTimeout,
		tempDir:          opts.TempDir,
		logger: log.WithFields(log.Fields{
			"module": "audio-loader",
		}),
	}
}

// ResolveURL returns ref as an absolute URL. Relative refs are resolved
// against baseURL, which is treated as a directory.
func ResolveURL(baseURL, ref string) (string, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	rel, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing track reference: %w", err)
	}
	return base.ResolveReference(rel).String(), nil
}

// extension returns the lowercased file extension of a URL's path.
func extension(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(path.Ext(rawURL))
}

// Prepare downloads track and returns the path of a locally playable
// temporary file. The caller owns the file and must remove it.
func (l *Loader) Prepare(ctx context.Context, baseURL string, track models.Track) (string, error) {
	span := sentry.StartSpan(ctx, "jukebox.prepare")
	span.Description = track.Name
	defer span.Finish()

	trackURL, err := ResolveURL(baseURL, track.Ref)
	if err != nil {
		return "", l.fail(ctx, span, track, err)
	}

	ext := extension(trackURL)
	if !IsPlayable(ext) && !transcodeExtensions[ext] {
		return "", l.fail(ctx, span, track, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext))
	}

	start := time.Now()
	downloaded, err := l.download(ctx, trackURL, ext)
	if err != nil {
		return "", l.fail(ctx, span, track, err)
	}
	l.logger.Debugf("downloaded %s in %v", track.Name, time.Since(start))

	if !transcodeExtensions[ext] {
		return downloaded, nil
	}

	converted, err := l.transcode(ctx, downloaded)
	os.Remove(downloaded)
	if err != nil {
		return "", l.fail(ctx, span, track, err)
	}
	return converted, nil
}

func (l *Loader) fail(ctx context.Context, span *sentry.Span, track models.Track, err error) error {
	span.Status = sentry.SpanStatusInternalError
	err = fmt.Errorf("preparing %q: %w", track.Name, err)
	if ctx.Err() != nil {
		// Cancelled by a stop request, not a failure worth reporting.
		l.logger.Debug(err)
		return err
	}
	l.logger.Error(err)
	sentryhelper.CaptureException(ctx, err)
	return err
}

func (l *Loader) download(ctx context.Context, trackURL, ext string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	req.Header.Set("User-Agent", "jukebox/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: HTTP %d from %s", ErrDownload, resp.StatusCode, trackURL)
	}

	f, err := os.CreateTemp(l.tempDir, "jukebox-*"+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	l.logger.Tracef("wrote %d bytes to %s", n, f.Name())
	return f.Name(), nil
}

// transcode converts src to a WAV file next to it using ffmpeg.
func (l *Loader) transcode(ctx context.Context, src string) (string, error) {
	out, err := os.CreateTemp(l.tempDir, "jukebox-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	out.Close()

	ctx, cancel := context.WithTimeout(ctx, l.transcodeTimeout)
	defer cancel()

	ffmpeg := exec.CommandContext(ctx, l.ffmpegPath,
		"-y",
		"-loglevel", "error",
		"-i", src,
		"-f", "wav",
		out.Name())

	start := time.Now()
	output, err := ffmpeg.CombinedOutput()
	if err != nil {
		os.Remove(out.Name())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: ffmpeg timed out after %v", ErrTranscode, l.transcodeTimeout)
		}
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrTranscode, msg)
	}

	l.logger.Debugf("transcoded %s in %v", filepath.Base(src), time.Since(start))
	return out.Name(), nil
}
