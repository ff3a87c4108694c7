package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jukebox/models"
	"jukebox/sentryhelper"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// AudioExtensions are the file suffixes a listing link must end in to be kept.
var AudioExtensions = []string{".m4a", ".mp3", ".wav", ".ogg"}

// duplicateMarker identifies alternate download links to a file that is
// already listed under its plain name.
const duplicateMarker = "?filename="

const userAgent = "jukebox/1.0 (+directory-listing)"

var ErrBadStatus = errors.New("unexpected HTTP status")

type Lister struct {
	client *http.Client
	out    io.Writer
	logger *log.Entry
}

func NewLister(client *http.Client, out io.Writer) *Lister {
	if client == nil {
		client = http.DefaultClient
	}
	return &Lister{
		client: client,
		out:    out,
		logger: log.WithFields(log.Fields{
			"module": "listing",
		}),
	}
}

// List fetches the directory page at baseURL and prints a numbered listing of
// the audio tracks found. Any failure is printed and logged and results in an
// empty slice.
func (l *Lister) List(ctx context.Context, baseURL string) []models.Track {
	fmt.Fprintf(l.out, "Fetching file list from directory: %s\n", baseURL)

	tracks, err := l.Fetch(ctx, baseURL)
	if err != nil {
		l.logger.Errorf("listing %s failed: %v", baseURL, err)
		if ctx.Err() == nil {
			sentryhelper.CaptureException(ctx, err)
		}
		fmt.Fprintf(l.out, "Error accessing directory: %v\n", err)
		return []models.Track{}
	}

	if len(tracks) == 0 {
		fmt.Fprintln(l.out, "No audio files found in the directory.")
		return []models.Track{}
	}

	PrintTracks(l.out, tracks)
	return tracks
}

// Fetch retrieves and parses the directory page without printing anything.
func (l *Lister) Fetch(ctx context.Context, baseURL string) ([]models.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	l.logger.Tracef("fetching directory listing: %s", baseURL)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	tracks, err := ParseTracks(resp.Body)
	if err != nil {
		return nil, err
	}

	l.logger.Debugf("found %d tracks at %s", len(tracks), baseURL)
	return tracks, nil
}

// ParseTracks extracts audio links from an HTML directory index in document order.
func ParseTracks(r io.Reader) ([]models.Track, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	hrefs := doc.Find("a[href]").Map(func(_ int, s *goquery.Selection) string {
		href, _ := s.Attr("href")
		return strings.TrimSpace(href)
	})

	kept := lo.Filter(hrefs, func(href string, _ int) bool {
		return IsAudioRef(href) && !strings.Contains(href, duplicateMarker)
	})

	return lo.Map(kept, func(href string, _ int) models.Track {
		return models.NewTrack(href)
	}), nil
}

// IsAudioRef reports whether href points at a file with a recognised audio
// extension. The match ignores case, so "SONG.MP3" is kept.
func IsAudioRef(href string) bool {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	href = strings.ToLower(href)
	return lo.SomeBy(AudioExtensions, func(ext string) bool {
		return strings.HasSuffix(href, ext)
	})
}

func PrintTracks(w io.Writer, tracks []models.Track) {
	fmt.Fprintln(w, "\nAvailable Songs:")
	for i, track := range tracks {
		fmt.Fprintf(w, "%d. %s\n", i+1, track.Name)
	}
}
