package listing

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"jukebox/sentryhelper"

	sentry "github.com/getsentry/sentry-go"
)

const sampleIndex = `<!DOCTYPE html>
<html><body>
<h1>Index of /</h1>
<a href="../">Parent</a>
<a href="a.mp3">a.mp3</a>
<a href="b.m4a">b.m4a</a>
<a href="c.txt">c.txt</a>
<a href="b.m4a?filename=x">b.m4a (download)</a>
</body></html>`

func refs(t *testing.T, html string) []string {
	t.Helper()
	tracks, err := ParseTracks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseTracks: %v", err)
	}
	out := make([]string, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Ref
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseTracksScenario(t *testing.T) {
	got := refs(t, sampleIndex)
	want := []string{"a.mp3", "b.m4a"}
	if !equal(got, want) {
		t.Errorf("ParseTracks() = %v; want %v", got, want)
	}
}

func TestParseTracksPreservesDocumentOrder(t *testing.T) {
	html := `<a href="z.ogg">z</a><a href="m.wav">m</a><a href="a.mp3">a</a><a href="m.wav">again</a>`
	got := refs(t, html)
	want := []string{"z.ogg", "m.wav", "a.mp3", "m.wav"}
	if !equal(got, want) {
		t.Errorf("ParseTracks() = %v; want %v", got, want)
	}
}

func TestParseTracksDropsFilenameMarker(t *testing.T) {
	html := `<a href="/ipfs/cid/song.mp3?filename=song.mp3">dl</a><a href="/ipfs/cid/song.mp3">song</a>`
	got := refs(t, html)
	want := []string{"/ipfs/cid/song.mp3"}
	if !equal(got, want) {
		t.Errorf("ParseTracks() = %v; want %v", got, want)
	}
}

func TestParseTracksEmpty(t *testing.T) {
	got := refs(t, `<html><body><p>nothing here</p><a>no href</a></body></html>`)
	if len(got) != 0 {
		t.Errorf("ParseTracks() = %v; want empty", got)
	}
}

func TestIsAudioRef(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"a.mp3", true},
		{"b.m4a", true},
		{"c.wav", true},
		{"d.ogg", true},
		{"LOUD.MP3", true},
		{"song.mp3#t=10", true},
		{"c.txt", false},
		{"e.flac", false},
		{"f.opus", false},
		{"mp3", false},
		{"b.m4a?filename=x", false},
		{"folder/", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := IsAudioRef(tt.href); got != tt.want {
				t.Errorf("IsAudioRef(%q) = %v; want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestListPrintsNumberedListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<a href="My%20Song.mp3">x</a><a href="other.wav">y</a>`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	tracks := NewLister(srv.Client(), &out).List(context.Background(), srv.URL+"/")

	if len(tracks) != 2 {
		t.Fatalf("List() returned %d tracks; want 2", len(tracks))
	}
	if tracks[0].Name != "My Song.mp3" {
		t.Errorf("tracks[0].Name = %q; want %q", tracks[0].Name, "My Song.mp3")
	}
	for _, line := range []string{"Available Songs:", "1. My Song.mp3", "2. other.wav"} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q:\n%s", line, out.String())
		}
	}
}

func TestListNotFoundReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var out bytes.Buffer
	tracks := NewLister(srv.Client(), &out).List(context.Background(), srv.URL+"/")

	if tracks == nil || len(tracks) != 0 {
		t.Errorf("List() = %v; want empty non-nil slice", tracks)
	}
	if !strings.Contains(out.String(), "Error accessing directory") || !strings.Contains(out.String(), "404") {
		t.Errorf("expected a 404 error message, got:\n%s", out.String())
	}
}

type capturedEvents struct {
	mu     sync.Mutex
	events []*sentry.Event
}

// commandHub returns a context carrying a hub that records events instead of
// sending them, the way a menu command's context does.
func commandHub(t *testing.T) (context.Context, *capturedEvents) {
	t.Helper()
	t.Setenv("SENTRY_DSN", "")
	captured := &capturedEvents{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured.mu.Lock()
			defer captured.mu.Unlock()
			captured.events = append(captured.events, event)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("sentry.NewClient: %v", err)
	}
	hub := sentry.NewHub(client, sentry.NewScope())
	return sentry.SetHubOnContext(context.Background(), hub), captured
}

func TestListReportsErrorOnCommandHub(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, captured := commandHub(t)
	sentryhelper.AddBreadcrumb(ctx, "menu", "ChangePlaylist")

	var out bytes.Buffer
	NewLister(srv.Client(), &out).List(ctx, srv.URL+"/")

	if len(captured.events) != 1 {
		t.Fatalf("captured %d events; want 1", len(captured.events))
	}
	crumbs := captured.events[0].Breadcrumbs
	if len(crumbs) != 1 || crumbs[0].Message != "ChangePlaylist" {
		t.Errorf("breadcrumbs = %+v; want the command breadcrumb", crumbs)
	}
}

func TestListNetworkErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/"
	srv.Close()

	var out bytes.Buffer
	tracks := NewLister(http.DefaultClient, &out).List(context.Background(), url)

	if len(tracks) != 0 {
		t.Errorf("List() = %v; want empty", tracks)
	}
	if !strings.Contains(out.String(), "Error accessing directory") {
		t.Errorf("expected an error message, got:\n%s", out.String())
	}
}

func TestListNoAudioFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="readme.txt">readme</a>`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	tracks := NewLister(srv.Client(), &out).List(context.Background(), srv.URL)

	if len(tracks) != 0 {
		t.Errorf("List() = %v; want empty", tracks)
	}
	if !strings.Contains(out.String(), "No audio files found") {
		t.Errorf("expected no-files message, got:\n%s", out.String())
	}
}
