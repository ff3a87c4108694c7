package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestGetListingURL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"empty", "", DefaultListingURL},
		{"blank", "   ", DefaultListingURL},
		{"custom", "https://example.com/music/", "https://example.com/music/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JUKEBOX_URL", tt.env)
			if got := getListingURL(); got != tt.want {
				t.Errorf("getListingURL() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestGetHTTPTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want time.Duration
	}{
		{"empty", "", 60 * time.Second},
		{"invalid", "abc", 60 * time.Second},
		{"negative", "-1", 60 * time.Second},
		{"zero disables", "0", 0},
		{"valid", "15", 15 * time.Second},
		{"max", "600", 600 * time.Second},
		{"over", "601", 600 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_TIMEOUT_SECONDS", tt.env)
			if got := getHTTPTimeout(); got != tt.want {
				t.Errorf("getHTTPTimeout() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestGetTranscodeTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want time.Duration
	}{
		{"empty", "", 120 * time.Second},
		{"invalid", "foo", 120 * time.Second},
		{"zero", "0", 120 * time.Second},
		{"negative", "-5", 120 * time.Second},
		{"min", "1", time.Second},
		{"mid", "300", 300 * time.Second},
		{"over", "7200", time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRANSCODE_TIMEOUT_SECONDS", tt.env)
			if got := getTranscodeTimeout(); got != tt.want {
				t.Errorf("getTranscodeTimeout() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestGetDBPath(t *testing.T) {
	t.Run("off", func(t *testing.T) {
		t.Setenv("DB_PATH", "off")
		if got := getDBPath(); got != "" {
			t.Errorf("getDBPath() = %q; want empty", got)
		}
	})

	t.Run("custom", func(t *testing.T) {
		t.Setenv("DB_PATH", "/tmp/custom.db")
		if got := getDBPath(); got != "/tmp/custom.db" {
			t.Errorf("getDBPath() = %q; want /tmp/custom.db", got)
		}
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("DB_PATH", "")
		got := getDBPath()
		if filepath.Base(got) != "history.db" || filepath.Base(filepath.Dir(got)) != "jukebox" {
			t.Errorf("getDBPath() = %q; want .../jukebox/history.db", got)
		}
	})
}

func TestGetControlPort(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"empty", "", ""},
		{"invalid", "http", ""},
		{"zero", "0", ""},
		{"too large", "70000", ""},
		{"valid", "8765", "8765"},
		{"padded", " 9000 ", "9000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONTROL_PORT", tt.env)
			if got := getControlPort(); got != tt.want {
				t.Errorf("getControlPort() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"", "info"},
		{"DEBUG", "debug"},
		{"trace", "trace"},
		{"verbose", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := getLogLevel(); got != tt.want {
				t.Errorf("getLogLevel() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestNewConfig(t *testing.T) {
	t.Setenv("JUKEBOX_URL", "https://example.com/")
	t.Setenv("CONTROL_PORT", "8765")
	t.Setenv("DB_PATH", "off")
	t.Setenv("SHOW_TIPS", "false")

	NewConfig()

	if Config.Library.ListingURL != "https://example.com/" {
		t.Errorf("ListingURL = %q", Config.Library.ListingURL)
	}
	if !Config.Control.IsEnabled() || Config.Control.Addr() != "127.0.0.1:8765" {
		t.Errorf("Control = %+v; want enabled on 127.0.0.1:8765", Config.Control)
	}
	if Config.Storage.HistoryEnabled() {
		t.Error("history should be disabled with DB_PATH=off")
	}
	if Config.Options.ShowTips {
		t.Error("tips should be disabled with SHOW_TIPS=false")
	}
}
