package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultListingURL is the directory listing played when no other URL is given.
const DefaultListingURL = "https://bafybeibokvlz3aqh2ziuejpbkxrheqlg55zhfcb7rfjafdbx42jm4vor7u.ipfs.w3s.link/"

type ConfigStruct struct {
	Library LibraryConfig
	Network NetworkConfig
	Audio   AudioConfig
	Storage StorageConfig
	Control ControlConfig
	Sentry  SentryConfig
	Options Options
}

type LibraryConfig struct {
	ListingURL string
}

type NetworkConfig struct {
	// HTTPTimeout of zero means requests never time out.
	HTTPTimeout time.Duration
}

type AudioConfig struct {
	FFmpegPath       string
	TranscodeTimeout time.Duration
	TempDir          string
}

type StorageConfig struct {
	// DBPath is empty when play history is disabled.
	DBPath string
}

type ControlConfig struct {
	Port string
}

type SentryConfig struct {
	DSN     string
	Release string
}

type Options struct {
	LogLevel string
	ShowTips bool
}

func (c *ControlConfig) IsEnabled() bool {
	return c.Port != ""
}

// Addr binds the control API to loopback only.
func (c *ControlConfig) Addr() string {
	return "127.0.0.1:" + c.Port
}

func (s *StorageConfig) HistoryEnabled() bool {
	return s.DBPath != ""
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Library: LibraryConfig{
			ListingURL: getListingURL(),
		},
		Network: NetworkConfig{
			HTTPTimeout: getHTTPTimeout(),
		},
		Audio: AudioConfig{
			FFmpegPath:       getFFmpegPath(),
			TranscodeTimeout: getTranscodeTimeout(),
			TempDir:          os.Getenv("TEMP_DIR"),
		},
		Storage: StorageConfig{
			DBPath: getDBPath(),
		},
		Control: ControlConfig{
			Port: getControlPort(),
		},
		Sentry: SentryConfig{
			DSN:     os.Getenv("SENTRY_DSN"),
			Release: os.Getenv("RELEASE"),
		},
		Options: Options{
			LogLevel: getLogLevel(),
			ShowTips: os.Getenv("SHOW_TIPS") != "false",
		},
	}

	Config = config
}

func getListingURL() string {
	u := strings.TrimSpace(os.Getenv("JUKEBOX_URL"))
	if u == "" {
		return DefaultListingURL
	}
	return u
}

func getHTTPTimeout() time.Duration {
	timeoutStr := os.Getenv("HTTP_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 60 * time.Second
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout < 0 {
		return 60 * time.Second
	}
	if timeout > 600 {
		return 600 * time.Second
	}
	return time.Duration(timeout) * time.Second
}

func getFFmpegPath() string {
	path := os.Getenv("FFMPEG_PATH")
	if path == "" {
		return "ffmpeg"
	}
	return path
}

func getTranscodeTimeout() time.Duration {
	timeoutStr := os.Getenv("TRANSCODE_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		return 120 * time.Second
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout <= 0 {
		return 120 * time.Second
	}
	if timeout > 3600 {
		return time.Hour
	}
	return time.Duration(timeout) * time.Second
}

func getDBPath() string {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "off" {
		return ""
	}
	if dbPath != "" {
		return dbPath
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "jukebox", "history.db")
}

func getControlPort() string {
	portStr := strings.TrimSpace(os.Getenv("CONTROL_PORT"))
	if portStr == "" {
		return ""
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return ""
	}
	return strconv.Itoa(port)
}

func getLogLevel() string {
	level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error":
		return level
	default:
		return "info"
	}
}
