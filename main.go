package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"jukebox/audio"
	"jukebox/config"
	"jukebox/controller"
	"jukebox/database"
	"jukebox/handlers"
	"jukebox/listing"
	"jukebox/sentry"

	"github.com/GiGurra/boa/pkg/boa"
	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Params struct {
	URL     string `pos:"true" optional:"true" help:"Directory listing URL to play from. Defaults to JUKEBOX_URL or the built-in playlist."`
	Verbose bool   `short:"v" optional:"true" help:"Enable debug logging."`
}

func main() {
	boa.CmdT[Params]{
		Use:     "jukebox",
		Short:   "Play audio files straight from an HTTP directory listing",
		Version: appVersion(),
		ParamEnrich: boa.ParamEnricherCombine(
			boa.ParamEnricherBool,
			boa.ParamEnricherName,
			boa.ParamEnricherShort,
		),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			os.Exit(run(params))
		},
	}.Run()
}

func run(params *Params) int {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	config.NewConfig()
	cfg := config.Config

	setupLogging(cfg.Options.LogLevel, params.Verbose)

	if err := sentry.Init(cfg.Sentry.DSN, cfg.Sentry.Release); err != nil {
		log.Warnf("sentry.Init: %s", err)
	}
	defer sentry.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player, err := audio.NewSystemPlayer()
	if err != nil {
		log.Errorf("Error initializing audio system: %v", err)
		return 1
	}

	client := &http.Client{Timeout: cfg.Network.HTTPTimeout}
	console := controller.NewConsole(os.Stdin, os.Stdout)

	opts := controller.Options{
		Lister: listing.NewLister(client, console.Writer()),
		Preparer: audio.NewLoader(client, audio.LoaderOptions{
			FFmpegPath:       cfg.Audio.FFmpegPath,
			TranscodeTimeout: cfg.Audio.TranscodeTimeout,
			TempDir:          cfg.Audio.TempDir,
		}),
		Engine:  player,
		Console: console,
	}
	if cfg.Options.ShowTips {
		opts.Hints = controller.NewHints()
	}

	// Assigned only when the database opened, so the interfaces stay nil otherwise.
	var historySource handlers.HistorySource
	if cfg.Storage.HistoryEnabled() {
		db, err := database.New(cfg.Storage.DBPath)
		if err != nil {
			log.Warnf("play history disabled: %v", err)
			sentry.ReportError(err)
		} else {
			defer db.Close()
			opts.History = db
			historySource = db
		}
	}

	ctrl := controller.New(opts)
	sentry.SetContext("session", map[string]interface{}{
		"id": ctrl.SessionID(),
	})

	if cfg.Control.IsEnabled() {
		if !params.Verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		router := handlers.NewManager(ctrl, historySource).Router()
		go func() {
			err := handlers.Serve(ctx, cfg.Control.Addr(), router)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("control API stopped: %v", err)
				sentry.ReportError(err)
			}
		}()
	}

	listingURL := params.URL
	if listingURL == "" {
		listingURL = cfg.Library.ListingURL
	}

	if err := ctrl.Run(ctx, listingURL); err != nil {
		log.Errorf("jukebox stopped: %v", err)
		sentry.ReportError(err)
		return 1
	}
	return 0
}

func setupLogging(level string, verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"module"},
		TimestampFormat: "15:04:05",
	})

	if verbose {
		log.SetLevel(log.DebugLevel)
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}
	if bi.Main.Version == "" {
		return "unknown-(no version)"
	}
	return bi.Main.Version
}
