package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/bubbletea"
)

var colorFlag string
var noArtworkFlag bool
var topFlag bool

func init() {
	flag.StringVar(&colorFlag, "color", defaultColor, "Set the desired color (name or hex)")
	flag.StringVar(&colorFlag, "c", defaultColor, "Set the desired color (shorthand)")
	flag.BoolVar(&noArtworkFlag, "no-artwork", false, "Disable album artwork display")
	flag.BoolVar(&topFlag, "top", false, "Dock the bar to the top of the terminal")
}

// progressBuffer bounds pending progress samples between backend and UI
const progressBuffer = 16

func run() error {
	cfg := config.Get()

	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	controller, err := NewPlaybackController(defaultTracks())
	if err != nil {
		return err
	}

	sink, err := newSpeakerSink(speakerSampleRate, 100*time.Millisecond)
	if err != nil {
		return err
	}

	client := &http.Client{}
	backend := newBeepPlayback(beepOptions{
		Client:       client,
		Sink:         sink,
		Interval:     time.Duration(cfg.Playback.ProgressIntervalMs) * time.Millisecond,
		FetchTimeout: time.Duration(cfg.Playback.FetchTimeoutMs) * time.Millisecond,
		Logger:       logger.With(slog.String("component", "playback")),
	})
	stream := NewStreamAdapter(backend, progressBuffer)
	defer stream.Close()

	logger.Info("starting player", slog.Int("tracks", controller.Tracks()))

	m := newModel(controller, stream, client, logger, supportsKittyGraphics())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}
	return nil
}

func main() {
	flag.Parse()
	initConfig()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
