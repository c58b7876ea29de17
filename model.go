package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
)

// model is the Bubble Tea model for the playback bar
type model struct {
	controller *PlaybackController
	stream     *StreamAdapter
	client     *http.Client
	logger     *slog.Logger

	color  string
	width  int
	height int

	// Album artwork support
	artworkEncoded string                   // Kitty protocol-encoded artwork for display
	artworkURL     string                   // artwork the bar is currently showing or loading
	artworkCache   map[string]artworkResult // processed artwork by URL
	supportsKitty  bool                     // Whether terminal supports Kitty graphics

	// Text scrolling state
	scrollOffset int // Current scroll position for text animation
	scrollPause  int // Pause counter at start/end of scroll
	scrollTick   int // Tick counter for slowing scroll speed

	help     help.Model
	showHelp bool
}

// UI refresh tick, drives text scrolling
type tickMsg time.Time

type artworkResult struct {
	encoded string
	color   string // accent color extracted from the artwork
}

// Result of fetching and processing artwork in the background
type artworkMsg struct {
	url string
	artworkResult
	err error
}

func newModel(controller *PlaybackController, stream *StreamAdapter, client *http.Client, logger *slog.Logger, supportsKitty bool) model {
	cfg := config.Get()
	m := model{
		controller:    controller,
		stream:        stream,
		client:        client,
		logger:        logger,
		color:         cfg.UI.Color,
		artworkCache:  make(map[string]artworkResult),
		supportsKitty: supportsKitty,
		help:          help.New(),
	}
	m.syncStream()
	return m
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.UIRefreshMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Wait for the next progress sample from the playback backend
func waitForProgressCmd(events <-chan progressMsg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// syncStream hands the current props to the stream adapter
func (m model) syncStream() {
	state := m.controller.State()
	m.stream.Sync(state.Playing, m.controller.CurrentTrack().MediaURL)
}

// Fetch and encode artwork for the current track in background
func (m model) loadArtworkCmd() tea.Cmd {
	cfg := config.Get()
	if !m.supportsKitty || !cfg.Artwork.Enabled || m.artworkURL == "" {
		return nil
	}
	if _, ok := m.artworkCache[m.artworkURL]; ok {
		return nil
	}

	url := m.artworkURL
	client := m.client
	timeout := time.Duration(cfg.Playback.FetchTimeoutMs) * time.Millisecond
	extractColor := cfg.UI.ColorMode == "auto"

	return func() (msg tea.Msg) {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		data, err := fetchArtwork(ctx, client, url)
		if err != nil {
			return artworkMsg{url: url, err: err}
		}

		// Malformed images must not take the UI down
		defer func() {
			if r := recover(); r != nil {
				msg = artworkMsg{url: url, err: errArtworkPanic}
			}
		}()
		color, encoded, err := processArtwork(data, extractColor)
		return artworkMsg{url: url, artworkResult: artworkResult{encoded: encoded, color: color}, err: err}
	}
}

// showArtwork points the bar at the current track's artwork, using the
// cache when possible.
func (m *model) showArtwork() tea.Cmd {
	m.artworkURL = m.controller.CurrentTrack().ArtworkURL
	m.artworkEncoded = ""
	if res, ok := m.artworkCache[m.artworkURL]; ok {
		m.applyArtwork(res)
		return nil
	}
	return m.loadArtworkCmd()
}

func (m *model) applyArtwork(res artworkResult) {
	m.artworkEncoded = res.encoded
	if config.Get().UI.ColorMode == "auto" && res.color != "" {
		m.color = res.color
	}
}

// trackChanged resets per-track view state after navigation
func (m *model) trackChanged() tea.Cmd {
	m.scrollOffset = 0
	m.scrollPause = 30 // Pause at start for 3 seconds
	m.scrollTick = 0
	m.syncStream()
	return m.showArtwork()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForProgressCmd(m.stream.Events()),
		watchConfigCmd(),
		func() tea.Msg { return artworkRefreshMsg{} },
	)
}

// artworkRefreshMsg asks the model to (re)select the current artwork
type artworkRefreshMsg struct{}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Toggle):
			m.controller.TogglePlay()
			m.syncStream()
			return m, nil
		case key.Matches(msg, keys.Next):
			m.controller.NextTrack()
			return m, m.trackChanged()
		case key.Matches(msg, keys.Previous):
			m.controller.PreviousTrack()
			return m, m.trackChanged()
		case key.Matches(msg, keys.Artwork):
			cfg := config.Get()
			cfg.Artwork.Enabled = !cfg.Artwork.Enabled
			config.Set(cfg)
			if !cfg.Artwork.Enabled {
				m.artworkEncoded = ""
				return m, nil
			}
			return m, m.showArtwork()
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case progressMsg:
		// Samples taken on a previous source can arrive right after a
		// track change; they would flash a wrong seeker position.
		if msg.source == m.controller.CurrentTrack().MediaURL {
			m.controller.OnProgress(msg.played)
		} else {
			m.logger.Debug("dropping stale progress",
				slog.String("source", msg.source),
				slog.Float64("played", msg.played))
		}
		return m, waitForProgressCmd(m.stream.Events())

	case artworkRefreshMsg:
		return m, m.showArtwork()

	case artworkMsg:
		if msg.err != nil {
			m.logger.Warn("artwork unavailable", slog.String("url", msg.url), slog.Any("error", msg.err))
			return m, nil
		}
		m.artworkCache[msg.url] = msg.artworkResult
		if msg.url == m.artworkURL && config.Get().Artwork.Enabled {
			m.applyArtwork(msg.artworkResult)
		}
		return m, nil

	case configReloadMsg:
		cfg := config.Get()
		m.logger.Info("configuration reloaded")
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}
		if !cfg.Artwork.Enabled {
			m.artworkEncoded = ""
			return m, watchConfigCmd()
		}
		if m.artworkEncoded == "" {
			return m, tea.Batch(watchConfigCmd(), m.showArtwork())
		}
		return m, watchConfigCmd()

	case tickMsg:
		m.advanceScroll()
		return m, tickCmd()
	}

	return m, nil
}

// advanceScroll moves the title/artist marquee one step every third tick,
// pausing when the loop restarts.
func (m *model) advanceScroll() {
	m.scrollTick++
	if m.scrollPause > 0 {
		m.scrollPause--
		return
	}
	if m.scrollTick%3 != 0 {
		return
	}
	m.scrollOffset++

	track := m.controller.CurrentTrack()
	longest := max(len([]rune(track.TrackName)), len([]rune(track.ArtistName)))
	if longest > config.Get().Text.MaxLength {
		loopPoint := longest + len([]rune(scrollSeparator))
		if m.scrollOffset >= loopPoint {
			m.scrollOffset = 0
			m.scrollPause = 30 // Pause for 3 seconds when looping back
		}
	}
}
