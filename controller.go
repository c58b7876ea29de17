package main

import (
	"errors"
	"math"
)

// ErrNoTracks is returned when a controller is built without a playlist.
var ErrNoTracks = errors.New("playlist has no tracks")

// Control glyphs (Nerd Font)
const (
	iconPrevious = "󰒮"
	iconPlay     = "󰐊"
	iconPause    = "󰏤"
	iconNext     = "󰒭"
)

// PlayerState is the mutable state of the bar
type PlayerState struct {
	Playing      bool
	CurrentTrack int     // index into the playlist
	Progress     float64 // fraction of the current track elapsed
}

// PlaybackController owns the player state and the read-only playlist.
// It is not safe for concurrent use; all calls come from the UI loop.
type PlaybackController struct {
	tracks []Track
	state  PlayerState
}

// NewPlaybackController creates a controller positioned on the first track,
// paused, with no progress.
func NewPlaybackController(tracks []Track) (*PlaybackController, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	list := make([]Track, len(tracks))
	copy(list, tracks)
	return &PlaybackController{tracks: list}, nil
}

// State returns a copy of the current state
func (c *PlaybackController) State() PlayerState {
	return c.state
}

// Tracks returns the number of tracks in the playlist
func (c *PlaybackController) Tracks() int {
	return len(c.tracks)
}

// CurrentTrack returns the descriptor of the selected track
func (c *PlaybackController) CurrentTrack() Track {
	return c.tracks[c.state.CurrentTrack]
}

// TogglePlay flips the playing flag.
func (c *PlaybackController) TogglePlay() {
	c.state.Playing = !c.state.Playing
}

// PreviousTrack moves one track back. The index is clamped at zero, and
// progress is reset even when the index does not move.
func (c *PlaybackController) PreviousTrack() {
	c.state.CurrentTrack = max(0, c.state.CurrentTrack-1)
	c.state.Progress = 0
}

// NextTrack moves one track forward, clamped at the last index, and resets
// progress.
func (c *PlaybackController) NextTrack() {
	c.state.CurrentTrack = min(len(c.tracks)-1, c.state.CurrentTrack+1)
	c.state.Progress = 0
}

// OnProgress stores the played fraction reported by the playback backend
// without validating it.
func (c *PlaybackController) OnProgress(fraction float64) {
	c.state.Progress = fraction
}

// SeekerView is the derived display data for the seeker and controls
type SeekerView struct {
	TrackLengthSeconds int
	ElapsedSeconds     int
	RemainingSeconds   int
	ElapsedLabel       string
	RemainingLabel     string
	Percent            float64 // filled width of the seeker, 0-100 for sane progress
	PlayIcon           string
}

// Seeker computes the seeker labels and fill for the current state.
func (c *PlaybackController) Seeker() SeekerView {
	track := c.CurrentTrack()
	length := roundHalfUp(float64(track.DurationMilliseconds) / 1000)
	elapsed := roundHalfUp(c.state.Progress * float64(length))
	remaining := length - elapsed

	icon := iconPlay
	if c.state.Playing {
		icon = iconPause
	}

	return SeekerView{
		TrackLengthSeconds: length,
		ElapsedSeconds:     elapsed,
		RemainingSeconds:   remaining,
		ElapsedLabel:       formatClock(elapsed),
		RemainingLabel:     formatClock(remaining),
		Percent:            c.state.Progress * 100,
		PlayIcon:           icon,
	}
}

// roundHalfUp rounds to the nearest integer with halves going up
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
