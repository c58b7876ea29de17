package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/faiface/beep"
)

// generateTestImage creates a simple test image with specified dimensions and colors
// Useful for testing artwork processing functions
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill image with the specified color
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}

	return img
}

// generateGradientImage creates a gradient test image for color extraction testing
func generateGradientImage(width, height int, startColor, endColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		ratio := float64(y) / float64(height)
		r := uint8(float64(startColor.R)*(1-ratio) + float64(endColor.R)*ratio)
		g := uint8(float64(startColor.G)*(1-ratio) + float64(endColor.G)*ratio)
		b := uint8(float64(startColor.B)*(1-ratio) + float64(endColor.B)*ratio)

		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return img
}

// assertNoError is a test helper that fails the test if an error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// assertEqual is a generic test helper for comparing values
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// isValidHexColor checks if a string is a valid hex color (e.g., "#RRGGBB")
func isValidHexColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		c := color[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// testTracks returns a playlist of n tracks with distinct media URLs
func testTracks(n int) []Track {
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = Track{
			ID:                   i + 1,
			TrackName:            fmt.Sprintf("Track %d", i+1),
			ArtistName:           fmt.Sprintf("Artist %d", i+1),
			ArtworkURL:           fmt.Sprintf("https://art.example/%d.jpg", i+1),
			MediaURL:             fmt.Sprintf("https://media.example/%d.mp3", i+1),
			DurationMilliseconds: 30000,
		}
	}
	return tracks
}

// fakePlayback records the calls a StreamAdapter makes
type fakePlayback struct {
	mu       sync.Mutex
	calls    []string
	callback func(source string, played float64)
	closed   bool
}

func (f *fakePlayback) SetSource(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "source:"+url)
}

func (f *fakePlayback) SetPlaying(playing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("playing:%t", playing))
}

func (f *fakePlayback) OnProgress(fn func(source string, played float64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callback = fn
}

func (f *fakePlayback) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakePlayback) emit(source string, played float64) {
	f.mu.Lock()
	fn := f.callback
	f.mu.Unlock()
	fn(source, played)
}

func (f *fakePlayback) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeSink stands in for the speaker
type fakeSink struct {
	mu      sync.Mutex // speaker lock
	stateMu sync.Mutex
	played  []beep.Streamer
	clears  int
}

func (s *fakeSink) SampleRate() beep.SampleRate { return speakerSampleRate }
func (s *fakeSink) Lock()                       { s.mu.Lock() }
func (s *fakeSink) Unlock()                     { s.mu.Unlock() }

func (s *fakeSink) Play(st beep.Streamer) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.played = append(s.played, st)
}

func (s *fakeSink) Clear() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.clears++
}

func (s *fakeSink) Played() []beep.Streamer {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return append([]beep.Streamer(nil), s.played...)
}

// fakeStream is a silent seekable stream of a fixed number of samples
type fakeStream struct {
	pos    atomic.Int64
	n      int
	closed atomic.Bool
}

func (s *fakeStream) Stream(samples [][2]float64) (int, bool) {
	pos := int(s.pos.Load())
	if pos >= s.n {
		return 0, false
	}
	k := min(len(samples), s.n-pos)
	for i := 0; i < k; i++ {
		samples[i] = [2]float64{}
	}
	s.pos.Add(int64(k))
	return k, true
}

func (s *fakeStream) Err() error    { return nil }
func (s *fakeStream) Len() int      { return s.n }
func (s *fakeStream) Position() int { return int(s.pos.Load()) }
func (s *fakeStream) Close() error  { s.closed.Store(true); return nil }

func (s *fakeStream) Seek(p int) error {
	s.pos.Store(int64(p))
	return nil
}
