package main

// Playback is the contract the bar needs from an audio backend. The backend
// does the actual fetching, decoding and output; implementations must be
// safe to call from the UI loop while their own goroutines report progress.
type Playback interface {
	// SetSource switches to the media at url. Setting the current source
	// again is a no-op.
	SetSource(url string)
	// SetPlaying starts or pauses output for the current source.
	SetPlaying(playing bool)
	// OnProgress registers the callback invoked periodically while playing
	// with the source the sample was taken from and the played fraction.
	OnProgress(fn func(source string, played float64))
	Close() error
}

// progressMsg is a played-fraction sample relayed from the backend
type progressMsg struct {
	source string
	played float64
}

// StreamAdapter forwards the bar's declarative {playing, url} intent to a
// Playback backend and relays its progress samples, in order, to the UI loop.
type StreamAdapter struct {
	backend Playback
	events  chan progressMsg

	synced  bool
	playing bool
	url     string
}

// NewStreamAdapter wraps backend. buffer bounds the number of pending
// progress samples; when the UI falls behind, newer samples are dropped.
func NewStreamAdapter(backend Playback, buffer int) *StreamAdapter {
	a := &StreamAdapter{
		backend: backend,
		events:  make(chan progressMsg, buffer),
	}
	backend.OnProgress(func(source string, played float64) {
		select {
		case a.events <- progressMsg{source: source, played: played}:
		default:
		}
	})
	return a
}

// Sync pushes the latest props to the backend, forwarding only what changed.
// The source is always applied before the playing flag.
func (a *StreamAdapter) Sync(playing bool, url string) {
	if !a.synced || url != a.url {
		a.backend.SetSource(url)
		a.url = url
	}
	if !a.synced || playing != a.playing {
		a.backend.SetPlaying(playing)
		a.playing = playing
	}
	a.synced = true
}

// Events returns the channel of relayed progress samples
func (a *StreamAdapter) Events() <-chan progressMsg {
	return a.events
}

// Close releases the backend
func (a *StreamAdapter) Close() error {
	return a.backend.Close()
}
