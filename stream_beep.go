package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	resampleQuality   = 4
)

// audioSink is the output device the decoded stream is mixed into
type audioSink interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// speakerSink sends audio to the system output through beep/speaker
type speakerSink struct {
	rate beep.SampleRate
}

func newSpeakerSink(rate beep.SampleRate, buffer time.Duration) (*speakerSink, error) {
	if err := speaker.Init(rate, rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return &speakerSink{rate: rate}, nil
}

func (s *speakerSink) SampleRate() beep.SampleRate { return s.rate }
func (s *speakerSink) Play(st beep.Streamer)       { speaker.Play(st) }
func (s *speakerSink) Clear()                      { speaker.Clear() }
func (s *speakerSink) Lock()                       { speaker.Lock() }
func (s *speakerSink) Unlock()                     { speaker.Unlock() }

// decodeFunc turns a fetched media body into a seekable stream
type decodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// mediaBuffer holds a downloaded media file. The MP3 decoder needs a seeker
// to know the stream length, which the progress fraction depends on.
type mediaBuffer struct {
	*bytes.Reader
}

func (mediaBuffer) Close() error { return nil }

type beepOptions struct {
	Client       *http.Client
	Sink         audioSink
	Decode       decodeFunc
	Interval     time.Duration // progress report interval
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// beepPlayback implements Playback on top of faiface/beep: media is fetched
// over HTTP, decoded, resampled to the sink rate and played through a Ctrl.
type beepPlayback struct {
	client       *http.Client
	sink         audioSink
	decode       decodeFunc
	interval     time.Duration
	fetchTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	source     string
	playing    bool
	stream     beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	cancelLoad context.CancelFunc
	onProgress func(source string, played float64)
	closed     bool

	done chan struct{}
	wg   sync.WaitGroup
}

func newBeepPlayback(opts beepOptions) *beepPlayback {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Decode == nil {
		opts.Decode = mp3.Decode
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &beepPlayback{
		client:       opts.Client,
		sink:         opts.Sink,
		decode:       opts.Decode,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
		done:         make(chan struct{}),
	}

	p.wg.Add(1)
	go p.progressLoop()
	return p
}

func (p *beepPlayback) OnProgress(fn func(source string, played float64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = fn
}

func (p *beepPlayback) SetSource(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || url == p.source {
		return
	}

	p.stopLocked()
	p.source = url

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelLoad = cancel

	p.wg.Add(1)
	go p.load(ctx, url)
}

func (p *beepPlayback) SetPlaying(playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = playing
	if p.ctrl != nil {
		p.sink.Lock()
		p.ctrl.Paused = !playing
		p.sink.Unlock()
	}
}

func (p *beepPlayback) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.stopLocked()
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	return nil
}

// stopLocked cancels any pending load and releases the current stream
func (p *beepPlayback) stopLocked() {
	if p.cancelLoad != nil {
		p.cancelLoad()
		p.cancelLoad = nil
	}
	if p.ctrl != nil {
		p.sink.Clear()
		p.ctrl = nil
	}
	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			p.logger.Warn("failed to close stream", slog.String("source", p.source), slog.Any("error", err))
		}
		p.stream = nil
	}
}

func (p *beepPlayback) load(ctx context.Context, url string) {
	defer p.wg.Done()

	stream, format, err := p.fetch(ctx, url)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("failed to load media", slog.String("source", url), slog.Any("error", err))
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Superseded by a newer source or closed while downloading
	if ctx.Err() != nil || p.source != url {
		stream.Close()
		return
	}

	p.stream = stream
	p.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(resampleQuality, format.SampleRate, p.sink.SampleRate(), stream),
		Paused:   !p.playing,
	}
	p.sink.Play(p.ctrl)
	p.cancelLoad = nil

	p.logger.Debug("media loaded",
		slog.String("source", url),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int("samples", stream.Len()))
}

func (p *beepPlayback) fetch(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, fmt.Errorf("media download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to read media data: %w", err)
	}

	stream, format, err := p.decode(mediaBuffer{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to decode media: %w", err)
	}
	return stream, format, nil
}

func (p *beepPlayback) progressLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.reportProgress()
		}
	}
}

func (p *beepPlayback) reportProgress() {
	p.mu.Lock()
	if !p.playing || p.stream == nil || p.onProgress == nil {
		p.mu.Unlock()
		return
	}
	p.sink.Lock()
	pos, total := p.stream.Position(), p.stream.Len()
	p.sink.Unlock()
	source, fn := p.source, p.onProgress
	p.mu.Unlock()

	if total <= 0 {
		return
	}
	fn(source, float64(pos)/float64(total))
}
