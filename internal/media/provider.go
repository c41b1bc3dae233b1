package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	applog "github.com/ivlev/argallery/internal/log"
	"github.com/ivlev/argallery/internal/platform"
)

// ErrClosed is returned by Close on a player that was already closed.
var ErrClosed = errors.New("player closed")

// Provider opens players for files on disk.
type Provider struct {
	prober Prober
	log    zerolog.Logger

	mu          sync.Mutex
	opened      int
	live        int
	playing     int
	peakPlaying int
}

var _ platform.MediaProvider = (*Provider)(nil)

func NewProvider(p Prober) *Provider {
	return &Provider{prober: p, log: applog.WithComponent("media")}
}

// Open checks that src is a regular file and starts probing it. The probe
// is cancelled with ctx.
func (p *Provider) Open(ctx context.Context, src string) (platform.Player, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", src)
	}

	pl := &Player{owner: p, src: src, log: p.log.With().Str("src", src).Logger()}
	p.mu.Lock()
	p.opened++
	p.live++
	p.mu.Unlock()

	go func() {
		info, err := p.prober.Probe(ctx, src)
		if err == nil {
			pl.log.Debug().Str("codec", info.Codec).Int("width", info.Width).Int("height", info.Height).
				Dur("duration", info.Duration).Msg("probed")
		}
		pl.resolve(info, err)
	}()
	return pl, nil
}

// Opened returns how many players were opened.
func (p *Provider) Opened() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened
}

// Live returns how many players are open and not yet closed.
func (p *Provider) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// PeakPlaying returns the largest number of players ever playing at once.
func (p *Provider) PeakPlaying() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peakPlaying
}

func (p *Provider) played(delta int) {
	p.mu.Lock()
	p.playing += delta
	p.peakPlaying = max(p.peakPlaying, p.playing)
	p.mu.Unlock()
}

func (p *Provider) closed(wasPlaying bool) {
	p.mu.Lock()
	p.live--
	if wasPlaying {
		p.playing--
	}
	p.mu.Unlock()
}

// Player tracks the playback state of one probed file.
type Player struct {
	owner *Provider
	src   string
	log zerolog.Logger

	mu        sync.Mutex
	observers []func(error)
	resolved  bool
	info      Info
	err       error
	looping   bool
	playing   bool
	closed    bool
}

// Observe calls fn once with the probe outcome.
func (p *Player) Observe(fn func(error)) func() {
	p.mu.Lock()
	if p.resolved {
		err := p.err
		p.mu.Unlock()
		fn(err)
		return func() {}
	}
	idx := len(p.observers)
	p.observers = append(p.observers, fn)
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		if idx < len(p.observers) {
			p.observers[idx] = nil
		}
		p.mu.Unlock()
	}
}

func (p *Player) resolve(info Info, err error) {
	p.mu.Lock()
	if p.closed || p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.info, p.err = info, err
	fns := p.observers
	p.observers = nil
	p.mu.Unlock()

	for _, fn := range fns {
		if fn != nil {
			fn(err)
		}
	}
}

// Info returns the probe result. It is zero until the player is ready.
func (p *Player) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info
}

func (p *Player) SetLooping(on bool) {
	p.mu.Lock()
	p.looping = on
	p.mu.Unlock()
}

func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.playing {
		return
	}
	p.playing = true
	p.owner.played(1)
	p.log.Info().Bool("loop", p.looping).Dur("duration", p.info.Duration).Msg("play")
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.playing = false
	p.owner.played(-1)
	p.log.Debug().Msg("pause")
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.owner.closed(p.playing)
	p.closed = true
	p.playing = false
	p.observers = nil
	return nil
}
