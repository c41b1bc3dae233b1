package sim

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ivlev/argallery/internal/platform"
)

// ErrPlayerClosed is returned by Close on a player that was already closed.
var ErrPlayerClosed = errors.New("player already closed")

// Media is a platform.MediaProvider whose players become ready when told to,
// or on their own after ReadyDelay.
type Media struct {
	// ReadyDelay makes players resolve by themselves. Zero leaves resolution
	// to Resolve.
	ReadyDelay time.Duration

	mu       sync.Mutex
	failOn   map[string]error
	openErr  map[string]error
	players  []*Player
	opened   int
	live     int
	playing  int
	peakLive int
	peakPlay int
}

var _ platform.MediaProvider = (*Media)(nil)

func NewMedia() *Media {
	return &Media{
		failOn:  make(map[string]error),
		openErr: make(map[string]error),
	}
}

// FailOn makes automatic readiness of video report err.
func (m *Media) FailOn(video string, err error) {
	m.mu.Lock()
	m.failOn[video] = err
	m.mu.Unlock()
}

// RejectOpen makes Open fail for video.
func (m *Media) RejectOpen(video string, err error) {
	m.mu.Lock()
	m.openErr[video] = err
	m.mu.Unlock()
}

func (m *Media) Open(ctx context.Context, src string) (platform.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	video := videoName(src)

	m.mu.Lock()
	if err, ok := m.openErr[video]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	p := &Player{media: m, src: src, video: video, observers: make(map[int]func(error))}
	m.players = append(m.players, p)
	m.opened++
	m.live++
	if m.live > m.peakLive {
		m.peakLive = m.live
	}
	delay, failure := m.ReadyDelay, m.failOn[video]
	m.mu.Unlock()

	if delay > 0 {
		p.mu.Lock()
		p.timer = time.AfterFunc(delay, func() { p.resolve(failure) })
		p.mu.Unlock()
	}
	return p, nil
}

// Resolve reports readiness for the oldest unresolved open player of video.
// It returns false when there is none.
func (m *Media) Resolve(video string, err error) bool {
	m.mu.Lock()
	var target *Player
	for _, p := range m.players {
		if p.video == video && p.pending() {
			target = p
			break
		}
	}
	m.mu.Unlock()

	if target == nil {
		return false
	}
	target.resolve(err)
	return true
}

// Pending lists the videos whose players are open and not yet resolved.
func (m *Media) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.players {
		if p.pending() {
			out = append(out, p.video)
		}
	}
	return out
}

// Players returns every player ever opened, oldest first.
func (m *Media) Players() []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Player(nil), m.players...)
}

// Opened is the number of successful Open calls.
func (m *Media) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Live is the number of players opened and not closed.
func (m *Media) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Playing is the number of players currently playing.
func (m *Media) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// PeakLive is the highest Live value observed.
func (m *Media) PeakLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakLive
}

// PeakPlaying is the highest Playing value observed.
func (m *Media) PeakPlaying() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakPlay
}

func (m *Media) adjust(live, playing int) {
	m.mu.Lock()
	m.live += live
	m.playing += playing
	if m.playing > m.peakPlay {
		m.peakPlay = m.playing
	}
	m.mu.Unlock()
}

// Player is a simulated platform.Player.
type Player struct {
	media *Media
	src   string
	video string

	mu        sync.Mutex
	observers map[int]func(error)
	nextObs   int
	resolved  bool
	outcome   error
	looping   bool
	playing   bool
	closed    bool
	timer     *time.Timer
}

func (p *Player) Src() string { return p.src }

// Observe registers fn for the readiness outcome. A player that already
// resolved reports to fn right away.
func (p *Player) Observe(fn func(error)) func() {
	p.mu.Lock()
	if p.resolved {
		err := p.outcome
		p.mu.Unlock()
		fn(err)
		return func() {}
	}
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

func (p *Player) resolve(err error) {
	p.mu.Lock()
	if p.resolved || p.closed {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.outcome = err
	fns := make([]func(error), 0, len(p.observers))
	for i := 0; i < p.nextObs; i++ {
		if fn, ok := p.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

func (p *Player) pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.resolved && !p.closed
}

func (p *Player) SetLooping(on bool) {
	p.mu.Lock()
	p.looping = on
	p.mu.Unlock()
}

func (p *Player) Play() {
	p.mu.Lock()
	if p.closed || p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.mu.Unlock()
	p.media.adjust(0, 1)
}

func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.mu.Unlock()
	p.media.adjust(0, -1)
}

func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPlayerClosed
	}
	p.closed = true
	wasPlaying := p.playing
	p.playing = false
	if p.timer != nil {
		p.timer.Stop()
	}
	p.observers = map[int]func(error){}
	p.mu.Unlock()

	if wasPlaying {
		p.media.adjust(-1, -1)
	} else {
		p.media.adjust(-1, 0)
	}
	return nil
}

func (p *Player) Looping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.looping
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// videoName maps a source path back to its catalog identifier.
func videoName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
