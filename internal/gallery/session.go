package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/argallery/internal/assets"
	"github.com/ivlev/argallery/internal/platform"
)

// sessionEnv is what a session needs from its surroundings. It is shared by
// every session a coordinator creates.
type sessionEnv struct {
	assets assets.Resolver
	media  platform.MediaProvider
	scene  platform.Scene
	size   platform.Size
	owner  Owner

	// notify routes a readiness outcome back to whoever owns the session.
	// It runs on the owner goroutine.
	notify func(id uuid.UUID, err error)
	// playing is called once the session reaches StatePlaying.
	playing func(s *Session)
	// transition observes every state change.
	transition func(Transition)

	log zerolog.Logger
}

// Session plays one catalog video on one surface. It owns the player, the
// readiness subscription and the surface it feeds; the surface is lent to
// the slot.
//
// Session methods must run on the owner goroutine.
type Session struct {
	id    uuid.UUID
	video string
	state State
	err   error

	env  *sessionEnv
	slot *Slot

	player  platform.Player
	stop    func()
	cancel  context.CancelFunc
	surface platform.Surface

	log zerolog.Logger
}

func newSession(env *sessionEnv, slot *Slot, video string) *Session {
	id := uuid.New()
	return &Session{
		id:    id,
		video: video,
		env:   env,
		slot:  slot,
		log:   env.log.With().Str("session", id.String()).Str("video", video).Logger(),
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Video() string { return s.video }

func (s *Session) State() State { return s.state }

// Err returns the error that moved the session to StateFailed.
func (s *Session) Err() error { return s.err }

// Surface returns the surface built on readiness, or nil.
func (s *Session) Surface() platform.Surface { return s.surface }

// Start resolves the video and subscribes to player readiness. A missing
// resource or a player that cannot be opened leaves the session Failed and
// inert; the error is returned for the caller's information only.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return fmt.Errorf("session %s: start in state %s", s.id, s.state)
	}

	res, err := s.env.assets.Resolve(s.video)
	if err != nil {
		s.fail(fmt.Errorf("resolve %s: %w", s.video, err))
		return s.err
	}

	ctx, cancel := context.WithCancel(context.Background())
	player, err := s.env.media.Open(ctx, res.Path)
	if err != nil {
		cancel()
		s.fail(fmt.Errorf("%w: open %s: %w", ErrPlaybackFailed, res.Path, err))
		return s.err
	}
	s.cancel = cancel
	s.player = player
	s.setState(StateLoading)

	id, env := s.id, s.env
	s.stop = player.Observe(func(err error) {
		env.owner.Post(func() { env.notify(id, err) })
	})
	s.log.Debug().Str("src", res.Path).Msg("loading")
	return nil
}

// handleReadiness applies a readiness outcome. Outcomes arriving after the
// session left StateLoading are ignored.
func (s *Session) handleReadiness(err error) {
	if s.state != StateLoading {
		s.log.Debug().Err(ErrStaleCallback).Stringer("state", s.state).Msg("readiness ignored")
		return
	}
	if err != nil {
		s.fail(fmt.Errorf("%w: %s: %w", ErrPlaybackFailed, s.video, err))
		return
	}
	if s.slot == nil {
		s.fail(fmt.Errorf("%w: %s: no slot to attach to", ErrPlaybackFailed, s.video))
		return
	}

	s.setState(StateReady)

	surface := s.env.scene.NewVideoSurface("VideoPlane_"+s.video, s.env.size, s.player)
	surface.GenerateCollisionShape()
	surface.FaceCamera()
	s.surface = surface
	s.slot.Attach(surface)

	s.player.SetLooping(true)
	s.player.Play()
	s.setState(StatePlaying)
	s.log.Info().Msg("playing")

	if s.env.playing != nil {
		s.env.playing(s)
	}
}

// Release tears the session down from any state. Safe to call repeatedly.
func (s *Session) Release() {
	if s.state == StateReleased {
		return
	}
	s.cleanup()
	s.setState(StateReleased)
}

func (s *Session) fail(err error) {
	s.err = err
	if errors.Is(err, ErrResourceNotFound) {
		s.log.Error().Err(err).Msg("video resource missing")
	} else {
		s.log.Error().Err(err).Msg("playback failed")
	}
	s.setState(StateFailed)
	s.cleanup()
}

// cleanup releases everything the session owns. The order mirrors setup in
// reverse: stop playback, drop the subscription, close the player, then take
// the surface off the slot.
func (s *Session) cleanup() {
	if s.player != nil {
		s.player.Pause()
	}
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.player != nil {
		if err := s.player.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close player")
		}
		s.player = nil
	}
	if s.surface != nil {
		if s.slot != nil && s.slot.Current() == s.surface {
			s.slot.Detach()
		} else {
			s.surface.RemoveFromParent()
		}
		s.surface = nil
	}
}

func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	if s.env.transition != nil {
		s.env.transition(Transition{Session: s.id, Video: s.video, From: from, To: to})
	}
}
