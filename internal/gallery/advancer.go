package gallery

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Advancer cycles the catalog on the gallery surface. It is the only owner
// of PlaybackState.Active.
type Advancer struct {
	catalog    Catalog
	state      *PlaybackState
	newSession func(video string) *Session
	log        zerolog.Logger
}

func newAdvancer(catalog Catalog, state *PlaybackState, newSession func(string) *Session, log zerolog.Logger) *Advancer {
	return &Advancer{
		catalog:    catalog,
		state:      state,
		newSession: newSession,
		log:        log,
	}
}

// Start makes catalog[index] the active video. The previous session is
// released before the new one starts.
func (a *Advancer) Start(index int) {
	if index < 0 || index >= a.catalog.Len() {
		a.log.Error().Int("index", index).Int("len", a.catalog.Len()).Msg("invalid video index")
		return
	}

	a.state.Index = index
	a.Stop()

	s := a.newSession(a.catalog.At(index))
	a.state.Active = s
	a.log.Info().Int("index", index).Str("video", s.Video()).Msg("starting video")
	if err := s.Start(); err != nil {
		a.log.Warn().Err(err).Int("index", index).Msg("video did not start")
	}
}

// Advance moves to the next video, wrapping at the end of the catalog. It
// does nothing unless the active session is playing, so a tap cannot race an
// in-flight load or teardown.
func (a *Advancer) Advance() bool {
	if a.state.Active == nil || a.state.Active.State() != StatePlaying {
		a.log.Debug().Msg("advance ignored: nothing playing")
		return false
	}
	a.Start(a.catalog.Next(a.state.Index))
	return true
}

// Stop releases the active session, if any.
func (a *Advancer) Stop() {
	if a.state.Active == nil {
		return
	}
	a.state.Active.Release()
	a.state.Active = nil
}

// readiness delivers a readiness outcome to the active session when id
// still identifies it.
func (a *Advancer) readiness(id uuid.UUID, err error) {
	active := a.state.Active
	if active == nil || active.ID() != id {
		a.log.Debug().Err(ErrStaleCallback).Str("session", id.String()).Msg("readiness dropped")
		return
	}
	active.handleReadiness(err)
}
