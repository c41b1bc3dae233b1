// Package gallery implements the anchor and video playback state machine of
// the AR poster gallery.
//
// A Coordinator receives platform events (anchors added or removed, taps)
// and media readiness notifications, and routes them to the Controller,
// which owns the gallery anchor, and the Advancer, which owns the active
// Session. All of that state is mutated on a single owner goroutine: every
// entry point that may be called from another goroutine redispatches through
// an Owner before touching anything. There are no locks around gallery
// state.
//
// # Lifecycle
//
//	anchor added    -> gallery anchor + empty Slot -> Advancer.Start(0)
//	session ready   -> Slot.Attach(surface), loop, play; first time per
//	                   anchor the anchor node is added to the scene
//	tap on surface  -> Advancer.Advance: release, Start((i+1) mod n)
//	anchor removed  -> release session, detach, remove anchor from scene
//
// At most one Session is active at a time. A readiness notification carries
// the identity of the session that subscribed; notifications for any other
// session are dropped as stale.
package gallery
