package gallery

import (
	"github.com/rs/zerolog"

	"github.com/ivlev/argallery/internal/platform"
)

// galleryAnchor is the root node bound to the tracked poster anchor.
type galleryAnchor struct {
	id      platform.AnchorID
	node    platform.AnchorNode
	slot    *Slot
	inScene bool
}

// Controller reacts to the tracking layer. It creates the gallery anchor on
// the first recognition of the poster and tears everything down when that
// anchor is lost. At most one gallery anchor exists at a time.
type Controller struct {
	label    string
	scene    platform.Scene
	hits     platform.HitTester
	advancer *Advancer
	anchor   *galleryAnchor
	log      zerolog.Logger
}

func newController(label string, scene platform.Scene, hits platform.HitTester, advancer *Advancer, log zerolog.Logger) *Controller {
	return &Controller{
		label:    label,
		scene:    scene,
		hits:     hits,
		advancer: advancer,
		log:      log,
	}
}

// AnchorAdded creates the gallery anchor for a recognised poster and starts
// the first video. The anchor is not added to the scene until that video is
// playing. It reports whether a gallery anchor was created.
func (c *Controller) AnchorAdded(a platform.TrackedAnchor) bool {
	if a.ReferenceImage != c.label {
		c.log.Debug().Str("image", a.ReferenceImage).Msg("ignoring anchor for unknown image")
		return false
	}
	if c.anchor != nil {
		c.log.Debug().Err(ErrDuplicateAnchor).
			Str("anchor", string(a.ID)).
			Str("current", string(c.anchor.id)).
			Msg("anchor ignored")
		return false
	}

	node := c.scene.NewAnchorNode(a.ID)
	holder := c.scene.NewNode("GallerySlot")
	node.AddChild(holder)
	c.anchor = &galleryAnchor{
		id:   a.ID,
		node: node,
		slot: newSlot(holder, c.hits),
	}
	c.log.Info().Str("anchor", string(a.ID)).Str("image", a.ReferenceImage).Msg("poster detected")

	c.advancer.Start(0)
	return true
}

// AnchorRemoved tears down the gallery when a is the anchor it is bound to.
// It reports whether anything was torn down.
func (c *Controller) AnchorRemoved(a platform.TrackedAnchor) bool {
	if c.anchor == nil || c.anchor.id != a.ID {
		return false
	}
	c.log.Info().Str("anchor", string(a.ID)).Msg("poster lost")
	c.teardown()
	return true
}

// Reset tears down the gallery regardless of which anchor it is bound to.
func (c *Controller) Reset() {
	if c.anchor == nil {
		c.advancer.Stop()
		return
	}
	c.teardown()
}

func (c *Controller) teardown() {
	c.advancer.Stop()
	c.anchor.slot.Detach()
	if c.scene.HasAnchor(c.anchor.node) {
		c.scene.RemoveAnchor(c.anchor.node)
		c.log.Info().Str("anchor", string(c.anchor.id)).Msg("gallery anchor removed from scene")
	}
	c.anchor = nil
}

// Slot returns the slot of the current gallery anchor, or nil.
func (c *Controller) Slot() *Slot {
	if c.anchor == nil {
		return nil
	}
	return c.anchor.slot
}

// playbackStarted adds the gallery anchor to the scene the first time a
// video plays during its lifetime.
func (c *Controller) playbackStarted(*Session) {
	if c.anchor == nil || c.anchor.inScene {
		return
	}
	if !c.scene.HasAnchor(c.anchor.node) {
		c.scene.AddAnchor(c.anchor.node)
		c.log.Info().Str("anchor", string(c.anchor.id)).Msg("gallery anchor added to scene")
	}
	c.anchor.inScene = true
}
