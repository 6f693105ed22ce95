package controller

import "github.com/bartoval/skupper-router/router"

// onLinkEvent reconciles a slot when its link detaches out from under
// the controller (spec.md §4.6). Events on connections that are not
// the edge-to-interior role are ignored (spec.md §7.4). Mirrors
// on_link_event.
func (c *Controller) onLinkEvent(kind router.EventMask, link *router.Link) {
	if c.connRole(link.Conn) != router.RoleInterior {
		return
	}

	// Find the address (if any) whose slot holds this link. This is
	// deliberately not link.OwningAddress(): an outlink is created
	// unbound (spec.md §4.3) and may detach before ever being bound,
	// in which case the owning-address bind state is nil but the slot
	// still needs reconciling (spec.md §8 P3).
	switch kind {
	case router.EventLinkOutDetached:
		for _, addr := range c.core.Addresses() {
			if addr.EdgeOutlinkSlot == link {
				addr.EdgeOutlinkSlot = nil
				return
			}
		}
	case router.EventLinkInDetached:
		for _, addr := range c.core.Addresses() {
			if addr.EdgeInlinkSlot == link {
				addr.EdgeInlinkSlot = nil
				return
			}
		}
	default:
		panic("controller: unexpected link event kind")
	}
}

// connRole looks up the role of connID, returning RoleClient (the role
// the controller never acts on) if the connection is unknown — e.g.
// already torn down.
func (c *Controller) connRole(connID router.ConnID) router.ConnRole {
	for _, conn := range c.core.Connections() {
		if conn.ID == connID {
			return conn.Role
		}
	}
	return router.RoleClient
}
