package controller

import "github.com/bartoval/skupper-router/router"

// addOutlink creates the outgoing proxy link signalling "we have local
// producers" for addr, left unbound — the interior later announces
// upstream reachability over the tracking endpoint, at which point the
// link is bound (onTrackingTransfer in tracking.go). Mirrors
// add_outlink, including its extra guard: a pending local subscription
// also blocks creation (spec.md's §4.3 states only the slot-occupied
// guard; the original additionally no-ops when addr.Subscriptions > 0,
// preserved here per SPEC_FULL.md §C.2).
func (c *Controller) addOutlink(addr *router.Address) {
	if addr.EdgeOutlinkSlot != nil || addr.Subscriptions > 0 {
		return
	}

	term := &router.Terminus{Address: router.StripClassPrefix(addr.Key)}
	link := c.core.CreateLink(c.edgeConn, router.Outgoing, &router.Terminus{}, term, true)
	addr.EdgeOutlinkSlot = link
	// Deliberately not bound to addr yet (spec.md §4.3).
}

// delOutlink detaches and clears addr's outlink slot, if any,
// unbinding it first if it happens to be bound. Mirrors del_outlink.
func (c *Controller) delOutlink(addr *router.Address) {
	link := addr.EdgeOutlinkSlot
	if link == nil {
		return
	}
	addr.EdgeOutlinkSlot = nil
	if link.OwningAddress() == addr {
		c.core.UnbindAddressLink(addr, link)
	}
	c.core.LinkOutboundDetach(link, nil)
}

// seedOutlink applies the setup-time outlink eligibility rule (spec.md
// §4.3 "Seed during setup"). Transliterated from the second half of
// the address walk in setup_edge_connection.
func (c *Controller) seedOutlink(addr *router.Address) {
	if len(addr.Inlinks) == 0 && addr.Watches == 0 {
		return
	}

	add := true
	if len(addr.Inlinks) == 1 && addr.Watches == 0 {
		add = addr.Inlinks[0].Conn != c.edgeConn
	}

	if add {
		c.addOutlink(addr)
	}
}

func (c *Controller) onAddrBecameSource(addr *router.Address) {
	c.addOutlink(addr)
}

func (c *Controller) onAddrNoLongerSource(addr *router.Address) {
	if addr.Watches == 0 {
		c.delOutlink(addr)
	}
}

func (c *Controller) onAddrWatchOn(addr *router.Address) {
	c.addOutlink(addr)
}

func (c *Controller) onAddrWatchOff(addr *router.Address) {
	if addr.NonProxyInlinks() == 0 {
		c.delOutlink(addr)
	}
}
