package controller

import "github.com/bartoval/skupper-router/router"

// addInlink creates the incoming proxy link signalling "we have local
// consumers" for addr, unless one is already slotted. Mirrors
// add_inlink.
func (c *Controller) addInlink(addr *router.Address) {
	if addr.EdgeInlinkSlot != nil {
		return // idempotent: slot already occupied
	}

	term := &router.Terminus{Address: router.StripClassPrefix(addr.Key)}
	link := c.core.CreateLink(c.edgeConn, router.Incoming, term, &router.Terminus{}, true)
	c.core.BindAddressLink(addr, link)
	addr.EdgeInlinkSlot = link
}

// delInlink detaches and clears addr's inlink slot, if any. Mirrors
// del_inlink.
func (c *Controller) delInlink(addr *router.Address) {
	link := addr.EdgeInlinkSlot
	if link == nil {
		return // idempotent: nothing to remove
	}
	addr.EdgeInlinkSlot = nil
	c.core.UnbindAddressLink(addr, link)
	c.core.LinkOutboundDetach(link, nil)
}

// seedInlink applies the setup-time inlink eligibility rule (spec.md
// §4.3 "Seed during setup"), run once per mobile address during
// setupInteriorConnection. Transliterated from the address-walk in
// setup_edge_connection, including its preserved TODO: the
// rlinks==1 special case is not generalized to rlinks>1 && every
// rlink on the edge connection (spec.md Open Questions #1).
func (c *Controller) seedInlink(addr *router.Address) {
	if len(addr.Rlinks) == 0 && !(addr.Subscriptions > 0 && addr.PropagateLocal) {
		return
	}

	if len(addr.Rlinks) == 1 {
		// TODO - fix this logic (preserved from the original: only the
		// single-rlink case is special-cased here; rlinks > 1 with
		// every rlink already on the edge connection is not).
		if addr.Rlinks[0].Conn == c.edgeConn {
			return
		}
	}

	c.addInlink(addr)
}

// maybeAddInlinkOnLocalDest and maybeRemoveInlinkOnLocalDest are called from
// onAddrEvent for the corresponding event kinds (inlink half; the
// outlink-affecting events are handled in outlink.go).
func (c *Controller) maybeAddInlinkOnLocalDest(addr *router.Address) {
	if addr.NonProxyRlinks() == 1 {
		c.addInlink(addr)
	}
}

func (c *Controller) maybeRemoveInlinkOnLocalDest(addr *router.Address) {
	if addr.NonProxyRlinks() == 0 {
		c.delInlink(addr)
	}
}
