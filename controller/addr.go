package controller

import "github.com/bartoval/skupper-router/router"

// onAddrEvent handles the six mobile-address lifecycle events. Mirrors
// on_addr_event: the inter-edge peer-mesh actions (spec.md §4.4) run
// unconditionally (even with no interior connection established); the
// interior inlink/outlink actions (spec.md §4.3) only run once an
// interior connection is active.
func (c *Controller) onAddrEvent(kind router.EventMask, addr *router.Address) {
	if !addr.IsMobile() {
		return
	}

	switch kind {
	case router.EventAddrAddedLocalDest:
		if addr.NonProxyRlinks() == 1 {
			c.proxyAddrOnAllInterEdgeConnections(addr)
		}
	case router.EventAddrRemovedLocalDest:
		if addr.NonProxyRlinks() == 0 {
			c.removeProxiesForAddr(addr)
		}
	}

	if !c.connActive {
		return
	}

	switch kind {
	case router.EventAddrAddedLocalDest:
		c.maybeAddInlinkOnLocalDest(addr)
	case router.EventAddrRemovedLocalDest:
		c.maybeRemoveInlinkOnLocalDest(addr)
	case router.EventAddrBecameSource:
		c.onAddrBecameSource(addr)
	case router.EventAddrNoLongerSource:
		c.onAddrNoLongerSource(addr)
	case router.EventAddrWatchOn:
		c.onAddrWatchOn(addr)
	case router.EventAddrWatchOff:
		c.onAddrWatchOff(addr)
	default:
		panic("controller: unexpected address event kind")
	}
}
