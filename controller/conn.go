package controller

import "github.com/bartoval/skupper-router/router"

// onConnEvent handles CONN_OPENED, CONN_EDGE_ESTABLISHED and
// CONN_EDGE_LOST. Mirrors on_conn_event in addr_proxy.c.
func (c *Controller) onConnEvent(kind router.EventMask, conn *router.Connection) {
	switch kind {
	case router.EventConnOpened:
		if conn.Role == router.RoleInterEdge {
			c.onInterEdgeConnectionOpened(conn)
		}

	case router.EventConnEdgeEstablished:
		if !c.connActive {
			c.setupInteriorConnection(conn)
		} else {
			// Connection manager found a "better" connection to the
			// interior router. Migrate to it (spec.md §4.2 "upgrade").
			c.teardownInteriorConnection()
			c.setupInteriorConnection(conn)
		}

	case router.EventConnEdgeLost:
		// Abrupt disconnect: no outbound detach is emitted, the links
		// are presumed gone with the connection (spec.md §3, §4.2).
		c.connActive = false
		c.edgeUplink = nil
		c.edgeDownlink = nil
		c.trackingEndpoint = nil
		c.trackingAttached = false

	default:
		panic("controller: unexpected connection event kind")
	}
}

// setupInteriorConnection attaches the control links to conn and seeds
// proxy links from current local state. Mirrors setup_edge_connection.
func (c *Controller) setupInteriorConnection(conn *router.Connection) {
	c.connActive = true
	c.edgeConn = conn.ID

	// Anonymous sending link to the interior, bound to "_edge" so
	// off-edge deliveries route through it (spec.md §4.2 step 2).
	c.edgeUplink = c.core.CreateLink(conn.ID, router.Outgoing, &router.Terminus{}, &router.Terminus{}, true)
	c.core.BindAddressLink(c.edgeConnAddr, c.edgeUplink)

	// Receiving link for router-addressed deliveries (spec.md §4.2 step 3).
	downlinkTerm := func(addr string) *router.Terminus {
		return &router.Terminus{Address: addr, Capabilities: []string{capabilityEdgeDownlink}}
	}
	c.edgeDownlink = c.core.CreateLink(conn.ID, router.Incoming, downlinkTerm(c.routerID), downlinkTerm(""), true)

	// Receiving link for edge address tracking updates (spec.md §4.2
	// step 4, §4.5). No initial credit here — it's issued on second
	// attach.
	c.trackingAttached = false
	c.trackingEndpoint = c.core.EndpointCreateLink(
		conn.ID, router.Incoming,
		&router.Terminus{Address: edgeAddressTrackingName}, &router.Terminus{},
		router.EndpointDescriptor{
			Label:          "Edge Address Proxy",
			OnSecondAttach: c.onTrackingSecondAttach,
			OnTransfer:     c.onTrackingTransfer,
		},
		c,
	)

	// Seed proxy links for every mobile address from current local
	// state (spec.md §4.2 step 5).
	for _, addr := range c.core.Addresses() {
		if !addr.IsMobile() {
			continue
		}
		c.seedInlink(addr)
		c.seedOutlink(addr)
	}
}

// teardownInteriorConnection detaches the control links and every
// proxy link slotted on the departing interior connection. Peer-edge
// links and streaming (non-mobile, anonymous) links are left alone.
// Mirrors cleanup_edge_connection.
func (c *Controller) teardownInteriorConnection() {
	if c.trackingEndpoint != nil {
		c.core.EndpointDetach(c.trackingEndpoint, nil)
		c.trackingEndpoint = nil
		c.trackingAttached = false
	}

	if c.edgeDownlink != nil {
		c.core.LinkOutboundDetach(c.edgeDownlink, nil)
		c.edgeDownlink = nil
	}

	if c.edgeUplink != nil {
		c.core.UnbindAddressLink(c.edgeConnAddr, c.edgeUplink)
		c.core.LinkOutboundDetach(c.edgeUplink, nil)
		c.edgeUplink = nil
	}

	// Both slots are reconciled independently (not else-if): the raw
	// reference implementation only tears down the inlink when both are
	// set on the same address, which would leak the stale outlink slot
	// into the next setupInteriorConnection call (spec.md Open
	// Questions #2). Reconciling both here is what closes that gap.
	for _, addr := range c.core.Addresses() {
		if addr.EdgeInlinkSlot != nil {
			c.delInlink(addr)
		}
		if addr.EdgeOutlinkSlot != nil {
			c.delOutlink(addr)
		}
	}

	// Leave the edge conn id around as "not active" — not used for
	// failover lookups in this model, but matches the original's
	// comment that the connection itself is left up.
	c.connActive = false
}
