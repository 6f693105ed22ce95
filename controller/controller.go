// Package controller implements the Edge Address Proxy: the reactive
// controller that keeps an edge router's AMQP proxy links to its
// interior connection (and to peer edges) consistent with the set of
// locally-terminated producers and consumers.
//
// Grounded line-for-line on
// original_source/src/router_core/modules/edge_router/addr_proxy.c
// (qcm_edge_addr_proxy_t); see DESIGN.md for the full correspondence.
package controller

import "github.com/bartoval/skupper-router/router"

const (
	// edgeConnAddrName is the "_edge" pseudo-address (spec.md §3,
	// §4.2): the anonymous uplink is bound to it so the routing layer
	// rewrites off-edge deliveries through the interior connection.
	edgeConnAddrName = "_edge"

	// edgeAddressTrackingName is the well-known source address of the
	// tracking endpoint (spec.md §4.5/§6).
	edgeAddressTrackingName = "edge-address-tracking"

	// capabilityEdgeDownlink is the capability both termini of
	// edge_downlink carry (spec.md §6).
	capabilityEdgeDownlink = "qd.edge-downlink"

	// initialCredit is the credit granted to the tracking endpoint's
	// remote on second-attach (spec.md §4.5).
	initialCredit = 32
)

// Controller is the singleton edge address proxy controller — one per
// edge-router process (spec.md §3, Entity: Controller).
type Controller struct {
	core router.Core

	edgeConnAddr *router.Address
	sub          router.Subscription

	// Connection-related state (spec.md §3 Lifecycle). edgeConn is the
	// interior connection's ID and is meaningful only while connActive
	// is true; it is not reset when the connection is lost or torn down.
	connActive   bool
	edgeConn     router.ConnID
	edgeUplink   *router.Link
	edgeDownlink *router.Link

	trackingEndpoint  *router.Endpoint
	trackingAttached  bool // second-attach has occurred
	routerID          string
}

// Options configures New. RouterID is this edge router's own id, used
// as the source address of edge_downlink (spec.md §3).
type Options struct {
	RouterID string
}

// New constructs the controller, allocates the "_edge" pseudo-address,
// and subscribes it to every event it needs (spec.md §4.1, §9 — "one
// dispatcher over a sum type"). Mirrors qcm_edge_addr_proxy.
func New(core router.Core, opts Options) *Controller {
	c := &Controller{
		core:     core,
		routerID: opts.RouterID,
	}
	c.edgeConnAddr = core.AddLocalAddress(router.ClassLocal, edgeConnAddrName, router.TreatmentAnycastClosest)
	c.sub = core.EventSubscribe(router.AllEvents, c.dispatch)
	return c
}

// EdgeConnAddr returns the "_edge" address handle (spec.md §6: exposed
// accessor). Mirrors qcm_edge_conn_addr.
func (c *Controller) EdgeConnAddr() *router.Address { return c.edgeConnAddr }

// Close unsubscribes the controller from the event bus. It does not
// tear down any links — the caller is expected to be shutting down the
// whole process. Mirrors qcm_edge_addr_proxy_final.
func (c *Controller) Close() {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
}

// dispatch is the single entry point the router core calls events
// through; it is an exhaustive type switch over the three event
// families (spec.md §9).
func (c *Controller) dispatch(e router.Event) {
	switch {
	case e.Conn != nil:
		c.onConnEvent(e.Kind, e.Conn)
	case e.Addr != nil:
		c.onAddrEvent(e.Kind, e.Addr)
	case e.Link != nil:
		c.onLinkEvent(e.Kind, e.Link)
	default:
		panic("controller: event with no payload reached dispatch")
	}
}
