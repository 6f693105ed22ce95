package controller

import (
	"github.com/bartoval/skupper-router/internal/proto"
	"github.com/bartoval/skupper-router/internal/xlog"
	"github.com/bartoval/skupper-router/router"
)

// onTrackingSecondAttach issues the initial credit batch once the
// remote acknowledges the tracking endpoint's attach. Mirrors
// on_second_attach.
func (c *Controller) onTrackingSecondAttach(ctx any) {
	c.trackingAttached = true
	c.core.EndpointFlow(c.trackingEndpoint, initialCredit, false)
}

// onTrackingTransfer validates and applies one tracking-protocol
// delivery, then settles it and replenishes one credit unit. Mirrors
// on_transfer: a malformed body is rejected; a well-formed body
// referencing an unknown address is accepted with no state change; a
// well-formed body for a known address binds/unbinds that address's
// outlink slot according to the reachability flag (spec.md §4.5, §7).
func (c *Controller) onTrackingTransfer(ctx any, delivery router.DeliveryID, body proto.Value) {
	dispo := router.Accepted

	addrKey, hasUpstream, err := proto.DecodeTrackingBody(body)
	if err != nil {
		xlog.Errorf("edge address proxy: received an invalid message body, rejecting: %v", err)
		dispo = router.Rejected
	} else if addr, ok := c.core.AddressByKey(addrKey); ok {
		c.applyTrackingUpdate(addr, hasUpstream)
	}
	// else: address unknown — accepted, no state change (spec.md §4.5, §7.2).

	c.core.EndpointSettle(delivery, dispo)
	c.core.EndpointFlow(c.trackingEndpoint, 1, false)
}

// applyTrackingUpdate binds or unbinds addr's outlink slot according
// to hasUpstream, if that slot is currently occupied. No-op in every
// other combination (spec.md §4.5).
func (c *Controller) applyTrackingUpdate(addr *router.Address, hasUpstream bool) {
	link := addr.EdgeOutlinkSlot
	if link == nil {
		return
	}

	bound := link.OwningAddress() == addr
	switch {
	case hasUpstream && !bound:
		c.core.BindAddressLink(addr, link)
	case !hasUpstream && bound:
		c.core.UnbindAddressLink(addr, link)
	}
}
