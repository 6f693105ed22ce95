package router

import "github.com/bartoval/skupper-router/internal/proto"

// Disposition is the outcome applied to a delivery via EndpointSettle.
type Disposition int

const (
	Accepted Disposition = iota
	Rejected
)

// Endpoint is a link managed by the endpoint framework (spec.md §6,
// endpoint_create_link): a receiver whose transfers are dispatched to
// the callbacks in its EndpointDescriptor rather than delivered
// through the general link/credit machinery. The tracking endpoint
// (controller/tracking.go) is the only user of this in the EAP.
type Endpoint struct {
	ID         LinkID
	Conn       ConnID
	Descriptor EndpointDescriptor
	Context    any
}

// EndpointDescriptor bundles the callbacks an endpoint link dispatches
// to, mirroring qdrc_endpoint_desc_t in the reference implementation.
type EndpointDescriptor struct {
	Label string

	// OnSecondAttach fires when the remote acknowledges the endpoint
	// link's attach.
	OnSecondAttach func(ctx any)

	// OnTransfer fires once per delivery on the endpoint's link. The
	// callback is responsible for settling the delivery (EndpointSettle)
	// and replenishing credit (EndpointFlow) itself — mirroring
	// on_transfer in the reference implementation, which does both
	// inline rather than returning a value to its caller.
	OnTransfer func(ctx any, delivery DeliveryID, body proto.Value)
}

// Core is the dependency surface the controller consumes from the
// router core, per spec.md §6's operation table. A production router
// core implements Core; Fake (fake.go) is the deterministic in-memory
// implementation used by this module's own tests.
type Core interface {
	// AddLocalAddress allocates an addressable record and returns a
	// handle to it.
	AddLocalAddress(class AddressClass, name string, treatment Treatment) *Address

	// EventSubscribe registers handler for the event kinds in mask.
	EventSubscribe(mask EventMask, handler EventHandler) Subscription

	// CreateLink creates a link and returns a handle. proxy marks the
	// link as controller-created (spec.md §3, Entity: Link).
	CreateLink(conn ConnID, dir Direction, source, target *Terminus, proxy bool) *Link

	// BindAddressLink and UnbindAddressLink idempotently bind/unbind a
	// link to an address for routing purposes.
	BindAddressLink(addr *Address, link *Link)
	UnbindAddressLink(addr *Address, link *Link)

	// LinkOutboundDetach initiates a detach, optionally carrying an
	// error (nil for a clean detach).
	LinkOutboundDetach(link *Link, err error)

	// EndpointCreateLink creates an endpoint-framework-managed link.
	EndpointCreateLink(conn ConnID, dir Direction, source, target *Terminus, descriptor EndpointDescriptor, ctx any) *Endpoint

	// EndpointFlow issues additional credit to the remote on ep.
	EndpointFlow(ep *Endpoint, credit int, echo bool)

	// EndpointSettle disposes a delivery.
	EndpointSettle(delivery DeliveryID, disposition Disposition)

	// EndpointDetach detaches an endpoint's link.
	EndpointDetach(ep *Endpoint, err error)

	// AddressByKey looks up an address in the router's address hash.
	AddressByKey(key []byte) (*Address, bool)

	// Addresses returns every known address, for the setup-time walk
	// (spec.md §4.2 step 5) and the inter-edge mesh seeding (§4.4).
	Addresses() []*Address

	// Connections returns every known connection, for filtering by
	// role and open state and for finding a connection's role from its
	// ID (the controller scans this list; Core has no lookup by ID).
	Connections() []*Connection
}
