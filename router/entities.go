// Package router defines the dependency surface the edge address proxy
// controller (package controller) consumes from the surrounding router
// core, plus a deterministic in-memory implementation (Fake) used by
// tests and the demonstration binary.
//
// The real router core — transport, frame parsing, routing tables,
// delivery forwarding — is out of scope; this package only models the
// slice of state (addresses, connections, links) and operations the
// controller actually touches.
package router

// AddressClass is the class-prefix byte of an address key. The
// controller only acts on ClassMobile addresses; the others exist so
// that address keys look like real router address keys.
type AddressClass byte

const (
	ClassMobile       AddressClass = 'M'
	ClassLocal        AddressClass = 'L'
	ClassTopological  AddressClass = 'C'
	ClassLinkBalanced AddressClass = 'D'
)

// Treatment is the routing treatment assigned to a locally-added
// address. Only AnycastClosest is exercised by this module (the "_edge"
// pseudo-address); the others exist for completeness of the type.
type Treatment int

const (
	TreatmentAnycastClosest Treatment = iota
	TreatmentAnycastBalanced
	TreatmentMulticast
)

// Direction is a link's direction. By convention in this model
// (carried over unchanged from the router core this module proxies
// for): an Outgoing link delivers messages out to a local consumer and
// is counted in Address.Rlinks; an Incoming link accepts messages from
// a local producer (or, for proxy links, signals consumer/producer
// presence to the interior) and is counted in Address.Inlinks. This is
// not optional texture — the add/remove-link seeding logic in
// controller/inlink.go and outlink.go depends on it.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// ConnRole is the role of a connection, per spec.md §3 Entity: Connection.
type ConnRole int

const (
	RoleClient ConnRole = iota
	RoleInterior
	RoleInterEdge
)

// ConnID, LinkID and DeliveryID are opaque handles into the router
// core's tables.
type ConnID uint64
type LinkID uint64
type DeliveryID uint64

// Connection mirrors the Connection entity of spec.md §3.
type Connection struct {
	ID   ConnID
	Role ConnRole
	Open bool
}

// Link mirrors the Link entity of spec.md §3.
type Link struct {
	ID     LinkID
	Dir    Direction
	Conn   ConnID
	Proxy  bool
	Source *Terminus
	Target *Terminus

	// owningAddr is set by BindAddressLink/UnbindAddressLink; nil means
	// the link is currently unbound from any address (the state an
	// outlink starts in, per spec.md §4.3).
	owningAddr *Address
}

// OwningAddress returns the address this link is currently bound to,
// or nil if unbound.
func (l *Link) OwningAddress() *Address { return l.owningAddr }

// Terminus is a simplified AMQP terminus: enough of the real thing
// (address, capabilities) for the controller's purposes. Full terminus
// semantics (durability, expiry policy, filters) are out of scope.
type Terminus struct {
	Address      string
	Capabilities []string
}

// Address mirrors the Address entity of spec.md §3. The two weak
// slots are plain *Link fields: in a garbage-collected language a slot
// that is explicitly nulled out on detach (see controller/detach.go)
// already satisfies the "never dereference a freed link" invariant
// spec.md §9 calls out for arena/generation-based languages.
type Address struct {
	Key   []byte
	Class AddressClass

	Rlinks          []*Link // local + proxy outgoing (receiver) links
	ProxyRlinkCount int

	Inlinks          []*Link // local + proxy incoming (sender) links
	ProxyInlinkCount int

	Subscriptions int // in-process consumer count
	Watches       int // in-process source-watch count

	PropagateLocal bool

	EdgeInlinkSlot  *Link
	EdgeOutlinkSlot *Link
}

// NonProxyRlinks is nonproxy_rlinks(a) from spec.md §4.3.
func (a *Address) NonProxyRlinks() int { return len(a.Rlinks) - a.ProxyRlinkCount }

// NonProxyInlinks is nonproxy_inlinks(a) from spec.md §4.3.
func (a *Address) NonProxyInlinks() int { return len(a.Inlinks) - a.ProxyInlinkCount }

// IsMobile reports whether a is of the mobile address class, the only
// class the controller acts on (spec.md §3).
func (a *Address) IsMobile() bool { return a.Class == ClassMobile }

// StripClassPrefix returns the address name with its class-prefix byte stripped —
// the terminus address used when creating proxy links (spec.md §4.3).
func StripClassPrefix(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	return string(key[1:])
}
