package router

import (
	"sort"
	"sync/atomic"

	"github.com/bartoval/skupper-router/internal/proto"
	"github.com/bartoval/skupper-router/internal/xlog"
)

// Fake is a deterministic in-memory Core, modeled on the hand-rolled
// mock session/link doubles go-amqp's own tests build around
// (link_test.go's newTestLink). It owns the address hash, link table
// and connection table the controller reads and mutates, and is the
// thing test assertions are made against (router-core state is the
// observable surface for spec.md §8's properties).
//
// Fake is single-threaded, matching spec.md §5: it performs no locking
// and must only be driven from one goroutine at a time (the harness
// test's goroutine feeds it serially, just like a real core thread
// would).
type Fake struct {
	nextConnID atomic.Uint64
	nextLinkID atomic.Uint64

	addrsByKey map[string]*Address
	conns      map[ConnID]*Connection
	links      map[LinkID]*Link
	eps        map[LinkID]*Endpoint

	subs []*fakeSubscription

	// Detached records every link handed to LinkOutboundDetach/EndpointDetach,
	// in call order, for tests that want to assert on detach sequencing.
	Detached []LinkID

	creditIssued    int
	lastDisposition Disposition
}

// NewFake returns an empty Fake router core.
func NewFake() *Fake {
	return &Fake{
		addrsByKey: make(map[string]*Address),
		conns:      make(map[ConnID]*Connection),
		links:      make(map[LinkID]*Link),
		eps:        make(map[LinkID]*Endpoint),
	}
}

// --- connection / address management used by test setup, not part of Core ---

// OpenConnection registers a new connection with the given role and
// marks it open, firing EventConnOpened to subscribers. Returns the
// new connection's ID.
func (f *Fake) OpenConnection(role ConnRole) ConnID {
	id := ConnID(f.nextConnID.Add(1))
	conn := &Connection{ID: id, Role: role, Open: true}
	f.conns[id] = conn
	f.fire(Event{Kind: EventConnOpened, Conn: conn})
	return id
}

// EstablishEdge fires CONN_EDGE_ESTABLISHED for an edge-to-interior
// connection (creating it first if connID is zero/unknown).
func (f *Fake) EstablishEdge(connID ConnID) {
	conn, ok := f.conns[connID]
	if !ok {
		conn = &Connection{ID: connID, Role: RoleInterior, Open: true}
		f.conns[connID] = conn
	}
	f.fire(Event{Kind: EventConnEdgeEstablished, Conn: conn})
}

// LoseEdge fires CONN_EDGE_LOST for connID.
func (f *Fake) LoseEdge(connID ConnID) {
	conn := f.conns[connID]
	f.fire(Event{Kind: EventConnEdgeLost, Conn: conn})
}

// AddAddress registers addr under key directly (bypassing
// AddLocalAddress, which is for controller-owned pseudo-addresses).
// Used by tests to seed mobile addresses.
func (f *Fake) AddAddress(key []byte, class AddressClass) *Address {
	a := &Address{Key: append([]byte(nil), key...), Class: class}
	f.addrsByKey[string(key)] = a
	return a
}

// AttachLocalLink simulates a local client attaching a non-proxy link
// to addr and fires the corresponding ADDR_* event, the way a real
// router core would after completing the attach.
func (f *Fake) AttachLocalLink(connID ConnID, dir Direction, addr *Address) *Link {
	link := &Link{ID: LinkID(f.nextLinkID.Add(1)), Dir: dir, Conn: connID}
	f.links[link.ID] = link
	f.BindAddressLink(addr, link)

	if dir == Outgoing {
		f.fire(Event{Kind: EventAddrAddedLocalDest, Addr: addr})
	} else {
		f.fire(Event{Kind: EventAddrBecameSource, Addr: addr})
	}
	return link
}

// DetachLocalLink simulates a local client detaching link, firing the
// matching ADDR_REMOVED_LOCAL_DEST/ADDR_NO_LONGER_SOURCE and
// LINK_*_DETACHED events, in that order (removal from the address
// first, since that's what the count-based ADDR events key off of).
func (f *Fake) DetachLocalLink(addr *Address, link *Link) {
	dir := link.Dir
	f.UnbindAddressLink(addr, link)
	delete(f.links, link.ID)

	if dir == Outgoing {
		f.fire(Event{Kind: EventAddrRemovedLocalDest, Addr: addr})
		f.fire(Event{Kind: EventLinkOutDetached, Link: link})
	} else {
		f.fire(Event{Kind: EventAddrNoLongerSource, Addr: addr})
		f.fire(Event{Kind: EventLinkInDetached, Link: link})
	}
}

// Subscribe adds to addr.Subscriptions and fires nothing on its own
// (subscriptions don't drive a dedicated event per spec.md; they only
// matter combined with PropagateLocal during setup-time seeding).
func (f *Fake) Subscribe(addr *Address) { addr.Subscriptions++ }

// Watch increments addr.Watches and fires ADDR_WATCH_ON.
func (f *Fake) Watch(addr *Address) {
	addr.Watches++
	f.fire(Event{Kind: EventAddrWatchOn, Addr: addr})
}

// Unwatch decrements addr.Watches and fires ADDR_WATCH_OFF.
func (f *Fake) Unwatch(addr *Address) {
	addr.Watches--
	f.fire(Event{Kind: EventAddrWatchOff, Addr: addr})
}

// CloseConnection marks conn closed without firing a LOST/teardown
// event of its own. A closed peer-edge connection is skipped by
// proxyAddrOnAllInterEdgeConnections.
func (f *Fake) CloseConnection(connID ConnID) {
	if c, ok := f.conns[connID]; ok {
		c.Open = false
	}
}

func (f *Fake) fire(e Event) {
	for _, s := range f.subs {
		if s.mask&e.Kind != 0 {
			s.handler(e)
		}
	}
}

// --- Core implementation ---

func (f *Fake) AddLocalAddress(class AddressClass, name string, treatment Treatment) *Address {
	key := string(class) + name
	a := &Address{Key: []byte(key), Class: class}
	f.addrsByKey[key] = a
	return a
}

type fakeSubscription struct {
	f       *Fake
	mask    EventMask
	handler EventHandler
}

func (s *fakeSubscription) Unsubscribe() {
	for i, sub := range s.f.subs {
		if sub == s {
			s.f.subs = append(s.f.subs[:i], s.f.subs[i+1:]...)
			return
		}
	}
}

func (f *Fake) EventSubscribe(mask EventMask, handler EventHandler) Subscription {
	s := &fakeSubscription{f: f, mask: mask, handler: handler}
	f.subs = append(f.subs, s)
	return s
}

func (f *Fake) CreateLink(conn ConnID, dir Direction, source, target *Terminus, proxy bool) *Link {
	l := &Link{
		ID:     LinkID(f.nextLinkID.Add(1)),
		Dir:    dir,
		Conn:   conn,
		Proxy:  proxy,
		Source: source,
		Target: target,
	}
	f.links[l.ID] = l
	xlog.Debugf(2, "[C%d][L%d] created link (dir=%v proxy=%v)", conn, l.ID, dir, proxy)
	return l
}

func (f *Fake) BindAddressLink(addr *Address, link *Link) {
	if link.owningAddr == addr {
		return // idempotent, per spec.md §6
	}
	if link.owningAddr != nil {
		f.UnbindAddressLink(link.owningAddr, link)
	}

	link.owningAddr = addr
	if link.Dir == Outgoing {
		addr.Rlinks = append(addr.Rlinks, link)
		if link.Proxy {
			addr.ProxyRlinkCount++
		}
	} else {
		addr.Inlinks = append(addr.Inlinks, link)
		if link.Proxy {
			addr.ProxyInlinkCount++
		}
	}
	xlog.Debugf(2, "[C%d][L%d] bound to address '%s'", link.Conn, link.ID, addr.Key)
}

func (f *Fake) UnbindAddressLink(addr *Address, link *Link) {
	if link.owningAddr != addr {
		return // idempotent: already unbound or bound elsewhere
	}
	link.owningAddr = nil

	if link.Dir == Outgoing {
		addr.Rlinks = removeLink(addr.Rlinks, link)
		if link.Proxy {
			addr.ProxyRlinkCount--
		}
	} else {
		addr.Inlinks = removeLink(addr.Inlinks, link)
		if link.Proxy {
			addr.ProxyInlinkCount--
		}
	}
	xlog.Debugf(2, "[C%d][L%d] unbound from address '%s'", link.Conn, link.ID, addr.Key)
}

func removeLink(list []*Link, link *Link) []*Link {
	for i, l := range list {
		if l == link {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (f *Fake) LinkOutboundDetach(link *Link, err error) {
	delete(f.links, link.ID)
	f.Detached = append(f.Detached, link.ID)
	xlog.Debugf(2, "[C%d][L%d] outbound detach", link.Conn, link.ID)
}

func (f *Fake) EndpointCreateLink(conn ConnID, dir Direction, source, target *Terminus, descriptor EndpointDescriptor, ctx any) *Endpoint {
	ep := &Endpoint{ID: LinkID(f.nextLinkID.Add(1)), Conn: conn, Descriptor: descriptor, Context: ctx}
	f.eps[ep.ID] = ep
	return ep
}

func (f *Fake) EndpointFlow(ep *Endpoint, credit int, echo bool) {
	// Fake accumulates the credit issued; CreditIssued below reads it
	// back out for test assertions.
	f.creditIssued += credit
}

func (f *Fake) EndpointSettle(delivery DeliveryID, disposition Disposition) {
	f.lastDisposition = disposition
}

func (f *Fake) EndpointDetach(ep *Endpoint, err error) {
	delete(f.eps, ep.ID)
	f.Detached = append(f.Detached, ep.ID)
}

// DeliverSecondAttach simulates the remote acknowledging the attach of
// the endpoint link on conn, invoking its OnSecondAttach callback. A
// real router core would do this when the second PerformAttach frame
// arrives; the Fake has no transport, so callers trigger it directly.
func (f *Fake) DeliverSecondAttach(conn ConnID) {
	for _, ep := range f.eps {
		if ep.Conn == conn && ep.Descriptor.OnSecondAttach != nil {
			ep.Descriptor.OnSecondAttach(ep.Context)
			return
		}
	}
}

// DeliverTransfer simulates an incoming transfer on the endpoint link
// for conn, invoking its OnTransfer callback with body.
func (f *Fake) DeliverTransfer(conn ConnID, delivery DeliveryID, body proto.Value) {
	for _, ep := range f.eps {
		if ep.Conn == conn && ep.Descriptor.OnTransfer != nil {
			ep.Descriptor.OnTransfer(ep.Context, delivery, body)
			return
		}
	}
}

func (f *Fake) AddressByKey(key []byte) (*Address, bool) {
	a, ok := f.addrsByKey[string(key)]
	return a, ok
}

func (f *Fake) Addresses() []*Address {
	out := make([]*Address, 0, len(f.addrsByKey))
	for _, a := range f.addrsByKey {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return string(out[i].Key) < string(out[j].Key) })
	return out
}

func (f *Fake) Connections() []*Connection {
	out := make([]*Connection, 0, len(f.conns))
	for _, c := range f.conns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreditIssued returns the cumulative credit passed to EndpointFlow,
// for asserting P7 (spec.md §8) in tests.
func (f *Fake) CreditIssued() int { return f.creditIssued }

// LastDisposition returns the disposition of the most recent
// EndpointSettle call.
func (f *Fake) LastDisposition() Disposition { return f.lastDisposition }
