package controller

import (
	"testing"

	"github.com/bartoval/skupper-router/internal/proto"
	"github.com/bartoval/skupper-router/router"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*router.Fake, *Controller) {
	t.Helper()
	core := router.NewFake()
	c := New(core, Options{RouterID: "router.1"})
	t.Cleanup(c.Close)
	return core, c
}

// Scenario 1 (spec.md §8): zero addresses, CONN_EDGE_ESTABLISHED(C1).
func TestScenario1_BareEstablish(t *testing.T) {
	core, c := newTestController(t)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	require.NotNil(t, c.edgeUplink)
	require.NotNil(t, c.edgeDownlink)
	require.NotNil(t, c.trackingEndpoint)
	require.Equal(t, connC1, c.edgeUplink.Conn)
	require.Equal(t, connC1, c.edgeDownlink.Conn)
}

// Scenario 2: address M:foo has one local receiver, then establish.
func TestScenario2_SeedInlinkOnly(t *testing.T) {
	core, c := newTestController(t)

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr) // one local receiver

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	require.NotNil(t, addr.EdgeInlinkSlot)
	require.Nil(t, addr.EdgeOutlinkSlot)
	_ = c
}

// Scenario 3: outlink created unbound, then bound/unbound by tracking messages.
func TestScenario3_OutlinkBindUnbind(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Incoming, addr) // local sender -> ADDR_BECAME_SOURCE

	require.NotNil(t, addr.EdgeOutlinkSlot)
	require.NotEqual(t, addr, addr.EdgeOutlinkSlot.OwningAddress())

	core.DeliverSecondAttach(connC1)
	require.Equal(t, 32, core.CreditIssued())

	core.DeliverTransfer(connC1, 1, proto.EncodeTrackingBody([]byte("Mfoo"), true))
	require.Equal(t, addr, addr.EdgeOutlinkSlot.OwningAddress())
	require.Equal(t, router.Accepted, core.LastDisposition())
	require.Equal(t, 33, core.CreditIssued())

	core.DeliverTransfer(connC1, 2, proto.EncodeTrackingBody([]byte("Mfoo"), false))
	require.Nil(t, addr.EdgeOutlinkSlot.OwningAddress())
	require.Equal(t, 34, core.CreditIssued())
}

// Scenario 4: peer-edge mesh proxying across multiple connections.
func TestScenario4_PeerMesh(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	addr := core.AddAddress([]byte("Mbar"), router.ClassMobile)

	connC2 := core.OpenConnection(router.RoleInterEdge)
	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr) // 0->1 nonproxy rlinks

	connC3 := core.OpenConnection(router.RoleInterEdge)

	var onC2, onC3 int
	for _, l := range addr.Inlinks {
		if l.Conn == connC2 {
			onC2++
		}
		if l.Conn == connC3 {
			onC3++
		}
	}
	require.Equal(t, 1, onC2)
	require.Equal(t, 1, onC3)

	// P5, detach half: once the local receiver goes away, nonproxy_rlinks
	// drops to 0 and every peer proxy link (on both C2 and C3) is detached.
	peerLinks := append([]*router.Link(nil), addr.Inlinks...)
	core.DetachLocalLink(addr, addr.Rlinks[0])
	require.Empty(t, addr.Inlinks)
	for _, l := range peerLinks {
		require.Contains(t, core.Detached, l.ID)
	}
}

// Scenario 5: malformed tracking body is rejected, credit reissued.
func TestScenario5_MalformedTrackingBody(t *testing.T) {
	core, c := newTestController(t)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)
	core.DeliverSecondAttach(connC1)

	before := core.CreditIssued()
	core.DeliverTransfer(connC1, 1, proto.List(proto.Binary([]byte("onlyone"))))
	require.Equal(t, router.Rejected, core.LastDisposition())
	require.Equal(t, before+1, core.CreditIssued())
	_ = c
}

// Scenario 6: upgrade migrates control links and recreates slots.
func TestScenario6_Upgrade(t *testing.T) {
	core, c := newTestController(t)

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)
	oldInlink := addr.EdgeInlinkSlot
	require.NotNil(t, oldInlink)
	require.Equal(t, connC1, oldInlink.Conn)

	connC2 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC2)

	require.NotNil(t, addr.EdgeInlinkSlot)
	require.NotEqual(t, oldInlink, addr.EdgeInlinkSlot)
	require.Equal(t, connC2, addr.EdgeInlinkSlot.Conn)
	require.Equal(t, connC2, c.edgeUplink.Conn)
	require.Equal(t, connC2, c.edgeDownlink.Conn)
	require.Contains(t, core.Detached, oldInlink.ID)
}

// P1/P2: slot uniqueness and liveness.
func TestP1P2_SlotUniquenessAndLiveness(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr)
	core.AttachLocalLink(clientConn, router.Outgoing, addr)

	require.NotNil(t, addr.EdgeInlinkSlot)
	require.Equal(t, 1, addr.ProxyInlinkCount)
	require.True(t, addr.EdgeInlinkSlot.Proxy)
	require.Equal(t, connC1, addr.EdgeInlinkSlot.Conn)
}

// P3: detach closure.
func TestP3_DetachClosure(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)
	require.NotNil(t, addr.EdgeInlinkSlot)

	link := addr.EdgeInlinkSlot
	core.DetachLocalLink(addr, link)
	require.Nil(t, addr.EdgeInlinkSlot)
}

// Non-mobile addresses are ignored entirely.
func TestNonMobileAddressIgnored(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	addr := core.AddAddress([]byte("Cfoo"), router.ClassTopological)
	clientConn := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(clientConn, router.Outgoing, addr)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)

	require.Nil(t, addr.EdgeInlinkSlot)
	require.Nil(t, addr.EdgeOutlinkSlot)
}

// CONN_EDGE_LOST clears controller state without emitting detaches.
func TestConnEdgeLost_NoDetach(t *testing.T) {
	core, c := newTestController(t)

	connC1 := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(connC1)
	require.NotNil(t, c.edgeUplink)

	core.LoseEdge(connC1)
	require.Nil(t, c.edgeUplink)
	require.Nil(t, c.edgeDownlink)
	require.Nil(t, c.trackingEndpoint)
	require.Empty(t, core.Detached)
}

// Documents the preserved TODO in seedInlink: rlinks > 1 with every
// rlink on the edge connection is not special-cased, unlike rlinks == 1.
func TestSeedInlink_TodoCase(t *testing.T) {
	core, c := newTestController(t)
	_ = c

	addr := core.AddAddress([]byte("Mfoo"), router.ClassMobile)
	connC1 := core.OpenConnection(router.RoleInterior)

	// Two rlinks already on the (about to be established) edge
	// connection, simulated by attaching them on connC1 directly
	// before EstablishEdge fires setup.
	core.AttachLocalLink(connC1, router.Outgoing, addr)
	core.AttachLocalLink(connC1, router.Outgoing, addr)

	core.EstablishEdge(connC1)

	// The TODO'd logic creates an inlink anyway, even though every
	// existing rlink is already on the edge connection (unlike the
	// rlinks==1 case, which would have skipped it).
	require.NotNil(t, addr.EdgeInlinkSlot)
}
