package router

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBindAddressLink_BucketsByDirection(t *testing.T) {
	f := NewFake()
	addr := f.AddAddress([]byte("Mfoo"), ClassMobile)
	conn := f.OpenConnection(RoleInterior)

	out := f.CreateLink(conn, Outgoing, &Terminus{}, &Terminus{}, false)
	in := f.CreateLink(conn, Incoming, &Terminus{}, &Terminus{}, true)

	f.BindAddressLink(addr, out)
	f.BindAddressLink(addr, in)

	require.Len(t, addr.Rlinks, 1)
	require.Len(t, addr.Inlinks, 1)
	require.Equal(t, 0, addr.ProxyRlinkCount)
	require.Equal(t, 1, addr.ProxyInlinkCount)
	require.Equal(t, 1, addr.NonProxyRlinks())
	require.Equal(t, 0, addr.NonProxyInlinks())
}

func TestBindAddressLink_Idempotent(t *testing.T) {
	f := NewFake()
	addr := f.AddAddress([]byte("Mfoo"), ClassMobile)
	conn := f.OpenConnection(RoleInterior)
	link := f.CreateLink(conn, Outgoing, &Terminus{}, &Terminus{}, false)

	f.BindAddressLink(addr, link)
	f.BindAddressLink(addr, link)
	require.Len(t, addr.Rlinks, 1, "binding an already-bound link must be a no-op")

	f.UnbindAddressLink(addr, link)
	f.UnbindAddressLink(addr, link)
	require.Empty(t, addr.Rlinks, "unbinding an unbound link must be a no-op")
}

func TestAddresses_Deterministic(t *testing.T) {
	f := NewFake()
	f.AddAddress([]byte("Mz"), ClassMobile)
	f.AddAddress([]byte("Ma"), ClassMobile)
	f.AddAddress([]byte("Mm"), ClassMobile)

	got := f.Addresses()
	keys := make([]string, len(got))
	for i, a := range got {
		keys[i] = string(a.Key)
	}
	if diff := cmp.Diff([]string{"Ma", "Mm", "Mz"}, keys); diff != "" {
		t.Fatalf("unexpected address order (-want +got):\n%s", diff)
	}
}
