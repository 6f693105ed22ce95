package controller

import "github.com/bartoval/skupper-router/router"

// proxyAddrOnInterEdgeConnection creates and binds an incoming proxy
// link for addr on conn. Unlike the interior inlink/outlink, these
// links are not tracked in a slot (spec.md §4.4) — they are found
// later by filtering addr.Inlinks by connection role. Mirrors
// proxy_addr_on_inter_edge_connection.
func (c *Controller) proxyAddrOnInterEdgeConnection(addr *router.Address, connID router.ConnID) {
	term := &router.Terminus{Address: router.StripClassPrefix(addr.Key)}
	link := c.core.CreateLink(connID, router.Incoming, term, &router.Terminus{}, true)
	c.core.BindAddressLink(addr, link)
}

// proxyAddrOnAllInterEdgeConnections proxies addr on every currently
// open inter-edge connection. Mirrors
// proxy_addr_on_all_inter_edge_connections.
func (c *Controller) proxyAddrOnAllInterEdgeConnections(addr *router.Address) {
	for _, conn := range c.core.Connections() {
		if conn.Role == router.RoleInterEdge && conn.Open {
			c.proxyAddrOnInterEdgeConnection(addr, conn.ID)
		}
	}
}

// removeProxiesForAddr detaches every inter-edge proxy link bound to
// addr (found by filtering addr.Inlinks for peer-edge connections, per
// spec.md §4.4's "not tracked in per-address slots"). Mirrors
// remove_proxies_for_addr.
func (c *Controller) removeProxiesForAddr(addr *router.Address) {
	conns := make(map[router.ConnID]router.ConnRole, len(c.core.Connections()))
	for _, conn := range c.core.Connections() {
		conns[conn.ID] = conn.Role
	}

	// Copy the slice before mutating it via unbind (unbind removes the
	// link from addr.Inlinks in place).
	links := append([]*router.Link(nil), addr.Inlinks...)
	for _, link := range links {
		if conns[link.Conn] == router.RoleInterEdge {
			c.core.UnbindAddressLink(addr, link)
			c.core.LinkOutboundDetach(link, nil)
		}
	}
}

// onInterEdgeConnectionOpened proxies every mobile address with at
// least one non-proxy local destination onto the newly opened peer
// connection. Mirrors on_inter_edge_connection_opened.
func (c *Controller) onInterEdgeConnectionOpened(conn *router.Connection) {
	for _, addr := range c.core.Addresses() {
		if addr.IsMobile() && addr.NonProxyRlinks() > 0 {
			c.proxyAddrOnInterEdgeConnection(addr, conn.ID)
		}
	}
}
