// Command eapdemo wires a Controller against an in-memory Fake router
// core and plays a short scripted event sequence, printing the
// resulting proxy-link state. It demonstrates the wiring; it is not
// part of the controller's tested surface.
package main

import (
	"fmt"

	"github.com/bartoval/skupper-router/controller"
	"github.com/bartoval/skupper-router/internal/proto"
	"github.com/bartoval/skupper-router/router"
)

func main() {
	core := router.NewFake()
	c := controller.New(core, controller.Options{RouterID: "router.edge1"})
	defer c.Close()

	addr := core.AddAddress([]byte("Mexamples"), router.ClassMobile)

	interior := core.OpenConnection(router.RoleInterior)
	core.EstablishEdge(interior)
	fmt.Printf("after establish: inlink=%v outlink=%v\n", addr.EdgeInlinkSlot, addr.EdgeOutlinkSlot)

	client := core.OpenConnection(router.RoleClient)
	core.AttachLocalLink(client, router.Incoming, addr) // local producer -> ADDR_BECAME_SOURCE
	fmt.Printf("after local producer attach: outlink=%v (bound=%v)\n",
		addr.EdgeOutlinkSlot, addr.EdgeOutlinkSlot != nil && addr.EdgeOutlinkSlot.OwningAddress() == addr)

	// Simulate the remote acknowledging the tracking endpoint's attach,
	// then the interior announcing an upstream destination for the
	// address.
	core.DeliverSecondAttach(interior)
	fmt.Printf("credit after second attach: %d\n", core.CreditIssued())

	body := proto.EncodeTrackingBody([]byte("Mexamples"), true)
	core.DeliverTransfer(interior, 1, body)
	fmt.Printf("after tracking update: outlink bound=%v, credit=%d\n",
		addr.EdgeOutlinkSlot != nil && addr.EdgeOutlinkSlot.OwningAddress() == addr, core.CreditIssued())
}
