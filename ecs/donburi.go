// Package ecs provides ECS adapters for bramble.
package ecs

import (
	"github.com/quailgames/bramble"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ContactEventType is the Donburi event type for bramble contact events.
// Subscribe to this in your ECS systems to receive begin/end notifications.
var ContactEventType = events.NewEventType[bramble.ContactEvent]()

type donburiDelegate struct {
	world donburi.World
}

// NewDonburiDelegate creates a ContactDelegate backed by a Donburi world.
// Contact events are published to ContactEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiDelegate(world donburi.World) bramble.ContactDelegate {
	return &donburiDelegate{world: world}
}

func (d *donburiDelegate) DidBeginContact(ev bramble.ContactEvent) {
	ContactEventType.Publish(d.world, ev)
}

func (d *donburiDelegate) DidEndContact(ev bramble.ContactEvent) {
	ContactEventType.Publish(d.world, ev)
}
