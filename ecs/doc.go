// Package ecs provides ECS adapters for bramble's contact event system.
//
// The primary adapter is [NewDonburiDelegate], which bridges bramble contact
// events (overlap begin/end) into a [Donburi] world as typed events.
// Subscribe to [ContactEventType] in your ECS systems to receive them.
//
// Usage:
//
//	delegate := ecs.NewDonburiDelegate(world)
//	scene.World().SetContactDelegate(delegate)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
