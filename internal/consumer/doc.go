// Package consumer holds the event log consumer groups.
//
// Notifications turns follow, publish and engagement events into durable
// notification rows and fans each new row out to the live and push channels.
// Analytics maintains engagement counters in the cache. Invalidation drops
// cache entries named by invalidation events and follow graph changes.
//
// Every consumer is an event.Visitor: adding an event type does not compile
// until each consumer decides what to do with it. Undecodable or unknown
// records are logged and acknowledged so they can never block a partition.
package consumer
