// Package event defines the domain events that flow through the pipeline.
//
// The set of event types is closed. Every type has a payload struct, and
// consumers dispatch on payloads through Visitor, which has one method per
// type: adding a type breaks the build of every consumer until it decides
// what to do with it.
//
// On the wire an event is a flat JSON object carrying eventId, eventType and
// timestamp (unix milliseconds) next to the payload fields.
package event
