// Package servicebus probes the liveness of Service Bus queues and topics.
//
// A probe runs exactly one low-impact operation against a resource:
//
//   - ModePeek peeks at most one message from a queue (Listen rights).
//   - ModeSendBatch opens a message batch on a queue or topic and never sends it (Send rights).
//   - ModeManagement reads the entity's runtime properties (Manage rights).
//
// The Prober caches every handle it opens in cache.Keyed caches, so repeated
// probes reuse one client per connection and one receiver or sender per
// resource. The Prober is the error boundary: construction failures,
// operation failures, cancellation and panics in the messaging client all
// become an unhealthy Verdict carrying the cause.
//
// The messaging client itself is behind ClientProvider; see the azure
// subpackage for the Azure SDK implementation.
package servicebus
