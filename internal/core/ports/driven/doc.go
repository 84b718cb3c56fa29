// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): group persistence, the backing inference
// runtime, settings storage and result sinks.
package driven
