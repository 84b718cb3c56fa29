// Package services contains the core application services, wiring the
// domain logic to the driven ports. Services hold no transport or storage
// detail; they orchestrate chunking, embedding, persistence and completion.
package services
