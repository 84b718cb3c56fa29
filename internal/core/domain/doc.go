// Package domain contains the core business entities and rules: retrieval
// groups, embedding records, cosine similarity search, configuration and
// domain errors. It has no dependencies on adapters or external services.
package domain
