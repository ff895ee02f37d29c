// Package identity defines the three value-object representations of a
// contributor: a GitHub account, a raw git commit author, and a CITATION.cff
// author record. All three are comparable value types, so they can be used
// directly as map keys; two identities are equal only when their full
// structured data is equal, which keeps differently-enriched copies of the
// same person distinct until the matcher deduplicates them explicitly.
package identity

// Identity is implemented by every contributor representation.
type Identity interface {
	// Key returns the canonical unique key for this identity.
	Key() string

	// Describe returns a human-readable identifier for logs and reports.
	Describe() string
}
