// Package ir holds the value model shared by the query compiler and the
// execution engine.
//
// A Resource is an arbitrary JSON object. Its id key is mirrored into the id
// column. The whole object is stored as canonical JSON text in the payload
// column.
//
// # Normalization
//
// Normalize is applied exactly once to every filter value and to every
// indexed field value before binding. Booleans become 1/0 so SQL predicates
// and in-memory comparisons see the same representation.
//
// # Canonical payloads
//
// MarshalCanonical sorts object keys by UTF-16 code units, NFC-normalizes
// strings and disables HTML escaping, so equal resources always produce
// byte-identical payload text.
//
// # Decoding
//
// DecodePayload uses json.Number to avoid float64 precision loss. Equal
// compares numbers by value, so a decoded json.Number("1") equals int 1.
package ir
