// Package types defines the value objects and error taxonomy shared by the
// mahmkit packages: the decoded shared memory header, monitoring entries,
// GPU entries, and the Snapshot that groups them.
//
// Design goals:
//   - Values are independently owned Go copies; nothing here aliases the
//     mapped segment.
//   - Typed errors with stable kinds (segment/decode/bounds/...), which the
//     C boundary maps one-to-one onto numeric codes.
//   - Small, copyable handles for tokens that must detect a refresh.
//
// This package has no dependencies beyond the standard library.
package types
