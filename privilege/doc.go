// Package privilege defines the closed set of storage access operations, the
// bitmask of grantable privileges, and the fixed mapping between the two used
// by authorization decisions.
//
// # Operations and privileges
//
// Operation is a closed enumeration of the access kinds a storage request can
// ask for (read, create, rename, ...). Mask is a set of independent privilege
// bits accumulated from permission rules by bitwise union. [Of] maps each
// Operation to the single privilege bit it grants; [OpAny] grants no bit at
// all — a rule scoped to OpAny matches any request but contributes nothing to
// the accumulated mask.
//
// The mapping is a fixed table decided at compile time. It never grows at
// runtime.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Rule storage,
// caching, and decision logic live in the root package.
//
// # What this package must NOT do
//
//   - Access the network or any storage backend.
//   - Import the root package or any sibling package.
//   - Grow the operation set or reassign bits after process start.
package privilege
