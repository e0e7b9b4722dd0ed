// Package kernel provides the shared primitives of the dispatch domain model.
//
// The package includes:
//   - UUID: a value object for identifiers, used for every weak reference between
//     orders, vehicles and drivers
//   - Role and Actor: the identity and authorization role on whose behalf
//     a coordinator operation runs
//
// Both are immutable and safe for concurrent use.
package kernel
