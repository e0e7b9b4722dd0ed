// Package order implements the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: identity, customer and cargo details, status and the weak
//     references to the vehicle and driver serving it
//   - Status: the lifecycle states and the legal edges between them
//   - Details, Customer, Cargo, Priority: immutable order attributes
//
// Key business rules:
//   - Orders start Pending and move Pending -> Assigned -> InProgress -> Completed
//   - Pending and Assigned orders may be Cancelled
//   - Completed and Cancelled are terminal
//   - Assignment references are set iff the order is Assigned or InProgress
//
// Who may perform a transition is decided by services.OrderLifecycle; this
// package only knows which transitions exist.
package order
