// Package registry holds the in-memory source of truth the coordinator works on.
//
// Registry owns vehicles and drivers and implements the reservation protocol:
//
//	token, err := reg.Reserve(vehicleID, driverID) // hold both or neither
//	err = reg.Commit(token, orderID)               // in-use / on-duty, cross references set
//	reg.Abort(token)                               // undo a hold or a commit
//	reg.Settle(token)                              // commit is durable, forget the undo data
//	err = reg.Release(vehicleID, driverID)         // back to available, idempotent
//
// OrderBook owns orders. Both store originals and hand out clones, and refer
// to each other only by id.
package registry
