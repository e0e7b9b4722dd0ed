// Package exclusion provides keyed mutual exclusion for multi-entity operations.
//
// Every operation that reads then writes an order, vehicle or driver acquires
// the keys of all entities it touches in one call:
//
//	lease, err := locks.Acquire(ctx,
//	    exclusion.Key("order", orderID),
//	    exclusion.Key("vehicle", vehicleID),
//	    exclusion.Key("driver", driverID),
//	)
//	if err != nil {
//	    return err // *errs.BusyError, safe to retry
//	}
//	defer lease.Release()
package exclusion
