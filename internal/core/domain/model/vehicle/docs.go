// Package vehicle implements the Vehicle entity: its descriptive specs, its
// availability status and the weak references to the driver and order it serves.
//
// A vehicle is Available, InUse, in Maintenance or OutOfService. Only an
// assignment makes it InUse, and only then does it reference a driver.
package vehicle
