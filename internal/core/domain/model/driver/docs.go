// Package driver implements the Driver entity: profile and licence attributes,
// availability status and the weak references to the vehicle and order the
// driver is serving.
package driver
