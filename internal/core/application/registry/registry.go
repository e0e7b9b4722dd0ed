package registry

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
)

// Registry is the in-memory owner of vehicles and drivers. Every other
// component refers to them by id and gets clones back, so nothing outside the
// Registry can change availability except through its methods.
//
// The Registry is safe for concurrent use, but it does not serialize
// multi-step operations: callers hold the entity exclusions for that.
type Registry struct {
	mu           sync.RWMutex
	vehicles     map[kernel.UUID]*vehicle.Vehicle
	drivers      map[kernel.UUID]*driver.Driver
	holds        map[kernel.UUID]kernel.UUID
	reservations map[kernel.UUID]*reservationState
	now          func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used for licence expiry checks.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		vehicles:     make(map[kernel.UUID]*vehicle.Vehicle),
		drivers:      make(map[kernel.UUID]*driver.Driver),
		holds:        make(map[kernel.UUID]kernel.UUID),
		reservations: make(map[kernel.UUID]*reservationState),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load replaces the whole content with state read from the store and drops
// every outstanding reservation.
func (r *Registry) Load(vehicles []*vehicle.Vehicle, drivers []*driver.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.vehicles)
	clear(r.drivers)
	clear(r.holds)
	clear(r.reservations)
	for _, v := range vehicles {
		r.vehicles[v.ID()] = v.Clone()
	}
	for _, d := range drivers {
		r.drivers[d.ID()] = d.Clone()
	}
}

// Reserve holds both resources for a later Commit. Either both are held or
// neither is. A resource is reservable only if it is available, not held by
// another reservation and, for drivers, carries an unexpired licence.
func (r *Registry) Reserve(vehicleID, driverID kernel.UUID) (Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[vehicleID]
	if !ok {
		return Reservation{}, errs.NewObjectNotFoundError("vehicleID", vehicleID)
	}
	d, ok := r.drivers[driverID]
	if !ok {
		return Reservation{}, errs.NewObjectNotFoundError("driverID", driverID)
	}

	if !v.IsAvailable() {
		return Reservation{}, errs.NewResourceUnavailableError("vehicle", vehicleID, v.Status().String())
	}
	if _, held := r.holds[vehicleID]; held {
		return Reservation{}, errs.NewResourceUnavailableError("vehicle", vehicleID, "reserved")
	}
	if !d.IsAvailable() {
		return Reservation{}, errs.NewResourceUnavailableError("driver", driverID, d.Status().String())
	}
	if _, held := r.holds[driverID]; held {
		return Reservation{}, errs.NewResourceUnavailableError("driver", driverID, "reserved")
	}
	if d.Profile().LicenseExpired(r.now()) {
		return Reservation{}, errs.NewResourceUnavailableError("driver", driverID, "unlicensed")
	}

	token := Reservation{id: kernel.NewUUID(), vehicleID: vehicleID, driverID: driverID}
	r.holds[vehicleID] = token.id
	r.holds[driverID] = token.id
	r.reservations[token.id] = &reservationState{
		token:   token,
		vehicle: v.Clone(),
		driver:  d.Clone(),
	}

	return token, nil
}

// Commit turns a held reservation into an assignment to orderID: the vehicle
// goes in-use, the driver on-duty, and both reference each other and the
// order. Repeating the call with the same token and order is a no-op.
func (r *Registry) Commit(token Reservation, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.reservations[token.id]
	if !ok {
		return errs.NewObjectNotFoundError("reservation", token.id)
	}
	if state.committed {
		if state.orderID.IsEqual(orderID) {
			return nil
		}
		return errs.NewConflictError("reservation " + token.id.String() + " is committed to order " + state.orderID.String())
	}

	v := r.vehicles[token.vehicleID]
	d := r.drivers[token.driverID]
	if err := v.Occupy(token.driverID, orderID); err != nil {
		return err
	}
	if err := d.Occupy(token.vehicleID, orderID); err != nil {
		r.vehicles[token.vehicleID] = state.vehicle.Clone()
		return err
	}

	delete(r.holds, token.vehicleID)
	delete(r.holds, token.driverID)
	state.committed = true
	state.orderID = orderID
	return nil
}

// Abort undoes a reservation. An uncommitted hold is dropped; a committed one
// has both resources restored to their state before Reserve. Aborting an
// unknown or already aborted token does nothing.
func (r *Registry) Abort(token Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.reservations[token.id]
	if !ok {
		return
	}
	if state.committed {
		r.vehicles[token.vehicleID] = state.vehicle.Clone()
		r.drivers[token.driverID] = state.driver.Clone()
	} else {
		delete(r.holds, token.vehicleID)
		delete(r.holds, token.driverID)
	}
	delete(r.reservations, token.id)
}

// Settle forgets a committed reservation once its assignment is durable.
// After Settle the token can no longer be aborted.
func (r *Registry) Settle(token Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.reservations[token.id]; ok && state.committed {
		delete(r.reservations, token.id)
	}
}

// Release returns both resources to available and clears their references.
// A side that is not in use is left untouched, so repeated calls are no-ops.
func (r *Registry) Release(vehicleID, driverID kernel.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[vehicleID]
	if !ok {
		return errs.NewObjectNotFoundError("vehicleID", vehicleID)
	}
	d, ok := r.drivers[driverID]
	if !ok {
		return errs.NewObjectNotFoundError("driverID", driverID)
	}

	v.Free()
	d.Free()
	return nil
}

// AddVehicle registers a new vehicle. Ids and plate numbers are unique.
func (r *Registry) AddVehicle(v *vehicle.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vehicles[v.ID()]; exists {
		return errs.NewConflictError("vehicle " + v.ID().String() + " already exists")
	}
	for _, other := range r.vehicles {
		if other.Specs().PlateNumber == v.Specs().PlateNumber {
			return errs.NewConflictError("plate number " + v.Specs().PlateNumber + " is already registered")
		}
	}
	r.vehicles[v.ID()] = v.Clone()
	return nil
}

// AddDriver registers a new driver. Ids and licence numbers are unique.
func (r *Registry) AddDriver(d *driver.Driver) error {
	if err := d.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[d.ID()]; exists {
		return errs.NewConflictError("driver " + d.ID().String() + " already exists")
	}
	for _, other := range r.drivers {
		if other.Profile().License.Number == d.Profile().License.Number {
			return errs.NewConflictError("licence " + d.Profile().License.Number + " is already registered")
		}
	}
	r.drivers[d.ID()] = d.Clone()
	return nil
}

// RemoveVehicle forgets a vehicle. It is the rollback of AddVehicle.
func (r *Registry) RemoveVehicle(id kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehicles, id)
}

// RemoveDriver forgets a driver. It is the rollback of AddDriver.
func (r *Registry) RemoveDriver(id kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drivers, id)
}

// RestoreVehicle puts a previously taken snapshot back.
func (r *Registry) RestoreVehicle(snapshot *vehicle.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[snapshot.ID()] = snapshot.Clone()
}

// RestoreDriver puts a previously taken snapshot back.
func (r *Registry) RestoreDriver(snapshot *driver.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[snapshot.ID()] = snapshot.Clone()
}

// SetVehicleStatus applies an administrative status to an idle vehicle.
func (r *Registry) SetVehicleStatus(id kernel.UUID, status vehicle.Status) (*vehicle.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vehicles[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vehicleID", id)
	}
	if _, held := r.holds[id]; held {
		return nil, errs.NewConflictError("vehicle " + id.String() + " is being assigned")
	}
	if err := v.ChangeStatus(status); err != nil {
		return nil, err
	}
	return v.Clone(), nil
}

// SetDriverStatus applies an administrative status to an idle driver.
func (r *Registry) SetDriverStatus(id kernel.UUID, status driver.Status) (*driver.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driverID", id)
	}
	if _, held := r.holds[id]; held {
		return nil, errs.NewConflictError("driver " + id.String() + " is being assigned")
	}
	if err := d.ChangeStatus(status); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// Vehicle returns a copy of the vehicle.
func (r *Registry) Vehicle(id kernel.UUID) (*vehicle.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vehicleID", id)
	}
	return v.Clone(), nil
}

// Driver returns a copy of the driver.
func (r *Registry) Driver(id kernel.UUID) (*driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driverID", id)
	}
	return d.Clone(), nil
}

// Vehicles returns copies of the vehicles with the given status, or of all
// vehicles for vehicle.Unknown, ordered by plate number.
func (r *Registry) Vehicles(status vehicle.Status) []*vehicle.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*vehicle.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		if status == vehicle.Unknown || v.Status() == status {
			result = append(result, v.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *vehicle.Vehicle) int {
		return cmp.Compare(a.Specs().PlateNumber, b.Specs().PlateNumber)
	})
	return result
}

// Drivers returns copies of the drivers with the given status, or of all
// drivers for driver.Unknown, ordered by name.
func (r *Registry) Drivers(status driver.Status) []*driver.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*driver.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		if status == driver.Unknown || d.Status() == status {
			result = append(result, d.Clone())
		}
	}
	slices.SortFunc(result, func(a, b *driver.Driver) int {
		if c := cmp.Compare(a.Profile().Name, b.Profile().Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return result
}

// IsHeld reports whether the resource is held by an uncommitted reservation.
func (r *Registry) IsHeld(id kernel.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, held := r.holds[id]
	return held
}
