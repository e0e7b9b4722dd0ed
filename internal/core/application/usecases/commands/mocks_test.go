package commands_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/exclusion"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVehicleRepository struct{ mock.Mock }

func (m *MockVehicleRepository) Save(ctx context.Context, v *vehicle.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetAll(ctx context.Context) ([]*vehicle.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vehicle.Vehicle), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Save(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*driver.Driver, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) VehicleRepository() ports.VehicleRepository {
	args := m.Called()
	return args.Get(0).(ports.VehicleRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifier.Event
}

func (p *recordingPublisher) Publish(e notifier.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []notifier.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifier.Event(nil), p.events...)
}

func (p *recordingPublisher) Kinds() []notifier.Kind {
	var kinds []notifier.Kind
	for _, e := range p.Events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// lockCounter counts granted exclusion leases.
type lockCounter struct {
	granted atomic.Int64
}

func (c *lockCounter) ObserveExclusionWait(_ time.Duration, acquired bool) {
	if acquired {
		c.granted.Add(1)
	}
}

type fixture struct {
	registry    *registry.Registry
	orders      *registry.OrderBook
	uow         *MockUoW
	vehicleRepo *MockVehicleRepository
	driverRepo  *MockDriverRepository
	orderRepo   *MockOrderRepository
	publisher   *recordingPublisher
	locks       *exclusion.Manager
	leases      *lockCounter
	coordinator *commands.Coordinator
	dispatcher  kernel.Actor
	admin       kernel.Actor
}

// newFixture builds a coordinator over an empty in-memory state and mocked
// persistence. No write expectations are set; tests call acceptWrites or set
// their own.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		registry:    registry.New(),
		orders:      registry.NewOrderBook(),
		uow:         new(MockUoW),
		vehicleRepo: new(MockVehicleRepository),
		driverRepo:  new(MockDriverRepository),
		orderRepo:   new(MockOrderRepository),
		publisher:   &recordingPublisher{},
		leases:      &lockCounter{},
		dispatcher:  newActor(t, kernel.NewUUID(), kernel.RoleDispatcher),
		admin:       newActor(t, kernel.NewUUID(), kernel.RoleAdmin),
	}

	factory := new(MockUoWFactory)
	factory.On("Create").Return(f.uow)
	// A failed write stops a unit of work before it reaches every repository.
	f.uow.On("VehicleRepository").Return(f.vehicleRepo).Maybe()
	f.uow.On("DriverRepository").Return(f.driverRepo).Maybe()
	f.uow.On("OrderRepository").Return(f.orderRepo).Maybe()

	f.locks = exclusion.NewManager(time.Second, f.leases)
	f.coordinator = commands.NewCoordinator(
		f.registry,
		f.orders,
		f.locks,
		factory,
		f.publisher,
	)
	return f
}

// acceptWrites makes every unit of work succeed.
func (f *fixture) acceptWrites() {
	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Commit", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	f.orderRepo.On("Delete", mock.Anything, mock.AnythingOfType("kernel.UUID")).Return(nil)
	f.vehicleRepo.On("Save", mock.Anything, mock.AnythingOfType("*vehicle.Vehicle")).Return(nil)
	f.driverRepo.On("Save", mock.Anything, mock.AnythingOfType("*driver.Driver")).Return(nil)
}

func (f *fixture) addVehicle(t *testing.T, plate string) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.NewVehicle(kernel.NewUUID(), vehicle.Specs{
		PlateNumber: plate,
		Make:        "Volvo",
		Model:       "FH",
		Year:        2021,
		Capacity:    18000,
	})
	require.NoError(t, err)
	require.NoError(t, f.registry.AddVehicle(v))
	return v
}

func (f *fixture) addDriver(t *testing.T, name, licence string) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), driver.Profile{
		Name:    name,
		License: driver.License{Number: licence, Type: "C", Expiry: time.Now().AddDate(2, 0, 0)},
	})
	require.NoError(t, err)
	require.NoError(t, f.registry.AddDriver(d))
	return d
}

func (f *fixture) addOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), validDetails())
	require.NoError(t, err)
	require.NoError(t, f.orders.Add(o))
	return o
}

func (f *fixture) assign(t *testing.T, o *order.Order, v *vehicle.Vehicle, d *driver.Driver) *order.Order {
	t.Helper()
	cmd, err := commands.NewAssignOrderCommand(o.ID(), v.ID(), d.ID(), f.dispatcher)
	require.NoError(t, err)
	assigned, err := commands.NewAssignOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return assigned
}

func (f *fixture) order(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()
	o, err := f.orders.Get(id)
	require.NoError(t, err)
	return o
}

func (f *fixture) vehicle(t *testing.T, id kernel.UUID) *vehicle.Vehicle {
	t.Helper()
	v, err := f.registry.Vehicle(id)
	require.NoError(t, err)
	return v
}

func (f *fixture) driver(t *testing.T, id kernel.UUID) *driver.Driver {
	t.Helper()
	d, err := f.registry.Driver(id)
	require.NoError(t, err)
	return d
}

func newActor(t *testing.T, id kernel.UUID, role kernel.Role) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(id, role)
	require.NoError(t, err)
	return a
}

func validDetails() order.Details {
	return order.Details{
		Customer:        order.Customer{Name: "Northwind", Phone: "+1 555 0142"},
		PickupAddress:   "Warehouse 7",
		DeliveryAddress: "3 Mill Lane",
		Cargo:           order.Cargo{Description: "crates", Weight: 350, Quantity: 6},
		Priority:        order.PriorityMedium,
		Distance:        18,
		Cost:            95,
	}
}
