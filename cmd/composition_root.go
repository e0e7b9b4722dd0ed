package cmd

import (
	"log/slog"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/kafkaexport"
	"dispatch/internal/adapters/out/mqttbridge"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/prom"
	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/exclusion"

	"gorm.io/gorm"
)

// CompositionRoot owns the single instances of the in-memory state, the
// coordinator and the notifier, and builds everything that uses them.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger

	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory

	registry    *registry.Registry
	orders      *registry.OrderBook
	notifier    *notifier.Notifier
	coordinator *commands.Coordinator
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, metrics *prom.Metrics, logger *slog.Logger) *CompositionRoot {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		registry:   registry.New(),
		orders:     registry.NewOrderBook(),
		notifier:   notifier.New(cfg.NotifierBufferSize, metrics, logger),
	}

	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	c.coordinator = commands.NewCoordinator(
		c.registry,
		c.orders,
		exclusion.NewManager(cfg.LockTimeout, metrics),
		f,
		c.notifier,
		commands.WithPersistTimeout(cfg.PersistTimeout),
		commands.WithMetrics(metrics),
		commands.WithLogger(logger),
	)
	return c
}

func (c *CompositionRoot) Coordinator() *commands.Coordinator {
	return c.coordinator
}

func (c *CompositionRoot) Notifier() *notifier.Notifier {
	return c.notifier
}

func (c *CompositionRoot) CreateAuditAssignmentsCommandHandler() commands.AuditAssignmentsCommandHandler {
	return commands.NewAuditAssignmentsCommandHandler(c.coordinator)
}

func (c *CompositionRoot) CreateGetOrderSummaryQueryHandler() queries.GetOrderSummaryQueryHandler {
	return queries.NewGetOrderSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:         commands.NewCreateOrderCommandHandler(c.coordinator),
		AssignOrder:         commands.NewAssignOrderCommandHandler(c.coordinator),
		UnassignOrder:       commands.NewUnassignOrderCommandHandler(c.coordinator),
		AdvanceOrder:        commands.NewAdvanceOrderCommandHandler(c.coordinator),
		DeleteOrder:         commands.NewDeleteOrderCommandHandler(c.coordinator),
		RegisterVehicle:     commands.NewRegisterVehicleCommandHandler(c.coordinator),
		ChangeVehicleStatus: commands.NewChangeVehicleStatusCommandHandler(c.coordinator),
		RegisterDriver:      commands.NewRegisterDriverCommandHandler(c.coordinator),
		ChangeDriverStatus:  commands.NewChangeDriverStatusCommandHandler(c.coordinator),
		ListOrders:          queries.NewListOrdersQueryHandler(c.orders),
		GetOrder:            queries.NewGetOrderQueryHandler(c.orders),
		OrderSummary:        c.CreateGetOrderSummaryQueryHandler(),
		ListVehicles:        queries.NewListVehiclesQueryHandler(c.registry),
		ListDrivers:         queries.NewListDriversQueryHandler(c.registry),
	}, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateAuditAssignmentsCommandHandler(), c.cfg.AuditSchedule, c.logger)
}

// CreateEventSink returns nil when no Kafka brokers are configured.
func (c *CompositionRoot) CreateEventSink() *kafkaexport.EventSink {
	if len(c.cfg.KafkaBrokers) == 0 {
		return nil
	}
	return kafkaexport.NewEventSink(c.cfg.KafkaBrokers, c.cfg.KafkaTopic, c.logger)
}

// CreateMQTTBridge connects to the broker. It returns nil when no broker is
// configured.
func (c *CompositionRoot) CreateMQTTBridge() (*mqttbridge.Bridge, error) {
	if c.cfg.MQTTBroker == "" {
		return nil, nil
	}
	client, err := mqttbridge.Connect(c.cfg.MQTTBroker, c.cfg.MQTTClientID)
	if err != nil {
		return nil, err
	}
	return mqttbridge.NewBridge(client, c.logger), nil
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
