package cmd

import (
	"context"
	"fmt"
	"sync"

	httpin "handoff/internal/adapters/in/http"
	"handoff/internal/adapters/out/logsink"
	"handoff/internal/adapters/out/postgres"
	"handoff/internal/adapters/out/postgres/outboxrepo"
	"handoff/internal/adapters/out/pubsub"
	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/application/usecases/queries"
	"handoff/internal/core/ports"
	"handoff/internal/jobs"
	"handoff/internal/pkg/clock"
	"handoff/internal/pkg/logger"
	"handoff/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      clock.Clock
	log        *logger.Logger
	registry   *prometheus.Registry
	jobMetrics *metrics.JobMetrics

	pubsubOnce   sync.Once
	pubsubClient *pubsub.Client
	pubsubErr    error
	redisClient  *redis.Client
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, log *logger.Logger) *CompositionRoot {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clk := clock.System{}
	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, clk).WithLogger(log),
		clock:      clk,
		log:        log,
		registry:   registry,
		jobMetrics: metrics.NewJobMetrics(registry),
	}
}

func (c *CompositionRoot) uows() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateParcelCommandHandler() commands.CreateParcelCommandHandler {
	var f commands.ParcelUoWFactory = FuncParcelUoWFactory(func() commands.ParcelUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateParcelCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateSweepDeliveryConfirmationsCommandHandler() commands.SweepDeliveryConfirmationsCommandHandler {
	return commands.NewSweepDeliveryConfirmationsCommandHandler(c.uows(), c.clock)
}

func (c *CompositionRoot) CreateGetDeliveryStatusQueryHandler() queries.GetDeliveryStatusQueryHandler {
	var f queries.ReaderFactory = FuncReaderFactory(func() queries.Reader {
		return c.uowFactory.Create()
	})
	return queries.NewGetDeliveryStatusQueryHandler(f, c.clock)
}

// CreateDispatchOutboxCommandHandler wires the relay to the configured
// notification and settlement transports.
func (c *CompositionRoot) CreateDispatchOutboxCommandHandler(ctx context.Context) (commands.DispatchOutboxCommandHandler, error) {
	notifier, err := c.notificationDispatcher(ctx)
	if err != nil {
		return commands.DispatchOutboxCommandHandler{}, err
	}
	settlement, err := c.settlementTrigger(ctx)
	if err != nil {
		return commands.DispatchOutboxCommandHandler{}, err
	}
	return commands.NewDispatchOutboxCommandHandler(
		outboxrepo.NewGormStore(c.gormDB), notifier, settlement, c.clock, c.log,
	), nil
}

func (c *CompositionRoot) CreateHandlers() httpin.Handlers {
	uows := c.uows()
	return httpin.Handlers{
		CreateParcel:               c.CreateCreateParcelCommandHandler(),
		VendorConfirmPackaging:     commands.NewVendorConfirmPackagingCommandHandler(uows, c.clock),
		ConfirmPickupByCode:        commands.NewConfirmPickupByCodeCommandHandler(uows, c.clock),
		ClientConfirmDelivery:      commands.NewClientConfirmDeliveryCommandHandler(uows, c.clock),
		ClientContestDelivery:      commands.NewClientContestDeliveryCommandHandler(uows, c.clock),
		AcceptMission:              commands.NewAcceptMissionCommandHandler(uows, c.clock),
		StartJourney:               commands.NewStartJourneyCommandHandler(uows, c.clock),
		ArriveAtPickup:             commands.NewArriveAtPickupCommandHandler(uows, c.clock),
		ConfirmPackaging:           commands.NewConfirmPackagingCommandHandler(uows, c.clock),
		PickupMission:              commands.NewPickupMissionCommandHandler(uows, c.clock),
		SubmitDeliveryProof:        commands.NewSubmitDeliveryProofCommandHandler(uows, c.clock),
		CancelMission:              commands.NewCancelMissionCommandHandler(uows, c.clock),
		SweepDeliveryConfirmations: c.CreateSweepDeliveryConfirmationsCommandHandler(),
		GetDeliveryStatus:          c.CreateGetDeliveryStatusQueryHandler(),
	}
}

func (c *CompositionRoot) CreateRouter() *echo.Echo {
	return httpin.NewRouter(httpin.RouterOptions{
		Server:   httpin.NewServer(c.CreateHandlers(), c.clock, c.log),
		Log:      c.log,
		Gatherer: c.registry,
		Auth: httpin.AuthConfig{
			Secret: c.cfg.JWTSecret,
			Issuer: c.cfg.JWTIssuer,
			Leeway: c.cfg.JWTLeeway,
		},
		SchedulerSecret: c.cfg.SchedulerSecret,
		EchoLogLevel:    echoLogLevel(c.cfg.LogLevel),
	})
}

func (c *CompositionRoot) CreateSweepRunner() (*jobs.Runner, error) {
	job := jobs.NewDeliverySweepJob(c.CreateSweepDeliveryConfirmationsCommandHandler(), c.cfg.SweepBatchSize, c.log, c.jobMetrics)
	lock, err := c.lock(job.Name())
	if err != nil {
		return nil, err
	}
	return jobs.NewRunner(job, lock, c.log, c.jobMetrics, c.cfg.JobTimeout), nil
}

func (c *CompositionRoot) CreateRelayRunner(ctx context.Context) (*jobs.Runner, error) {
	handler, err := c.CreateDispatchOutboxCommandHandler(ctx)
	if err != nil {
		return nil, err
	}
	job := jobs.NewOutboxRelayJob(handler, c.cfg.OutboxBatchSize, c.cfg.OutboxMaxAttempts, c.log, c.jobMetrics)
	lock, err := c.lock(job.Name())
	if err != nil {
		return nil, err
	}
	return jobs.NewRunner(job, lock, c.log, c.jobMetrics, c.cfg.JobTimeout), nil
}

func (c *CompositionRoot) CreateJobManager(ctx context.Context) (*jobs.JobManager, error) {
	sweep, err := c.CreateSweepRunner()
	if err != nil {
		return nil, err
	}
	relay, err := c.CreateRelayRunner(ctx)
	if err != nil {
		return nil, err
	}
	return jobs.NewJobManager(c.log,
		jobs.Schedule{Spec: c.cfg.SweepSchedule, Runner: sweep},
		jobs.Schedule{Spec: c.cfg.OutboxSchedule, Runner: relay},
	), nil
}

// Close releases the external clients opened while wiring.
func (c *CompositionRoot) Close() error {
	var err error
	if c.pubsubClient != nil {
		err = multierr.Append(err, c.pubsubClient.Close())
	}
	if c.redisClient != nil {
		err = multierr.Append(err, c.redisClient.Close())
	}
	if sqlDB, dbErr := c.gormDB.DB(); dbErr == nil {
		err = multierr.Append(err, sqlDB.Close())
	}
	return err
}

// lock returns a redis lock when HANDOFF_REDIS_URL is set, so that only one
// replica runs a job at a time, and a process-local lock otherwise.
func (c *CompositionRoot) lock(jobName string) (jobs.Lock, error) {
	if c.cfg.RedisURL == "" {
		return jobs.NewLocalLock(), nil
	}
	if c.redisClient == nil {
		opts, err := redis.ParseURL(c.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		c.redisClient = redis.NewClient(opts)
	}
	return jobs.NewRedisLock(c.redisClient, "handoff:jobs:"+jobName, c.cfg.LockTTL)
}

func (c *CompositionRoot) pubsubConn(ctx context.Context) (*pubsub.Client, error) {
	c.pubsubOnce.Do(func() {
		c.pubsubClient, c.pubsubErr = pubsub.NewClient(ctx, c.cfg.GCPProjectID)
	})
	return c.pubsubClient, c.pubsubErr
}

func (c *CompositionRoot) notificationDispatcher(ctx context.Context) (ports.NotificationDispatcher, error) {
	if c.cfg.NotificationTransport != TransportPubSub {
		return logsink.NewNotificationLogger(c.log), nil
	}
	client, err := c.pubsubConn(ctx)
	if err != nil {
		return nil, err
	}
	pub, err := client.Publisher(c.cfg.NotificationTopic)
	if err != nil {
		return nil, err
	}
	return pubsub.NewNotificationPublisher(pub, c.cfg.PublishTimeout)
}

func (c *CompositionRoot) settlementTrigger(ctx context.Context) (ports.SettlementTrigger, error) {
	if c.cfg.SettlementTransport != TransportPubSub {
		return logsink.NewSettlementLogger(c.log), nil
	}
	client, err := c.pubsubConn(ctx)
	if err != nil {
		return nil, err
	}
	pub, err := client.Publisher(c.cfg.SettlementTopic)
	if err != nil {
		return nil, err
	}
	return pubsub.NewSettlementPublisher(pub, c.cfg.PublishTimeout, c.clock.Now)
}

type FuncParcelUoWFactory func() commands.ParcelUoW

func (f FuncParcelUoWFactory) Create() commands.ParcelUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncReaderFactory func() queries.Reader

func (f FuncReaderFactory) Create() queries.Reader {
	return f()
}
