package bootstrap

import (
	"context"
	"log"

	"site-audit-be/internal/config"
	"site-audit-be/internal/controller"
	"site-audit-be/internal/pkg/logger"
	"site-audit-be/internal/pkg/serverutils"
	"site-audit-be/internal/repository/contract"
	"site-audit-be/internal/repository/memory"
	"site-audit-be/internal/repository/redisstore"
	"site-audit-be/internal/repository/unitofwork"
	"site-audit-be/internal/service"
	"site-audit-be/pkg/audit"

	pktNats "site-audit-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// ArchiveTopic carries submitted audits to the in-process CSV archiver.
const ArchiveTopic = "audit.archive"

type Container struct {
	// Controllers
	AuditController      controller.IAuditController
	SubmissionController controller.ISubmissionController

	// Background Services (Exposed for main.go to run)
	ArchiveService service.IArchiveService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	sessions := newSessionStore(cfg, c)

	var eventPublisher service.IEventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 4. Services
	schemaService := service.NewSchemaService(
		uowFactory,
		cfg.Schema.QuestionsTTL,
		cfg.Schema.SitesTTL,
		cfg.Audit.ProjectLabelField,
		sysLogger,
	)
	submissionService := service.NewSubmissionService(uowFactory, sysLogger)
	photoStore := service.NewPhotoStore(cfg.App.UploadDir)
	publisherService := service.NewPublisherService(ArchiveTopic, pubSub)
	c.ArchiveService = service.NewArchiveService(
		pubSub,
		ArchiveTopic,
		cfg.App.ReportDir,
		logger.NewIsolatedLogger(cfg.App.ArchiveLogPath),
	)

	auditController := audit.NewController(audit.Options{
		Rules:       cfg.Audit.Engine(),
		MetaSection: cfg.Audit.MetaSection,
		LabelField:  cfg.Audit.ProjectLabelField,
	}, sysLogger)

	auditService := service.NewAuditService(
		auditController,
		sessions,
		schemaService,
		submissionService,
		photoStore,
		publisherService,
		eventPublisher,
		cfg.Audit,
		sysLogger,
	)

	// 5. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)
	c.AuditController = controller.NewAuditController(auditService, auth)
	c.SubmissionController = controller.NewSubmissionController(submissionService, auth)

	return c
}

// newSessionStore picks the session backend. Redis lets several API
// instances share sessions; when it is unreachable the memory store is used.
func newSessionStore(cfg *config.Config, c *Container) contract.SessionRepository {
	if cfg.Session.Store != "redis" {
		return memory.NewSessionRepository(cfg.Session.TTL)
	}

	rdb, err := redisstore.NewClient(cfg.App.RedisURL)
	if err == nil {
		err = rdb.Ping(context.Background()).Err()
	}
	if err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-memory sessions", err)
		return memory.NewSessionRepository(cfg.Session.TTL)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return redisstore.NewSessionRepository(rdb, cfg.Session.TTL)
}

// Close releases the bus and broker connections, then flushes the logger.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
